package news2

import (
	"fmt"
	"math"
	"sort"
)

// Category is a clinical risk band.
type Category string

const (
	Low       Category = "Low"
	LowMedium Category = "Low-Medium"
	Medium    Category = "Medium"
	High      Category = "High"
)

// boundary is one row of the score boundary table.
type boundary struct {
	category Category
	min      float64
	response string
}

// Categorizer maps a fuzzy score onto the boundary table.
type Categorizer struct {
	rows        []boundary
	redResponse string
}

// NewCategorizer validates the boundary table. Rows are sorted by Min; the
// lowest must start at or below 0 and no two rows may share a Min or a name.
func NewCategorizer(rows []CategoryConfig, redResponse string) (*Categorizer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no risk categories configured")
	}
	c := &Categorizer{redResponse: redResponse}
	names := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Name == "" || r.Response == "" {
			return nil, fmt.Errorf("risk category at %g needs a name and a response", r.Min)
		}
		if names[r.Name] {
			return nil, fmt.Errorf("risk category %q declared twice", r.Name)
		}
		names[r.Name] = true
		c.rows = append(c.rows, boundary{category: Category(r.Name), min: r.Min, response: r.Response})
	}
	sort.Slice(c.rows, func(i, j int) bool { return c.rows[i].min < c.rows[j].min })
	if c.rows[0].min > 0 {
		return nil, fmt.Errorf("risk category %q starts at %g; scores from 0 would be uncovered", c.rows[0].category, c.rows[0].min)
	}
	for i := 1; i < len(c.rows); i++ {
		if c.rows[i].min == c.rows[i-1].min {
			return nil, fmt.Errorf("risk categories %q and %q share boundary %g", c.rows[i-1].category, c.rows[i].category, c.rows[i].min)
		}
	}
	return c, nil
}

// Categorize returns the category whose range contains score.
func (c *Categorizer) Categorize(score float64) Category {
	return c.row(score).category
}

func (c *Categorizer) row(score float64) boundary {
	r := c.rows[0]
	for _, b := range c.rows[1:] {
		if score < b.min {
			break
		}
		r = b
	}
	return r
}

// Response returns the recommended response for a score. A red score in
// either of the two lowest categories escalates to the single-parameter
// response.
func (c *Categorizer) Response(score float64, red bool) string {
	r := c.row(score)
	if red && c.redResponse != "" && c.rank(r.category) < 2 {
		return c.redResponse
	}
	return r.response
}

// Bounds returns the [min, max) score range of a category. The top category
// has max +Inf.
func (c *Categorizer) Bounds(cat Category) (lo, hi float64, ok bool) {
	for i, r := range c.rows {
		if r.category != cat {
			continue
		}
		hi = math.Inf(1)
		if i+1 < len(c.rows) {
			hi = c.rows[i+1].min
		}
		return r.min, hi, true
	}
	return 0, 0, false
}

// Categories lists the configured categories from lowest to highest.
func (c *Categorizer) Categories() []Category {
	out := make([]Category, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.category
	}
	return out
}

func (c *Categorizer) rank(cat Category) int {
	for i, r := range c.rows {
		if r.category == cat {
			return i
		}
	}
	return -1
}
