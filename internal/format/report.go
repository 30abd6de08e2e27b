package format

import (
	"fmt"
	"sort"
	"strings"

	"fuzzynews/internal/display"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"
	"fuzzynews/pkg/fuzzy"
)

// Result renders one assessment: a row per parameter with its reading,
// chart points, fuzzy contribution and strongest term, then the verdict.
func Result(res *news2.Result, m Mode) string {
	tb := NewTable(m)
	tb.Header("Parameter", "Reading", "Points", "Fuzzy", "Term")
	points := res.ParameterScores.ByField()
	for _, f := range news2.Fields {
		reading := ""
		if f == news2.FieldConsciousness {
			reading = display.Consciousness(res.Input.Consciousness)
		} else {
			x, _ := res.Input.Value(f)
			reading = Reading(x) + " " + display.Unit(f)
		}
		term, _ := dominant(res.Memberships[f])
		tb.Row(display.Field(f), strings.TrimSpace(reading), points[f], Score(res.FuzzyContributions[f]), display.Term(term))
	}
	if res.Input.SupplementalOxygen {
		tb.Row(display.Field(news2.FieldSupplementalOxygen), "oxygen", points[news2.FieldSupplementalOxygen],
			Score(res.FuzzyContributions[news2.FieldSupplementalOxygen]), "")
	}
	tb.Footer("Total", "", res.CrispScore, Score(res.FuzzyScore), "")
	tb.RightAlign(3, 4)

	var b strings.Builder
	b.WriteString(tb.String())
	b.WriteString("\n")
	fmt.Fprintf(&b, "SpO2:      %s\n", display.OxygenScale(res.OxygenScale))
	fmt.Fprintf(&b, "Risk:      %s\n", res.RiskCategory)
	if res.RedScore {
		b.WriteString("Red score: a single parameter scores 3\n")
	}
	fmt.Fprintf(&b, "Response:  %s\n", res.RecommendedResponse)
	return b.String()
}

func dominant(d fuzzy.Degrees) (string, float64) {
	best, deg := "", 0.0
	for _, name := range d.Terms() {
		if d[name] > deg {
			best, deg = name, d[name]
		}
	}
	return best, deg
}

// History renders stored assessments in the given order.
func History(list []*store.Assessment, m Mode) string {
	tb := NewTable(m)
	tb.Header("ID", "Time", "Crisp", "Fuzzy", "Category", "Red")
	for _, a := range list {
		tb.Row(ShortID(a.ID), Timestamp(a.Timestamp), a.CrispScore, Score(a.FuzzyScore), a.RiskCategory, BoolMark(a.RedScore))
	}
	tb.RightAlign(3, 4)
	return tb.String()
}

// Summary renders patient statistics.
func Summary(s store.Summary, m Mode) string {
	tb := NewTable(m)
	tb.Header("Statistic", "Value")
	tb.Row("Patient", s.PatientID)
	tb.Row("Window", fmt.Sprintf("%d days", s.Days))
	tb.Row("Assessments", s.Count)
	if s.AverageCrisp != nil {
		tb.Row("Average crisp score", Score(*s.AverageCrisp))
		tb.Row("Average fuzzy score", Score(*s.AverageFuzzy))
		tb.Row("Max crisp score", *s.MaxCrisp)
		tb.Row("Max fuzzy score", Score(*s.MaxFuzzy))
	}
	cats := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		tb.Row("Category "+c, s.Categories[c])
	}
	tb.Row("Trend", string(s.Trend))
	return tb.String()
}

// RuleBase renders every term of every input variable of an engine.
func RuleBase(e *fuzzy.Engine, m Mode) string {
	tb := NewTable(m)
	tb.Header("Variable", "Universe", "Term", "Shape")
	for _, name := range e.Inputs() {
		v, _ := e.Input(name)
		lo, hi := v.Universe()
		for i, t := range v.Terms() {
			label, universe := "", ""
			if i == 0 {
				label, universe = name, fmt.Sprintf("[%g, %g]", lo, hi)
			}
			tb.Row(label, universe, display.Term(t.Name), t.Shape.String())
		}
	}
	return tb.String()
}
