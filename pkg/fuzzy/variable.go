package fuzzy

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Term is a linguistic label bound to one membership function.
type Term struct {
	Name  string
	Shape Shape
}

// Degrees maps term name to degree of membership for one crisp value.
type Degrees map[string]float64

// Variable is a named dimension with a closed universe [min, max] and a set
// of terms. Terms are added while building; once an Engine takes the
// variable it is sealed and AddTerm fails with ErrSealed.
type Variable struct {
	name     string
	min, max float64
	terms    []Term
	index    map[string]int
	sealed   atomic.Bool
}

// NewVariable creates a variable over [min, max] with the given terms.
func NewVariable(name string, min, max float64, terms ...Term) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: variable name is empty", ErrInvalidUniverse)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) || min >= max {
		return nil, fmt.Errorf("%w: %s needs finite min < max, got [%g, %g]", ErrInvalidUniverse, name, min, max)
	}
	v := &Variable{name: name, min: min, max: max, index: make(map[string]int)}
	for _, t := range terms {
		if err := v.AddTerm(t.Name, t.Shape); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// AddTerm registers a term. Names are unique within the variable.
func (v *Variable) AddTerm(name string, shape Shape) error {
	if v.sealed.Load() {
		return fmt.Errorf("%w: %s", ErrSealed, v.name)
	}
	if name == "" {
		return fmt.Errorf("%w: %s has a term with an empty name", ErrInvalidShape, v.name)
	}
	if shape.kind == 0 {
		return fmt.Errorf("%w: %s.%s has no shape", ErrInvalidShape, v.name, name)
	}
	if _, ok := v.index[name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateTerm, v.name, name)
	}
	v.index[name] = len(v.terms)
	v.terms = append(v.terms, Term{Name: name, Shape: shape})
	return nil
}

func (v *Variable) seal() { v.sealed.Store(true) }

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Universe returns the closed interval the variable is defined over.
func (v *Variable) Universe() (min, max float64) { return v.min, v.max }

// Midpoint returns the centre of the universe.
func (v *Variable) Midpoint() float64 { return (v.min + v.max) / 2 }

// Contains reports whether x lies within the universe.
func (v *Variable) Contains(x float64) bool { return x >= v.min && x <= v.max }

// Terms returns the terms in insertion order.
func (v *Variable) Terms() []Term {
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Term looks up a term by name.
func (v *Variable) Term(name string) (Term, bool) {
	i, ok := v.index[name]
	if !ok {
		return Term{}, false
	}
	return v.terms[i], true
}

// Fuzzify evaluates every term at x. Degrees are independent and need not
// sum to 1. Values outside the universe are evaluated as-is.
func (v *Variable) Fuzzify(x float64) Degrees {
	out := make(Degrees, len(v.terms))
	for _, t := range v.terms {
		out[t.Name] = t.Shape.Evaluate(x)
	}
	return out
}

// Dominant returns the term with the highest degree at x. Ties resolve to
// the term added first.
func (v *Variable) Dominant(x float64) (string, float64) {
	best, bestDeg := "", -1.0
	for _, t := range v.terms {
		if d := t.Shape.Evaluate(x); d > bestDeg {
			best, bestDeg = t.Name, d
		}
	}
	return best, bestDeg
}
