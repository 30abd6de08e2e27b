package fuzzy

import (
	"fmt"
	"strings"
)

// Op is the node type of an antecedent expression.
type Op int

const (
	OpIs Op = iota + 1
	OpAnd
	OpOr
)

func (o Op) String() string {
	switch o {
	case OpIs:
		return "IS"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Expr is a rule antecedent: a leaf (variable IS term) or an AND/OR node
// over child expressions. AND takes the minimum of its children, OR the
// maximum.
type Expr struct {
	Op       Op
	Variable string
	Term     string
	Children []Expr
}

// Is builds the leaf "variable IS term".
func Is(variable, term string) Expr {
	return Expr{Op: OpIs, Variable: variable, Term: term}
}

// And builds a conjunction.
func And(children ...Expr) Expr {
	return Expr{Op: OpAnd, Children: children}
}

// Or builds a disjunction.
func Or(children ...Expr) Expr {
	return Expr{Op: OpOr, Children: children}
}

// Eval computes the truth degree of e against fuzzified inputs. A leaf whose
// variable or term is missing from in is an error, never a silent zero.
func (e Expr) Eval(in Fuzzified) (float64, error) {
	switch e.Op {
	case OpIs:
		deg, ok := in[e.Variable]
		if !ok {
			return 0, fmt.Errorf("%w: %s.%s (variable not fuzzified)", ErrUnknownTerm, e.Variable, e.Term)
		}
		d, ok := deg[e.Term]
		if !ok {
			return 0, fmt.Errorf("%w: %s.%s", ErrUnknownTerm, e.Variable, e.Term)
		}
		return d, nil
	case OpAnd, OpOr:
		if len(e.Children) == 0 {
			return 0, fmt.Errorf("%w: %s with no operands", ErrInvalidRule, e.Op)
		}
		acc, err := e.Children[0].Eval(in)
		if err != nil {
			return 0, err
		}
		for _, c := range e.Children[1:] {
			d, err := c.Eval(in)
			if err != nil {
				return 0, err
			}
			if e.Op == OpAnd {
				acc = min(acc, d)
			} else {
				acc = max(acc, d)
			}
		}
		return acc, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %d", ErrInvalidRule, int(e.Op))
}

// Walk calls fn for every leaf in e, depth first.
func (e Expr) Walk(fn func(variable, term string)) {
	if e.Op == OpIs {
		fn(e.Variable, e.Term)
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

func (e Expr) String() string {
	if e.Op == OpIs {
		return e.Variable + " IS " + e.Term
	}
	parts := make([]string, len(e.Children))
	for i, c := range e.Children {
		s := c.String()
		if c.Op != OpIs {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+e.Op.String()+" ")
}

// Rule is IF antecedent THEN output IS Then, scaled by Weight.
// A zero Weight means 1.
type Rule struct {
	If     Expr
	Then   string
	Weight float64
}

func (r Rule) weight() float64 {
	if r.Weight == 0 {
		return 1
	}
	return r.Weight
}

// Strength returns the firing strength: antecedent degree times weight.
func (r Rule) Strength(in Fuzzified) (float64, error) {
	d, err := r.If.Eval(in)
	if err != nil {
		return 0, err
	}
	return d * r.weight(), nil
}

func (r Rule) String() string {
	s := "IF " + r.If.String() + " THEN " + r.Then
	if w := r.weight(); w != 1 {
		s += fmt.Sprintf(" WITH %g", w)
	}
	return s
}

// RuleBlock is a named group of rules that is inferred and defuzzified on
// its own.
type RuleBlock struct {
	Name  string
	Rules []Rule
}
