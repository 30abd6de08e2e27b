package fuzzy

import (
	"fmt"
	"math"
	"sort"
)

// DefaultResolution is the number of points the output universe is sampled
// at when no WithResolution option is given.
const DefaultResolution = 501

// Fuzzified holds the degrees of every input variable, keyed by variable name.
type Fuzzified map[string]Degrees

// Option configures an Engine.
type Option func(*Engine)

// WithResolution sets the number of output sample points (at least 2).
func WithResolution(n int) Option {
	return func(e *Engine) { e.resolution = n }
}

// Engine is a Mamdani inference system: min for AND, max for OR,
// min-implication and max-aggregation, centroid defuzzification.
//
// Rules are grouped in blocks. Each block is aggregated and defuzzified on
// its own and the engine score is the sum of the block centroids; an engine
// with a single block is a plain Mamdani controller.
//
// An Engine is immutable after NewEngine returns and safe for concurrent use.
type Engine struct {
	inputs     map[string]*Variable
	order      []string
	output     *Variable
	blocks     []RuleBlock
	resolution int

	samples []float64
	// consequent membership of each output term at every sample point.
	sampled map[string][]float64
}

// NewEngine validates the rule base against the variables and precomputes
// the output sampling grid. All variables are sealed.
func NewEngine(inputs []*Variable, output *Variable, blocks []RuleBlock, opts ...Option) (*Engine, error) {
	e := &Engine{
		inputs:     make(map[string]*Variable, len(inputs)),
		output:     output,
		resolution: DefaultResolution,
	}
	for _, o := range opts {
		o(e)
	}
	if e.resolution < 2 {
		return nil, fmt.Errorf("%w: resolution must be at least 2, got %d", ErrInvalidUniverse, e.resolution)
	}
	if output == nil {
		return nil, fmt.Errorf("%w: output variable is nil", ErrUnknownVariable)
	}
	if len(output.terms) == 0 {
		return nil, fmt.Errorf("%w: output %s has no terms", ErrUnknownTerm, output.name)
	}
	for _, v := range inputs {
		if v == nil {
			return nil, fmt.Errorf("%w: input variable is nil", ErrUnknownVariable)
		}
		if _, dup := e.inputs[v.name]; dup || v.name == output.name {
			return nil, fmt.Errorf("%w: variable %s declared twice", ErrInvalidRule, v.name)
		}
		e.inputs[v.name] = v
		e.order = append(e.order, v.name)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no rule blocks", ErrInvalidRule)
	}
	seen := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if seen[b.Name] {
			return nil, fmt.Errorf("%w: block %q declared twice", ErrInvalidRule, b.Name)
		}
		seen[b.Name] = true
		if len(b.Rules) == 0 {
			return nil, fmt.Errorf("%w: block %q has no rules", ErrInvalidRule, b.Name)
		}
		for i, r := range b.Rules {
			if err := e.validateRule(r); err != nil {
				return nil, fmt.Errorf("block %q rule %d: %w", b.Name, i+1, err)
			}
		}
	}
	e.blocks = append([]RuleBlock(nil), blocks...)

	e.samples = make([]float64, e.resolution)
	step := (output.max - output.min) / float64(e.resolution-1)
	for i := range e.samples {
		e.samples[i] = output.min + float64(i)*step
	}
	e.samples[e.resolution-1] = output.max
	e.sampled = make(map[string][]float64, len(output.terms))
	for _, t := range output.terms {
		mu := make([]float64, e.resolution)
		for i, x := range e.samples {
			mu[i] = t.Shape.Evaluate(x)
		}
		e.sampled[t.Name] = mu
	}

	for _, v := range inputs {
		v.seal()
	}
	output.seal()
	return e, nil
}

func (e *Engine) validateRule(r Rule) error {
	if math.IsNaN(r.Weight) || r.Weight < 0 || r.Weight > 1 {
		return fmt.Errorf("%w: weight %g outside (0,1]", ErrInvalidRule, r.Weight)
	}
	if _, ok := e.output.Term(r.Then); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownTerm, e.output.name, r.Then)
	}
	return e.validateExpr(r.If)
}

func (e *Engine) validateExpr(x Expr) error {
	switch x.Op {
	case OpIs:
		v, ok := e.inputs[x.Variable]
		if !ok {
			return fmt.Errorf("%w: %s.%s (no such variable)", ErrUnknownTerm, x.Variable, x.Term)
		}
		if _, ok := v.Term(x.Term); !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownTerm, x.Variable, x.Term)
		}
		return nil
	case OpAnd, OpOr:
		if len(x.Children) == 0 {
			return fmt.Errorf("%w: %s with no operands", ErrInvalidRule, x.Op)
		}
		for _, c := range x.Children {
			if err := e.validateExpr(c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown operator %d", ErrInvalidRule, int(x.Op))
}

// Output returns the output variable.
func (e *Engine) Output() *Variable { return e.output }

// Resolution returns the number of output sample points.
func (e *Engine) Resolution() int { return e.resolution }

// Input returns the named input variable.
func (e *Engine) Input(name string) (*Variable, bool) {
	v, ok := e.inputs[name]
	return v, ok
}

// Inputs returns the input variable names in declaration order.
func (e *Engine) Inputs() []string { return append([]string(nil), e.order...) }

// Blocks returns the rule block names in declaration order.
func (e *Engine) Blocks() []string {
	out := make([]string, len(e.blocks))
	for i, b := range e.blocks {
		out[i] = b.Name
	}
	return out
}

// Fuzzify evaluates each crisp input against its variable. Every input
// variable must be present with a finite value; unknown names are rejected.
func (e *Engine) Fuzzify(crisp map[string]float64) (Fuzzified, error) {
	for name := range crisp {
		if _, ok := e.inputs[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
		}
	}
	out := make(Fuzzified, len(e.inputs))
	for _, name := range e.order {
		x, ok := crisp[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for %s", ErrInvalidInput, name)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %s is %g", ErrInvalidInput, name, x)
		}
		out[name] = e.inputs[name].Fuzzify(x)
	}
	return out, nil
}

// AggregatedSet is the clipped and max-aggregated output of one rule block
// over the engine's sample grid. X is shared between calls and must not be
// modified.
type AggregatedSet struct {
	Block     string
	X         []float64
	Mu        []float64
	Strengths []float64
}

// Fired returns the number of rules with a strength above zero.
func (s *AggregatedSet) Fired() int {
	n := 0
	for _, st := range s.Strengths {
		if st > 0 {
			n++
		}
	}
	return n
}

// Infer fires every rule against in and returns one aggregated set per block.
func (e *Engine) Infer(in Fuzzified) ([]*AggregatedSet, error) {
	out := make([]*AggregatedSet, len(e.blocks))
	for bi, b := range e.blocks {
		set := &AggregatedSet{
			Block:     b.Name,
			X:         e.samples,
			Mu:        make([]float64, e.resolution),
			Strengths: make([]float64, len(b.Rules)),
		}
		for ri, r := range b.Rules {
			s, err := r.Strength(in)
			if err != nil {
				return nil, fmt.Errorf("block %q rule %d: %w", b.Name, ri+1, err)
			}
			set.Strengths[ri] = s
			if s <= 0 {
				continue
			}
			mu := e.sampled[r.Then]
			for i := range set.Mu {
				set.Mu[i] = max(set.Mu[i], min(s, mu[i]))
			}
		}
		out[bi] = set
	}
	return out, nil
}

// Centroid defuzzifies set over output as Σ(x·μ)/Σμ. When no rule fired
// (Σμ == 0) it returns the midpoint of the output universe; this is the
// zero-activation policy, not an error.
func Centroid(output *Variable, set *AggregatedSet) float64 {
	var num, den float64
	for i, mu := range set.Mu {
		num += set.X[i] * mu
		den += mu
	}
	if den == 0 {
		return output.Midpoint()
	}
	return num / den
}

// BlockResult is the defuzzified output of one rule block.
type BlockResult struct {
	Name        string  `json:"name"`
	Centroid    float64 `json:"centroid"`
	Fired       int     `json:"fired"`
	MaxStrength float64 `json:"max_strength"`
}

// Outcome is the full result of one Evaluate call.
type Outcome struct {
	Memberships Fuzzified
	Blocks      []BlockResult
	Score       float64
}

// Block returns the result for the named block.
func (o *Outcome) Block(name string) (BlockResult, bool) {
	for _, b := range o.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return BlockResult{}, false
}

// Evaluate runs fuzzification, inference and defuzzification for one set of
// crisp inputs.
func (e *Engine) Evaluate(crisp map[string]float64) (*Outcome, error) {
	f, err := e.Fuzzify(crisp)
	if err != nil {
		return nil, err
	}
	sets, err := e.Infer(f)
	if err != nil {
		return nil, err
	}
	o := &Outcome{Memberships: f, Blocks: make([]BlockResult, len(sets))}
	for i, s := range sets {
		br := BlockResult{Name: s.Block, Centroid: Centroid(e.output, s), Fired: s.Fired()}
		for _, st := range s.Strengths {
			br.MaxStrength = max(br.MaxStrength, st)
		}
		o.Blocks[i] = br
		o.Score += br.Centroid
	}
	return o, nil
}

// Terms returns the sorted term names of fuzzified degrees, for stable output.
func (d Degrees) Terms() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
