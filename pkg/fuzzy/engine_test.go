package fuzzy

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang.org/x/sync/errgroup"
)

// toyEngine: x drives a high-risk term, y is always normal.
func toyEngine(t *testing.T, blocks []RuleBlock, opts ...Option) *Engine {
	t.Helper()
	x, err := NewVariable("x", 0, 10,
		Term{Name: "low", Shape: mustShape(t, Trapezoidal, 0, 0, 2, 6)},
		Term{Name: "high", Shape: mustShape(t, Trapezoidal, 4, 8, 10, 10)},
	)
	if err != nil {
		t.Fatal(err)
	}
	y, err := NewVariable("y", 0, 10,
		Term{Name: "normal", Shape: mustShape(t, Trapezoidal, 0, 0, 10, 10)},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewVariable("risk", 0, 10,
		Term{Name: "low", Shape: mustShape(t, Triangular, 0, 2.5, 5)},
		Term{Name: "high", Shape: mustShape(t, Triangular, 5, 7.5, 10)},
	)
	if err != nil {
		t.Fatal(err)
	}
	if blocks == nil {
		blocks = []RuleBlock{{Name: "risk", Rules: []Rule{
			{If: Is("x", "high"), Then: "high"},
			{If: Is("y", "normal"), Then: "low"},
		}}}
	}
	e, err := NewEngine([]*Variable{x, y}, out, blocks, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_ValidatesRuleBase(t *testing.T) {
	cases := []struct {
		name  string
		rules []Rule
		want  error
	}{
		{"unknown input term", []Rule{{If: Is("x", "extreme"), Then: "high"}}, ErrUnknownTerm},
		{"unknown variable", []Rule{{If: Is("z", "high"), Then: "high"}}, ErrUnknownTerm},
		{"unknown consequent", []Rule{{If: Is("x", "high"), Then: "critical"}}, ErrUnknownTerm},
		{"nested unknown", []Rule{{If: And(Is("x", "high"), Or(Is("y", "normal"), Is("y", "odd"))), Then: "high"}}, ErrUnknownTerm},
		{"weight above one", []Rule{{If: Is("x", "high"), Then: "high", Weight: 1.5}}, ErrInvalidRule},
		{"negative weight", []Rule{{If: Is("x", "high"), Then: "high", Weight: -0.1}}, ErrInvalidRule},
		{"empty and", []Rule{{If: And(), Then: "high"}}, ErrInvalidRule},
		{"no rules", nil, ErrInvalidRule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, _ := NewVariable("x", 0, 10, Term{Name: "high", Shape: mustShape(t, Triangular, 5, 10, 10)})
			y, _ := NewVariable("y", 0, 10, Term{Name: "normal", Shape: mustShape(t, Triangular, 0, 5, 10)})
			out, _ := NewVariable("risk", 0, 10, Term{Name: "high", Shape: mustShape(t, Triangular, 5, 10, 10)})
			_, err := NewEngine([]*Variable{x, y}, out, []RuleBlock{{Name: "b", Rules: tc.rules}})
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewEngine_StructuralErrors(t *testing.T) {
	x, _ := NewVariable("x", 0, 10, Term{Name: "high", Shape: mustShape(t, Triangular, 5, 10, 10)})
	out, _ := NewVariable("risk", 0, 10, Term{Name: "high", Shape: mustShape(t, Triangular, 5, 10, 10)})
	rules := []Rule{{If: Is("x", "high"), Then: "high"}}

	if _, err := NewEngine([]*Variable{x}, out, []RuleBlock{{Name: "b", Rules: rules}}, WithResolution(1)); !errors.Is(err, ErrInvalidUniverse) {
		t.Errorf("resolution 1: err = %v, want ErrInvalidUniverse", err)
	}
	if _, err := NewEngine([]*Variable{x}, out, nil); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("no blocks: err = %v, want ErrInvalidRule", err)
	}
	if _, err := NewEngine([]*Variable{x, x}, out, []RuleBlock{{Name: "b", Rules: rules}}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("duplicate input: err = %v, want ErrInvalidRule", err)
	}
	dup := []RuleBlock{{Name: "b", Rules: rules}, {Name: "b", Rules: rules}}
	if _, err := NewEngine([]*Variable{x}, out, dup); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("duplicate block: err = %v, want ErrInvalidRule", err)
	}
	if _, err := NewEngine([]*Variable{x}, nil, []RuleBlock{{Name: "b", Rules: rules}}); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("nil output: err = %v, want ErrUnknownVariable", err)
	}
}

func TestNewEngine_SealsVariables(t *testing.T) {
	e := toyEngine(t, nil)
	x, _ := e.Input("x")
	if err := x.AddTerm("extreme", mustShape(t, Triangular, 9, 10, 10)); !errors.Is(err, ErrSealed) {
		t.Errorf("AddTerm after NewEngine err = %v, want ErrSealed", err)
	}
	if err := e.Output().AddTerm("critical", mustShape(t, Triangular, 9, 10, 10)); !errors.Is(err, ErrSealed) {
		t.Errorf("output AddTerm after NewEngine err = %v, want ErrSealed", err)
	}
}

func TestInfer_ClipsAndAggregatesByMax(t *testing.T) {
	out, _ := NewVariable("risk", 0, 10, Term{Name: "mid", Shape: mustShape(t, Triangular, 0, 5, 10)})
	in, _ := NewVariable("x", 0, 1, Term{Name: "on", Shape: mustShape(t, Trapezoidal, 0, 0, 1, 1)})
	e, err := NewEngine([]*Variable{in}, out, []RuleBlock{{Name: "b", Rules: []Rule{
		{If: Is("x", "on"), Then: "mid", Weight: 0.3},
		{If: Is("x", "on"), Then: "mid", Weight: 0.7},
	}}}, WithResolution(11))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	f, err := e.Fuzzify(map[string]float64{"x": 0.5})
	if err != nil {
		t.Fatalf("Fuzzify: %v", err)
	}
	sets, err := e.Infer(f)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("want 1 aggregated set, got %d", len(sets))
	}
	s := sets[0]
	if len(s.X) != 11 || s.X[0] != 0 || s.X[10] != 10 {
		t.Fatalf("sample grid = %v", s.X)
	}
	want := []float64{0, 0.2, 0.4, 0.6, 0.7, 0.7, 0.7, 0.6, 0.4, 0.2, 0}
	for i, w := range want {
		if math.Abs(s.Mu[i]-w) > 1e-12 {
			t.Errorf("Mu[%d] at x=%g = %g, want %g", i, s.X[i], s.Mu[i], w)
		}
	}
	if s.Fired() != 2 {
		t.Errorf("Fired() = %d, want 2", s.Fired())
	}
	if c := Centroid(out, s); math.Abs(c-5) > 1e-12 {
		t.Errorf("Centroid of symmetric set = %g, want 5", c)
	}
}

func TestInfer_UnknownTermInForeignFuzzification(t *testing.T) {
	e := toyEngine(t, nil)
	_, err := e.Infer(Fuzzified{"x": {"low": 1}, "y": {"normal": 1}})
	if !errors.Is(err, ErrUnknownTerm) {
		t.Errorf("err = %v, want ErrUnknownTerm", err)
	}
}

func TestCentroid_ZeroActivationIsMidpoint(t *testing.T) {
	e := toyEngine(t, []RuleBlock{{Name: "risk", Rules: []Rule{
		{If: Is("x", "high"), Then: "high"},
	}}})
	out, err := e.Evaluate(map[string]float64{"x": 1, "y": 5})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out.Score != 5 {
		t.Errorf("Score with no rule fired = %g, want exactly 5", out.Score)
	}
	b, ok := out.Block("risk")
	if !ok || b.Fired != 0 || b.MaxStrength != 0 {
		t.Errorf("block result = %+v", b)
	}

	shifted, _ := NewVariable("risk", -1, 4)
	if c := Centroid(shifted, &AggregatedSet{X: []float64{-1, 4}, Mu: []float64{0, 0}}); c != 1.5 {
		t.Errorf("Centroid over [-1,4] with empty set = %g, want 1.5", c)
	}
}

func TestEvaluate_Monotonic(t *testing.T) {
	e := toyEngine(t, nil, WithResolution(101))
	prev := math.Inf(-1)
	for i := 0; i <= 100; i++ {
		x := float64(i) / 10
		out, err := e.Evaluate(map[string]float64{"x": x, "y": 5})
		if err != nil {
			t.Fatalf("Evaluate(x=%g): %v", x, err)
		}
		if out.Score < prev-1e-9 {
			t.Fatalf("score decreased at x=%g: %g < %g", x, out.Score, prev)
		}
		prev = out.Score
	}
	lo, _ := e.Evaluate(map[string]float64{"x": 0, "y": 5})
	hi, _ := e.Evaluate(map[string]float64{"x": 10, "y": 5})
	if math.Abs(lo.Score-2.5) > 1e-9 {
		t.Errorf("score with only low firing = %g, want 2.5", lo.Score)
	}
	if math.Abs(hi.Score-5) > 1e-9 {
		t.Errorf("score with low and high fully firing = %g, want 5", hi.Score)
	}
}

func TestEvaluate_AndOrAntecedents(t *testing.T) {
	e := toyEngine(t, []RuleBlock{{Name: "risk", Rules: []Rule{
		{If: And(Is("x", "high"), Is("y", "normal")), Then: "high"},
		{If: Or(Is("x", "low"), Is("y", "normal")), Then: "low", Weight: 0.5},
	}}})
	f, err := e.Fuzzify(map[string]float64{"x": 6, "y": 1})
	if err != nil {
		t.Fatal(err)
	}
	sets, err := e.Infer(f)
	if err != nil {
		t.Fatal(err)
	}
	// x=6: low 0, high 0.5; y normal 1.
	if got := sets[0].Strengths; got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("strengths = %v, want [0.5 0.5]", got)
	}
}

func TestEvaluate_BlocksAreSummed(t *testing.T) {
	e := toyEngine(t, []RuleBlock{
		{Name: "first", Rules: []Rule{{If: Is("y", "normal"), Then: "low"}}},
		{Name: "second", Rules: []Rule{{If: Is("x", "high"), Then: "high"}}},
	})
	out, err := e.Evaluate(map[string]float64{"x": 9, "y": 3})
	if err != nil {
		t.Fatal(err)
	}
	first, _ := out.Block("first")
	second, _ := out.Block("second")
	if math.Abs(first.Centroid-2.5) > 1e-9 || math.Abs(second.Centroid-7.5) > 1e-9 {
		t.Errorf("block centroids = %g, %g; want 2.5, 7.5", first.Centroid, second.Centroid)
	}
	if math.Abs(out.Score-10) > 1e-9 {
		t.Errorf("Score = %g, want 10", out.Score)
	}
	if got := e.Blocks(); len(got) != 2 || got[0] != "first" {
		t.Errorf("Blocks() = %v", got)
	}
}

func TestFuzzify_RejectsMalformedInput(t *testing.T) {
	e := toyEngine(t, nil)
	cases := []struct {
		name string
		in   map[string]float64
		want error
	}{
		{"missing", map[string]float64{"x": 1}, ErrInvalidInput},
		{"nan", map[string]float64{"x": math.NaN(), "y": 1}, ErrInvalidInput},
		{"inf", map[string]float64{"x": 1, "y": math.Inf(1)}, ErrInvalidInput},
		{"unknown", map[string]float64{"x": 1, "y": 1, "z": 1}, ErrUnknownVariable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Fuzzify(tc.in); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestEngine_ConcurrentEvaluate(t *testing.T) {
	e := toyEngine(t, nil)
	want := make([]float64, 50)
	for i := range want {
		out, err := e.Evaluate(map[string]float64{"x": float64(i) / 5, "y": 5})
		if err != nil {
			t.Fatal(err)
		}
		want[i] = out.Score
	}

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for round := 0; round < 20; round++ {
				for i := range want {
					out, err := e.Evaluate(map[string]float64{"x": float64(i) / 5, "y": 5})
					if err != nil {
						return err
					}
					if out.Score != want[i] {
						return errors.New("concurrent result differs from sequential result")
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
