package news2

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"fuzzynews/internal/logging"
	"fuzzynews/pkg/fuzzy"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Result is the outcome of one Calculate call. It is never shared.
type Result struct {
	CrispScore          int                      `json:"crisp_score"`
	FuzzyScore          float64                  `json:"fuzzy_score"`
	RiskCategory        Category                 `json:"risk_category"`
	RecommendedResponse string                   `json:"recommended_response"`
	RedScore            bool                     `json:"red_score"`
	OxygenScale         int                      `json:"oxygen_scale"`
	ParameterScores     ParameterScores          `json:"parameter_scores"`
	FuzzyContributions  map[string]float64       `json:"fuzzy_contributions"`
	Memberships         map[string]fuzzy.Degrees `json:"memberships"`
	Input               Measurements             `json:"input"`
	Timestamp           time.Time                `json:"timestamp"`
}

// engineSet is the fuzzy engine for one setting of the supplemental
// oxygen flag, plus the field bindings of its variables.
type engineSet struct {
	engine  *fuzzy.Engine
	scale   int
	fields  map[string]*fuzzy.Variable
	ranges  map[string]Range
	normals map[string]float64
}

// Scorer computes crisp and fuzzy NEWS-2 scores. It is immutable after New
// and safe for concurrent use.
type Scorer struct {
	air, oxygen  *engineSet
	categorizer  *Categorizer
	oxygenPoints float64

	log      *slog.Logger
	tracer   trace.Tracer
	assessed metric.Int64Counter
	now      func() time.Time
}

// New builds a Scorer from cfg. A nil cfg selects the embedded rule base.
// Every configuration error is reported here; a Scorer that was built never
// fails on configuration.
func New(cfg *Config) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	output, err := cfg.Output.buildVariable()
	if err != nil {
		return nil, fmt.Errorf("output variable: %w", err)
	}
	built := make(map[string]*fuzzy.Variable, len(cfg.Variables))
	for _, vc := range cfg.Variables {
		if _, dup := built[vc.Name]; dup {
			return nil, fmt.Errorf("variable %s declared twice", vc.Name)
		}
		if !slices.Contains(Fields, vc.Field) {
			return nil, fmt.Errorf("variable %s: unknown measurement field %q", vc.Name, vc.Field)
		}
		v, err := vc.buildVariable()
		if err != nil {
			return nil, err
		}
		built[vc.Name] = v
	}

	var opts []fuzzy.Option
	if cfg.Resolution > 0 {
		opts = append(opts, fuzzy.WithResolution(cfg.Resolution))
	}
	s := &Scorer{
		oxygenPoints: cfg.OxygenPoints,
		log:          logging.New("news2"),
		tracer:       otel.Tracer("fuzzynews/news2"),
		now:          time.Now,
	}
	if s.air, err = buildEngineSet(cfg, built, output, false, opts); err != nil {
		return nil, fmt.Errorf("air engine: %w", err)
	}
	if s.oxygen, err = buildEngineSet(cfg, built, output, true, opts); err != nil {
		return nil, fmt.Errorf("oxygen engine: %w", err)
	}
	if s.categorizer, err = NewCategorizer(cfg.Categories, cfg.RedScoreResponse); err != nil {
		return nil, err
	}
	s.assessed, err = otel.Meter("fuzzynews/news2").Int64Counter(
		"news2_assessments_total",
		metric.WithDescription("Completed NEWS-2 assessments by risk category"),
	)
	if err != nil {
		return nil, fmt.Errorf("create assessment counter: %w", err)
	}
	s.log.Debug("scorer ready",
		"resolution", s.air.engine.Resolution(),
		"categories", len(cfg.Categories))
	return s, nil
}

func buildEngineSet(cfg *Config, built map[string]*fuzzy.Variable, output *fuzzy.Variable, oxygen bool, opts []fuzzy.Option) (*engineSet, error) {
	set := &engineSet{
		scale:   1,
		fields:  make(map[string]*fuzzy.Variable),
		ranges:  make(map[string]Range),
		normals: make(map[string]float64),
	}
	if oxygen {
		set.scale = 2
	}
	var inputs []*fuzzy.Variable
	var blocks []fuzzy.RuleBlock
	for _, vc := range cfg.Variables {
		if vc.SupplementalOxygen != nil && *vc.SupplementalOxygen != oxygen {
			continue
		}
		if prev, dup := set.fields[vc.Field]; dup {
			return nil, fmt.Errorf("field %s is bound to both %s and %s", vc.Field, prev.Name(), vc.Name)
		}
		v := built[vc.Name]
		set.fields[vc.Field] = v
		set.ranges[vc.Field] = Range{Min: vc.Min, Max: vc.Max}
		if vc.Normal != "" {
			t, _ := v.Term(vc.Normal)
			set.normals[vc.Field] = t.Shape.Peak()
		}
		inputs = append(inputs, v)
		b, err := vc.buildBlock()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	for _, f := range Fields {
		if _, ok := set.fields[f]; !ok {
			return nil, fmt.Errorf("no variable reads %s", f)
		}
	}
	engine, err := fuzzy.NewEngine(inputs, output, blocks, opts...)
	if err != nil {
		return nil, err
	}
	set.engine = engine
	return set, nil
}

func (s *Scorer) set(supplementalOxygen bool) *engineSet {
	if supplementalOxygen {
		return s.oxygen
	}
	return s.air
}

// Calculate validates m and scores it. Invalid input yields a
// *MeasurementError; nothing else can fail.
func (s *Scorer) Calculate(ctx context.Context, m Measurements) (*Result, error) {
	_, span := s.tracer.Start(ctx, "news2.Calculate")
	defer span.End()

	set := s.set(m.SupplementalOxygen)
	nm, err := m.normalize(set.ranges)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid measurement")
		s.log.Debug("rejected measurement", "error", err)
		return nil, err
	}

	crisp := make(map[string]float64, len(set.fields))
	for field, v := range set.fields {
		x, _ := nm.Value(field)
		crisp[v.Name()] = x
	}
	out, err := set.engine.Evaluate(crisp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inference failed")
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	res := &Result{
		OxygenScale:        set.scale,
		FuzzyContributions: make(map[string]float64, len(out.Blocks)),
		Memberships:        make(map[string]fuzzy.Degrees, len(set.fields)),
		Input:              nm,
		Timestamp:          s.now().UTC(),
	}
	for _, b := range out.Blocks {
		res.FuzzyContributions[b.Name] = b.Centroid
	}
	for field, v := range set.fields {
		res.Memberships[field] = out.Memberships[v.Name()]
	}
	res.FuzzyScore = out.Score
	if nm.SupplementalOxygen {
		res.FuzzyContributions[FieldSupplementalOxygen] = s.oxygenPoints
		res.FuzzyScore += s.oxygenPoints
	}
	res.ParameterScores = CrispScores(nm)
	res.CrispScore = res.ParameterScores.Total()
	res.RedScore = res.ParameterScores.Red()
	res.RiskCategory = s.categorizer.Categorize(res.FuzzyScore)
	res.RecommendedResponse = s.categorizer.Response(res.FuzzyScore, res.RedScore)

	span.SetAttributes(
		attribute.Int("news2.crisp_score", res.CrispScore),
		attribute.Float64("news2.fuzzy_score", res.FuzzyScore),
		attribute.String("news2.category", string(res.RiskCategory)),
		attribute.Int("news2.oxygen_scale", res.OxygenScale),
	)
	s.assessed.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(res.RiskCategory))))
	return res, nil
}

// Categorizer returns the score boundary table.
func (s *Scorer) Categorizer() *Categorizer { return s.categorizer }

// Engine returns the fuzzy engine used for the given oxygen flag.
func (s *Scorer) Engine(supplementalOxygen bool) *fuzzy.Engine {
	return s.set(supplementalOxygen).engine
}

// Variable returns the fuzzy variable that reads field under the given
// oxygen flag.
func (s *Scorer) Variable(field string, supplementalOxygen bool) (*fuzzy.Variable, bool) {
	v, ok := s.set(supplementalOxygen).fields[field]
	return v, ok
}

// Baseline returns the reading that sits at the peak of every variable's
// normal term.
func (s *Scorer) Baseline(supplementalOxygen bool) Measurements {
	n := s.set(supplementalOxygen).normals
	m := Measurements{
		RespiratoryRate:    n[FieldRespiratoryRate],
		OxygenSaturation:   n[FieldOxygenSaturation],
		SystolicBP:         n[FieldSystolicBP],
		Pulse:              n[FieldPulse],
		Temperature:        n[FieldTemperature],
		Consciousness:      consciousnessFromCode(n[FieldConsciousness]),
		SupplementalOxygen: supplementalOxygen,
	}
	return m
}

func consciousnessFromCode(x float64) Consciousness {
	switch math.Round(x) {
	case 1:
		return Voice
	case 2:
		return Pain
	case 3:
		return Unresponsive
	}
	return Alert
}
