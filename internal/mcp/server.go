// Package mcp exposes the NEWS-2 scorer and assessment history as MCP
// tools so an assistant can score a patient and read back the trend.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuzzynews/internal/logging"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Calculator scores one set of measurements.
type Calculator interface {
	Calculate(ctx context.Context, m news2.Measurements) (*news2.Result, error)
}

// Server wraps the MCP SDK server around a calculator and a store.
type Server struct {
	MCPServer *sdkmcp.Server

	calc  Calculator
	store store.Store
	now   func() time.Time
}

// NewServer registers the scoring and history tools. A nil st keeps
// history in memory for the life of the process.
func NewServer(calc Calculator, st store.Store, version string) (*Server, error) {
	if calc == nil {
		return nil, errors.New("mcp: calculator is nil")
	}
	if st == nil {
		st = store.NewMemStore()
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{calc: calc, store: st, now: time.Now}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "fuzzynews", Version: version},
		nil,
	)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "calculate_news2",
		Description: "Score a set of bedside observations with the crisp and fuzzy NEWS-2 systems. Saves the assessment when patient_id is given.",
	}, s.handleCalculate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_history",
		Description: "List a patient's saved assessments, newest first.",
	}, s.handleHistory)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_statistics",
		Description: "Summarize a patient's assessments over the last N days: averages, maxima, category counts and trend.",
	}, s.handleStatistics)
}

// --- Tool input/output types ---

type calculateInput struct {
	PatientID          string  `json:"patient_id,omitempty" jsonschema:"patient identifier; when set the assessment is saved"`
	RespiratoryRate    float64 `json:"respiratory_rate" jsonschema:"breaths per minute"`
	OxygenSaturation   float64 `json:"oxygen_saturation" jsonschema:"SpO2 in percent"`
	SystolicBP         float64 `json:"systolic_bp" jsonschema:"systolic blood pressure in mmHg"`
	Pulse              float64 `json:"pulse" jsonschema:"heart rate in beats per minute"`
	Consciousness      string  `json:"consciousness" jsonschema:"ACVPU level (A, V, P or U)"`
	Temperature        float64 `json:"temperature" jsonschema:"body temperature in degrees Celsius"`
	SupplementalOxygen bool    `json:"supplemental_oxygen,omitempty" jsonschema:"patient is on supplemental oxygen (selects SpO2 Scale 2)"`
}

func (in calculateInput) measurements() news2.Measurements {
	return news2.Measurements{
		RespiratoryRate:    in.RespiratoryRate,
		OxygenSaturation:   in.OxygenSaturation,
		SystolicBP:         in.SystolicBP,
		Pulse:              in.Pulse,
		Consciousness:      news2.Consciousness(in.Consciousness),
		Temperature:        in.Temperature,
		SupplementalOxygen: in.SupplementalOxygen,
	}
}

type calculateOutput struct {
	PatientID           string             `json:"patient_id,omitempty"`
	AssessmentID        string             `json:"assessment_id,omitempty"`
	CrispScore          int                `json:"crisp_score"`
	FuzzyScore          float64            `json:"fuzzy_score"`
	RiskCategory        string             `json:"risk_category"`
	RecommendedResponse string             `json:"recommended_response"`
	RedScore            bool               `json:"red_score"`
	OxygenScale         int                `json:"oxygen_scale"`
	ParameterScores     map[string]int     `json:"parameter_scores"`
	FuzzyContributions  map[string]float64 `json:"fuzzy_contributions"`
	Timestamp           string             `json:"timestamp"`
}

type historyInput struct {
	PatientID string `json:"patient_id" jsonschema:"patient identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum assessments to return, 1-100 (default 10)"`
}

type assessmentOutput struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	CrispScore   int     `json:"crisp_score"`
	FuzzyScore   float64 `json:"fuzzy_score"`
	RiskCategory string  `json:"risk_category"`
	RedScore     bool    `json:"red_score"`
	OxygenScale  int     `json:"oxygen_scale"`
}

type historyOutput struct {
	PatientID   string             `json:"patient_id"`
	Assessments []assessmentOutput `json:"assessments"`
}

type statisticsInput struct {
	PatientID string `json:"patient_id" jsonschema:"patient identifier"`
	Days      int    `json:"days,omitempty" jsonschema:"window in days, 1-365 (default 7)"`
}

type statisticsOutput struct {
	PatientID    string         `json:"patient_id"`
	Days         int            `json:"days"`
	Count        int            `json:"assessments_count"`
	AverageCrisp *float64       `json:"average_crisp_score"`
	AverageFuzzy *float64       `json:"average_fuzzy_score"`
	MaxCrisp     *int           `json:"max_crisp_score"`
	MaxFuzzy     *float64       `json:"max_fuzzy_score"`
	Categories   map[string]int `json:"categories"`
	Trend        string         `json:"trend"`
}

// --- Tool handlers ---

func (s *Server) handleCalculate(ctx context.Context, _ *sdkmcp.CallToolRequest, input calculateInput) (*sdkmcp.CallToolResult, calculateOutput, error) {
	res, err := s.calc.Calculate(ctx, input.measurements())
	if err != nil {
		return nil, calculateOutput{}, fmt.Errorf("calculate_news2: %w", err)
	}
	out := calculateOutput{
		PatientID:           input.PatientID,
		CrispScore:          res.CrispScore,
		FuzzyScore:          res.FuzzyScore,
		RiskCategory:        string(res.RiskCategory),
		RecommendedResponse: res.RecommendedResponse,
		RedScore:            res.RedScore,
		OxygenScale:         res.OxygenScale,
		ParameterScores:     res.ParameterScores.ByField(),
		FuzzyContributions:  res.FuzzyContributions,
		Timestamp:           res.Timestamp.Format(time.RFC3339),
	}
	if input.PatientID != "" {
		id, err := s.store.SaveAssessment(store.FromResult(input.PatientID, res))
		if err != nil {
			return nil, calculateOutput{}, fmt.Errorf("save assessment: %w", err)
		}
		out.AssessmentID = id
		logging.New("mcp").Info("assessment saved",
			"patient_id", input.PatientID, "id", id, "category", out.RiskCategory)
	}
	return nil, out, nil
}

func (s *Server) handleHistory(_ context.Context, _ *sdkmcp.CallToolRequest, input historyInput) (*sdkmcp.CallToolResult, historyOutput, error) {
	if input.PatientID == "" {
		return nil, historyOutput{}, errors.New("patient_id is required")
	}
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}
	if limit < 1 || limit > 100 {
		return nil, historyOutput{}, fmt.Errorf("limit must be between 1 and 100, got %d", input.Limit)
	}
	list, err := s.store.ListAssessments(input.PatientID, limit)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("get_history: %w", err)
	}
	out := historyOutput{PatientID: input.PatientID, Assessments: make([]assessmentOutput, 0, len(list))}
	for _, a := range list {
		out.Assessments = append(out.Assessments, assessmentOutput{
			ID:           a.ID,
			Timestamp:    a.Timestamp.UTC().Format(time.RFC3339),
			CrispScore:   a.CrispScore,
			FuzzyScore:   a.FuzzyScore,
			RiskCategory: a.RiskCategory,
			RedScore:     a.RedScore,
			OxygenScale:  a.OxygenScale,
		})
	}
	return nil, out, nil
}

func (s *Server) handleStatistics(_ context.Context, _ *sdkmcp.CallToolRequest, input statisticsInput) (*sdkmcp.CallToolResult, statisticsOutput, error) {
	if input.PatientID == "" {
		return nil, statisticsOutput{}, errors.New("patient_id is required")
	}
	days := input.Days
	if days == 0 {
		days = 7
	}
	if days < 1 || days > 365 {
		return nil, statisticsOutput{}, fmt.Errorf("days must be between 1 and 365, got %d", input.Days)
	}
	list, err := s.store.ListAssessmentsSince(input.PatientID, s.now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, statisticsOutput{}, fmt.Errorf("get_statistics: %w", err)
	}
	sum := store.Summarize(input.PatientID, days, list)
	return nil, statisticsOutput{
		PatientID:    sum.PatientID,
		Days:         sum.Days,
		Count:        sum.Count,
		AverageCrisp: sum.AverageCrisp,
		AverageFuzzy: sum.AverageFuzzy,
		MaxCrisp:     sum.MaxCrisp,
		MaxFuzzy:     sum.MaxFuzzy,
		Categories:   sum.Categories,
		Trend:        string(sum.Trend),
	}, nil
}
