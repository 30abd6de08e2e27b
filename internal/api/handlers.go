package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"

	"github.com/go-chi/chi/v5"
)

// CalculateRequest is the body of POST /api/calculate. Every measurement is
// required; patient_id is optional and, when set, the assessment is saved.
type CalculateRequest struct {
	PatientID          string   `json:"patient_id,omitempty"`
	RespiratoryRate    *float64 `json:"respiratory_rate"`
	OxygenSaturation   *float64 `json:"oxygen_saturation"`
	SystolicBP         *float64 `json:"systolic_bp"`
	Pulse              *float64 `json:"pulse"`
	Consciousness      *string  `json:"consciousness"`
	Temperature        *float64 `json:"temperature"`
	SupplementalOxygen bool     `json:"supplemental_oxygen"`
}

// Measurements checks that every field is present.
func (r *CalculateRequest) Measurements() (news2.Measurements, error) {
	missing := func(field string) error {
		return &news2.MeasurementError{Field: field, Value: "(missing)", Reason: "field is required"}
	}
	switch {
	case r.RespiratoryRate == nil:
		return news2.Measurements{}, missing(news2.FieldRespiratoryRate)
	case r.OxygenSaturation == nil:
		return news2.Measurements{}, missing(news2.FieldOxygenSaturation)
	case r.SystolicBP == nil:
		return news2.Measurements{}, missing(news2.FieldSystolicBP)
	case r.Pulse == nil:
		return news2.Measurements{}, missing(news2.FieldPulse)
	case r.Consciousness == nil:
		return news2.Measurements{}, missing(news2.FieldConsciousness)
	case r.Temperature == nil:
		return news2.Measurements{}, missing(news2.FieldTemperature)
	}
	return news2.Measurements{
		RespiratoryRate:    *r.RespiratoryRate,
		OxygenSaturation:   *r.OxygenSaturation,
		SystolicBP:         *r.SystolicBP,
		Pulse:              *r.Pulse,
		Consciousness:      news2.Consciousness(*r.Consciousness),
		Temperature:        *r.Temperature,
		SupplementalOxygen: r.SupplementalOxygen,
	}, nil
}

// CalculateResponse is the scored result plus the saved assessment's id.
type CalculateResponse struct {
	PatientID    string `json:"patient_id,omitempty"`
	AssessmentID string `json:"assessment_id,omitempty"`
	*news2.Result
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	m, err := req.Measurements()
	if err != nil {
		s.measurementError(w, err)
		return
	}
	res, err := s.calc.Calculate(r.Context(), m)
	if err != nil {
		s.measurementError(w, err)
		return
	}

	resp := CalculateResponse{PatientID: req.PatientID, Result: res}
	if req.PatientID != "" {
		id, err := s.store.SaveAssessment(store.FromResult(req.PatientID, res))
		if err != nil {
			s.log.Error("save assessment failed", "patient_id", req.PatientID, "error", err)
			s.jsonError(w, http.StatusInternalServerError, "failed to save assessment")
			return
		}
		resp.AssessmentID = id
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patient_id")
	limit, err := queryInt(r, "limit", 10, 1, 100)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.store.ListAssessments(patientID, limit)
	if err != nil {
		s.log.Error("list assessments failed", "patient_id", patientID, "error", err)
		s.jsonError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}
	if list == nil {
		list = []*store.Assessment{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patient_id")
	days, err := queryInt(r, "days", 7, 1, 365)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	list, err := s.store.ListAssessmentsSince(patientID, since)
	if err != nil {
		s.log.Error("list assessments failed", "patient_id", patientID, "error", err)
		s.jsonError(w, http.StatusInternalServerError, "failed to retrieve statistics")
		return
	}
	s.jsonResponse(w, http.StatusOK, store.Summarize(patientID, days, list))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   s.cfg.Version,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// queryInt reads an integer query parameter bounded to [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, n)
	}
	return n, nil
}

func (s *Server) measurementError(w http.ResponseWriter, err error) {
	var merr *news2.MeasurementError
	if errors.As(err, &merr) {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error": merr.Error(),
			"field": merr.Field,
		})
		return
	}
	s.log.Error("calculate failed", "error", err)
	s.jsonError(w, http.StatusInternalServerError, "error calculating NEWS-2 score")
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("encode response failed", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
