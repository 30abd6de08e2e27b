package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"
)

const deteriorating = `{
	"patient_id": "p-7",
	"respiratory_rate": 22,
	"oxygen_saturation": 94,
	"systolic_bp": 110,
	"pulse": 105,
	"consciousness": "A",
	"temperature": 38.5
}`

func newTestServer(t *testing.T) (*httptest.Server, *store.MemStore) {
	t.Helper()
	scorer, err := news2.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewMemStore()
	srv, err := NewServer(scorer, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, out
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp
}

func TestCalculate_ScoresAndSaves(t *testing.T) {
	ts, st := newTestServer(t)
	resp, body := post(t, ts.URL+"/api/calculate", deteriorating)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	if body["crisp_score"] != float64(6) {
		t.Errorf("crisp_score = %v, want 6", body["crisp_score"])
	}
	if body["risk_category"] != "Medium" {
		t.Errorf("risk_category = %v", body["risk_category"])
	}
	if body["patient_id"] != "p-7" {
		t.Errorf("patient_id = %v", body["patient_id"])
	}
	id, _ := body["assessment_id"].(string)
	saved, err := st.GetAssessment(id)
	if err != nil || saved == nil {
		t.Fatalf("assessment %q not saved: %v", id, err)
	}
	if saved.CrispScore != 6 || saved.PatientID != "p-7" {
		t.Errorf("saved = %+v", saved)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestCalculate_AnonymousIsNotSaved(t *testing.T) {
	ts, st := newTestServer(t)
	anon := strings.Replace(deteriorating, `"patient_id": "p-7",`, "", 1)
	resp, body := post(t, ts.URL+"/api/calculate", anon)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if _, ok := body["assessment_id"]; ok {
		t.Error("anonymous calculation must not be saved")
	}
	if list, _ := st.ListAssessments("", 0); len(list) != 0 {
		t.Errorf("store has %d assessments", len(list))
	}
}

func TestCalculate_ValidationErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	cases := []struct {
		name, body, field string
	}{
		{"missing pulse", strings.Replace(deteriorating, `"pulse": 105,`, "", 1), news2.FieldPulse},
		{"saturation out of range", strings.Replace(deteriorating, `"oxygen_saturation": 94`, `"oxygen_saturation": 120`, 1), news2.FieldOxygenSaturation},
		{"bad consciousness", strings.Replace(deteriorating, `"consciousness": "A"`, `"consciousness": "Z"`, 1), news2.FieldConsciousness},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := post(t, ts.URL+"/api/calculate", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if body["field"] != tc.field {
				t.Errorf("field = %v, want %s", body["field"], tc.field)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Error("error message missing")
			}
		})
	}

	resp, body := post(t, ts.URL+"/api/calculate", "{not json")
	if resp.StatusCode != http.StatusBadRequest || body["error"] == nil {
		t.Errorf("malformed body: %d %v", resp.StatusCode, body)
	}
}

func TestHistory(t *testing.T) {
	ts, _ := newTestServer(t)
	for range 3 {
		if resp, _ := post(t, ts.URL+"/api/calculate", deteriorating); resp.StatusCode != http.StatusOK {
			t.Fatalf("calculate status %d", resp.StatusCode)
		}
	}
	var list []store.Assessment
	if resp := getJSON(t, ts.URL+"/api/history/p-7?limit=2", &list); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(list) != 2 {
		t.Errorf("limit=2 returned %d", len(list))
	}

	var empty []store.Assessment
	getJSON(t, ts.URL+"/api/history/nobody", &empty)
	if empty == nil || len(empty) != 0 {
		t.Errorf("unknown patient = %v, want empty list", empty)
	}

	for _, q := range []string{"limit=0", "limit=101", "limit=ten"} {
		var e map[string]string
		if resp := getJSON(t, ts.URL+"/api/history/p-7?"+q, &e); resp.StatusCode != http.StatusBadRequest || e["error"] == "" {
			t.Errorf("%s: status %d body %v", q, resp.StatusCode, e)
		}
	}
}

func TestStatistics(t *testing.T) {
	ts, st := newTestServer(t)
	now := time.Now().UTC()
	for i, crisp := range []int{8, 5, 3} {
		a := &store.Assessment{PatientID: "p-9", Timestamp: now.Add(time.Duration(i-3) * time.Hour), CrispScore: crisp, FuzzyScore: float64(crisp), RiskCategory: "Medium"}
		if _, err := st.SaveAssessment(a); err != nil {
			t.Fatal(err)
		}
	}
	old := &store.Assessment{PatientID: "p-9", Timestamp: now.Add(-30 * 24 * time.Hour), CrispScore: 1, RiskCategory: "Low"}
	if _, err := st.SaveAssessment(old); err != nil {
		t.Fatal(err)
	}

	var sum store.Summary
	if resp := getJSON(t, ts.URL+"/api/statistics/p-9", &sum); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if sum.Count != 3 || sum.Days != 7 {
		t.Errorf("count/days = %d/%d, want 3/7", sum.Count, sum.Days)
	}
	if sum.Trend != store.TrendImproving {
		t.Errorf("trend = %s, want Improving", sum.Trend)
	}
	if sum.MaxCrisp == nil || *sum.MaxCrisp != 8 {
		t.Errorf("max crisp = %v", sum.MaxCrisp)
	}

	var wide store.Summary
	getJSON(t, ts.URL+"/api/statistics/p-9?days=60", &wide)
	if wide.Count != 4 {
		t.Errorf("60-day window count = %d, want 4", wide.Count)
	}

	var none store.Summary
	getJSON(t, ts.URL+"/api/statistics/nobody", &none)
	if none.Trend != store.TrendNoData || none.AverageCrisp != nil {
		t.Errorf("no data summary = %+v", none)
	}

	var e map[string]string
	if resp := getJSON(t, ts.URL+"/api/statistics/p-9?days=400", &e); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("days=400 status = %d", resp.StatusCode)
	}
}

func TestHealthAndCORS(t *testing.T) {
	ts, _ := newTestServer(t)
	var health map[string]string
	getJSON(t, ts.URL+"/api/health", &health)
	if health["status"] != "healthy" || health["version"] != "dev" {
		t.Errorf("health = %v", health)
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/calculate", nil)
	req.Header.Set("Origin", "http://ward.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://ward.example" {
		t.Errorf("allow origin = %q", got)
	}

	resp, err = http.Get(ts.URL + "/api/calculate")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/calculate status = %d, want 405", resp.StatusCode)
	}
}

type panicCalculator struct{}

func (panicCalculator) Calculate(context.Context, news2.Measurements) (*news2.Result, error) {
	panic("rule base corrupted")
}

func TestHandler_RecoversFromPanics(t *testing.T) {
	srv, err := NewServer(panicCalculator{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/calculate", "application/json", strings.NewReader(deteriorating))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("panicking calculate status = %d, want 500", resp.StatusCode)
	}

	var health map[string]any
	if resp := getJSON(t, ts.URL+"/api/health", &health); resp.StatusCode != http.StatusOK {
		t.Errorf("health after panic status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/unknown")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	scorer, err := news2.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := NewServer(scorer, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/calculate"
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(deteriorating))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewServer_RequiresCalculator(t *testing.T) {
	if _, err := NewServer(nil, nil, nil); err == nil {
		t.Error("nil calculator should be rejected")
	}
}
