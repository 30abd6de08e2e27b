package store

// Trend describes how the crisp score moved over a window.
type Trend string

const (
	TrendImproving     Trend = "Improving"
	TrendWorsening     Trend = "Worsening"
	TrendStable        Trend = "Stable"
	TrendNotEnoughData Trend = "Not enough data"
	TrendNoData        Trend = "No data available"
)

// Summary aggregates a patient's assessments over a number of days. The
// score fields are nil when there is nothing to aggregate.
type Summary struct {
	PatientID    string         `json:"patient_id"`
	Days         int            `json:"days"`
	Count        int            `json:"assessments_count"`
	AverageCrisp *float64       `json:"average_crisp_score"`
	AverageFuzzy *float64       `json:"average_fuzzy_score"`
	MaxCrisp     *int           `json:"max_crisp_score"`
	MaxFuzzy     *float64       `json:"max_fuzzy_score"`
	Categories   map[string]int `json:"categories"`
	Trend        Trend          `json:"trend"`
}

// Summarize computes statistics over assessments in any order. The trend
// compares the crisp score of the oldest and the newest assessment.
func Summarize(patientID string, days int, assessments []*Assessment) Summary {
	sum := Summary{
		PatientID:  patientID,
		Days:       days,
		Count:      len(assessments),
		Categories: make(map[string]int),
		Trend:      TrendNoData,
	}
	if len(assessments) == 0 {
		return sum
	}

	var crispTotal, fuzzyTotal float64
	maxCrisp, maxFuzzy := assessments[0].CrispScore, assessments[0].FuzzyScore
	oldest, newest := assessments[0], assessments[0]
	for _, a := range assessments {
		crispTotal += float64(a.CrispScore)
		fuzzyTotal += a.FuzzyScore
		maxCrisp = max(maxCrisp, a.CrispScore)
		maxFuzzy = max(maxFuzzy, a.FuzzyScore)
		sum.Categories[a.RiskCategory]++
		if a.Timestamp.Before(oldest.Timestamp) {
			oldest = a
		}
		if a.Timestamp.After(newest.Timestamp) {
			newest = a
		}
	}
	n := float64(len(assessments))
	avgCrisp, avgFuzzy := crispTotal/n, fuzzyTotal/n
	sum.AverageCrisp, sum.AverageFuzzy = &avgCrisp, &avgFuzzy
	sum.MaxCrisp, sum.MaxFuzzy = &maxCrisp, &maxFuzzy

	switch {
	case len(assessments) < 2:
		sum.Trend = TrendNotEnoughData
	case newest.CrispScore < oldest.CrispScore:
		sum.Trend = TrendImproving
	case newest.CrispScore > oldest.CrispScore:
		sum.Trend = TrendWorsening
	default:
		sum.Trend = TrendStable
	}
	return sum
}
