package news2

// ParameterScores are the crisp NEWS-2 chart points for each parameter.
type ParameterScores struct {
	RespiratoryRate    int `json:"respiratory_rate"`
	OxygenSaturation   int `json:"oxygen_saturation"`
	SupplementalOxygen int `json:"supplemental_oxygen"`
	SystolicBP         int `json:"systolic_bp"`
	Pulse              int `json:"pulse"`
	Consciousness      int `json:"consciousness"`
	Temperature        int `json:"temperature"`
}

// Total is the aggregate NEWS-2 score.
func (p ParameterScores) Total() int {
	return p.RespiratoryRate + p.OxygenSaturation + p.SupplementalOxygen +
		p.SystolicBP + p.Pulse + p.Consciousness + p.Temperature
}

// Red reports whether any single physiological parameter scores 3.
func (p ParameterScores) Red() bool {
	for _, v := range []int{p.RespiratoryRate, p.OxygenSaturation, p.SystolicBP, p.Pulse, p.Consciousness, p.Temperature} {
		if v >= 3 {
			return true
		}
	}
	return false
}

// ByField returns the points keyed by measurement field.
func (p ParameterScores) ByField() map[string]int {
	return map[string]int{
		FieldRespiratoryRate:    p.RespiratoryRate,
		FieldOxygenSaturation:   p.OxygenSaturation,
		FieldSupplementalOxygen: p.SupplementalOxygen,
		FieldSystolicBP:         p.SystolicBP,
		FieldPulse:              p.Pulse,
		FieldConsciousness:      p.Consciousness,
		FieldTemperature:        p.Temperature,
	}
}

// band maps readings up to and including upper to points.
type band struct {
	upper  float64
	points int
}

// lookup returns the points of the first band containing x, or last when x
// is above every band.
func lookup(bands []band, last int, x float64) int {
	for _, b := range bands {
		if x <= b.upper {
			return b.points
		}
	}
	return last
}

// NEWS-2 chart rows (RCP 2017). Fractional readings fall into the band whose
// upper cut-off they do not exceed.
var (
	respirationBands = []band{{8, 3}, {11, 1}, {20, 0}, {24, 2}}
	spo2Scale1Bands  = []band{{91, 3}, {93, 2}, {95, 1}}
	spo2Scale2Bands  = []band{{83, 3}, {85, 2}, {87, 1}, {92, 0}, {94, 1}, {96, 2}}
	systolicBands    = []band{{90, 3}, {100, 2}, {110, 1}, {219, 0}}
	pulseBands       = []band{{40, 3}, {50, 1}, {90, 0}, {110, 1}, {130, 2}}
	temperatureBands = []band{{35.0, 3}, {36.0, 1}, {38.0, 0}, {39.0, 1}}
)

// oxygenTherapyPoints is the "air or oxygen" row.
const oxygenTherapyPoints = 2

// CrispScores looks m up in the NEWS-2 chart. SpO2 uses Scale 2 when
// supplemental oxygen is given, Scale 1 otherwise.
func CrispScores(m Measurements) ParameterScores {
	p := ParameterScores{
		RespiratoryRate: lookup(respirationBands, 3, m.RespiratoryRate),
		SystolicBP:      lookup(systolicBands, 3, m.SystolicBP),
		Pulse:           lookup(pulseBands, 3, m.Pulse),
		Temperature:     lookup(temperatureBands, 2, m.Temperature),
	}
	if m.SupplementalOxygen {
		p.OxygenSaturation = lookup(spo2Scale2Bands, 3, m.OxygenSaturation)
		p.SupplementalOxygen = oxygenTherapyPoints
	} else {
		p.OxygenSaturation = lookup(spo2Scale1Bands, 0, m.OxygenSaturation)
	}
	if m.Consciousness != Alert {
		p.Consciousness = 3
	}
	return p
}
