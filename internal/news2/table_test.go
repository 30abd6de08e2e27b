package news2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCrispScores_Bands(t *testing.T) {
	base := Measurements{RespiratoryRate: 16, OxygenSaturation: 98, SystolicBP: 130, Pulse: 70, Consciousness: Alert, Temperature: 37}
	cases := []struct {
		name  string
		edit  func(*Measurements)
		field string
		want  int
	}{
		{"rr 8", func(m *Measurements) { m.RespiratoryRate = 8 }, FieldRespiratoryRate, 3},
		{"rr 9", func(m *Measurements) { m.RespiratoryRate = 9 }, FieldRespiratoryRate, 1},
		{"rr 12", func(m *Measurements) { m.RespiratoryRate = 12 }, FieldRespiratoryRate, 0},
		{"rr 21", func(m *Measurements) { m.RespiratoryRate = 21 }, FieldRespiratoryRate, 2},
		{"rr 25", func(m *Measurements) { m.RespiratoryRate = 25 }, FieldRespiratoryRate, 3},
		{"spo2 91", func(m *Measurements) { m.OxygenSaturation = 91 }, FieldOxygenSaturation, 3},
		{"spo2 93", func(m *Measurements) { m.OxygenSaturation = 93 }, FieldOxygenSaturation, 2},
		{"spo2 95", func(m *Measurements) { m.OxygenSaturation = 95 }, FieldOxygenSaturation, 1},
		{"spo2 96", func(m *Measurements) { m.OxygenSaturation = 96 }, FieldOxygenSaturation, 0},
		{"sbp 90", func(m *Measurements) { m.SystolicBP = 90 }, FieldSystolicBP, 3},
		{"sbp 100", func(m *Measurements) { m.SystolicBP = 100 }, FieldSystolicBP, 2},
		{"sbp 101", func(m *Measurements) { m.SystolicBP = 101 }, FieldSystolicBP, 1},
		{"sbp 219", func(m *Measurements) { m.SystolicBP = 219 }, FieldSystolicBP, 0},
		{"sbp 220", func(m *Measurements) { m.SystolicBP = 220 }, FieldSystolicBP, 3},
		{"pulse 40", func(m *Measurements) { m.Pulse = 40 }, FieldPulse, 3},
		{"pulse 41", func(m *Measurements) { m.Pulse = 41 }, FieldPulse, 1},
		{"pulse 91", func(m *Measurements) { m.Pulse = 91 }, FieldPulse, 1},
		{"pulse 111", func(m *Measurements) { m.Pulse = 111 }, FieldPulse, 2},
		{"pulse 131", func(m *Measurements) { m.Pulse = 131 }, FieldPulse, 3},
		{"temp 35.0", func(m *Measurements) { m.Temperature = 35.0 }, FieldTemperature, 3},
		{"temp 35.1", func(m *Measurements) { m.Temperature = 35.1 }, FieldTemperature, 1},
		{"temp 38.1", func(m *Measurements) { m.Temperature = 38.1 }, FieldTemperature, 1},
		{"temp 39.1", func(m *Measurements) { m.Temperature = 39.1 }, FieldTemperature, 2},
		{"voice", func(m *Measurements) { m.Consciousness = Voice }, FieldConsciousness, 3},
		{"unresponsive", func(m *Measurements) { m.Consciousness = Unresponsive }, FieldConsciousness, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := base
			tc.edit(&m)
			got := CrispScores(m).ByField()[tc.field]
			if got != tc.want {
				t.Errorf("%s points = %d, want %d", tc.field, got, tc.want)
			}
		})
	}
}

func TestCrispScores_Scale2OnOxygen(t *testing.T) {
	cases := []struct {
		spo2 float64
		want int
	}{
		{83, 3}, {84, 2}, {86, 1}, {88, 0}, {92, 0}, {93, 1}, {95, 2}, {97, 3}, {100, 3},
	}
	for _, tc := range cases {
		m := Measurements{RespiratoryRate: 16, OxygenSaturation: tc.spo2, SystolicBP: 130, Pulse: 70, Consciousness: Alert, Temperature: 37, SupplementalOxygen: true}
		p := CrispScores(m)
		if p.OxygenSaturation != tc.want {
			t.Errorf("Scale 2 SpO2 %g = %d, want %d", tc.spo2, p.OxygenSaturation, tc.want)
		}
		if p.SupplementalOxygen != 2 {
			t.Errorf("oxygen therapy points = %d, want 2", p.SupplementalOxygen)
		}
	}
}

func TestParameterScores_TotalAndRed(t *testing.T) {
	p := ParameterScores{RespiratoryRate: 2, OxygenSaturation: 1, SupplementalOxygen: 2, SystolicBP: 1}
	if p.Total() != 6 {
		t.Errorf("Total() = %d, want 6", p.Total())
	}
	if p.Red() {
		t.Error("no single parameter at 3, Red() should be false")
	}
	p.Pulse = 3
	if !p.Red() {
		t.Error("pulse at 3 should make Red() true")
	}
	want := map[string]int{
		FieldRespiratoryRate: 2, FieldOxygenSaturation: 1, FieldSupplementalOxygen: 2,
		FieldSystolicBP: 1, FieldPulse: 3, FieldConsciousness: 0, FieldTemperature: 0,
	}
	if diff := cmp.Diff(want, p.ByField()); diff != "" {
		t.Errorf("ByField (-want +got):\n%s", diff)
	}
}

func TestParseConsciousness(t *testing.T) {
	for in, want := range map[string]Consciousness{
		"A": Alert, "alert": Alert, " v ": Voice, "Pain": Pain, "u": Unresponsive, "UNRESPONSIVE": Unresponsive,
	} {
		got, err := ParseConsciousness(in)
		if err != nil || got != want {
			t.Errorf("ParseConsciousness(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseConsciousness("C"); err == nil {
		t.Error("C is not an ACVPU code this scorer accepts")
	}
}
