package news2

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidMeasurement is matched by every MeasurementError.
var ErrInvalidMeasurement = errors.New("news2: invalid measurement")

// MeasurementError reports a per-call input that is out of range or
// unrecognised. It never affects the Scorer.
type MeasurementError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value, e.Reason)
}

func (e *MeasurementError) Is(target error) bool { return target == ErrInvalidMeasurement }

// Measurement field names, shared by configuration, results and transports.
const (
	FieldRespiratoryRate    = "respiratory_rate"
	FieldOxygenSaturation   = "oxygen_saturation"
	FieldSupplementalOxygen = "supplemental_oxygen"
	FieldSystolicBP         = "systolic_bp"
	FieldPulse              = "pulse"
	FieldConsciousness      = "consciousness"
	FieldTemperature        = "temperature"
)

// Fields lists the six physiological parameters in chart order.
var Fields = []string{
	FieldRespiratoryRate,
	FieldOxygenSaturation,
	FieldSystolicBP,
	FieldPulse,
	FieldConsciousness,
	FieldTemperature,
}

// Consciousness is an ACVPU level, stored as its one-letter code.
type Consciousness string

const (
	Alert        Consciousness = "A"
	Voice        Consciousness = "V"
	Pain         Consciousness = "P"
	Unresponsive Consciousness = "U"
)

var consciousnessNames = map[string]Consciousness{
	"a": Alert, "alert": Alert,
	"v": Voice, "voice": Voice,
	"p": Pain, "pain": Pain,
	"u": Unresponsive, "unresponsive": Unresponsive,
}

// ParseConsciousness accepts a code or full name in any case.
func ParseConsciousness(s string) (Consciousness, error) {
	if c, ok := consciousnessNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", &MeasurementError{Field: FieldConsciousness, Value: fmt.Sprintf("%q", s), Reason: "must be one of A, V, P, U"}
}

// Code maps the level onto the consciousness variable's universe.
func (c Consciousness) Code() float64 {
	switch c {
	case Voice:
		return 1
	case Pain:
		return 2
	case Unresponsive:
		return 3
	}
	return 0
}

// Measurements is one set of bedside observations.
type Measurements struct {
	RespiratoryRate    float64       `json:"respiratory_rate" yaml:"respiratory_rate"`
	OxygenSaturation   float64       `json:"oxygen_saturation" yaml:"oxygen_saturation"`
	SystolicBP         float64       `json:"systolic_bp" yaml:"systolic_bp"`
	Pulse              float64       `json:"pulse" yaml:"pulse"`
	Consciousness      Consciousness `json:"consciousness" yaml:"consciousness"`
	Temperature        float64       `json:"temperature" yaml:"temperature"`
	SupplementalOxygen bool          `json:"supplemental_oxygen" yaml:"supplemental_oxygen"`
}

// Value returns the crisp input for a measurement field. Consciousness is
// returned as its code.
func (m Measurements) Value(field string) (float64, bool) {
	switch field {
	case FieldRespiratoryRate:
		return m.RespiratoryRate, true
	case FieldOxygenSaturation:
		return m.OxygenSaturation, true
	case FieldSystolicBP:
		return m.SystolicBP, true
	case FieldPulse:
		return m.Pulse, true
	case FieldConsciousness:
		return m.Consciousness.Code(), true
	case FieldTemperature:
		return m.Temperature, true
	}
	return 0, false
}

// Range is an accepted physiological interval, inclusive.
type Range struct {
	Min, Max float64
}

// normalize validates m against ranges and returns a copy with the
// consciousness code canonicalised.
func (m Measurements) normalize(ranges map[string]Range) (Measurements, error) {
	c, err := ParseConsciousness(string(m.Consciousness))
	if err != nil {
		return m, err
	}
	m.Consciousness = c
	for _, field := range Fields {
		if field == FieldConsciousness {
			continue
		}
		x, _ := m.Value(field)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return m, &MeasurementError{Field: field, Value: fmt.Sprint(x), Reason: "not a finite number"}
		}
		r, ok := ranges[field]
		if !ok {
			continue
		}
		if x < r.Min || x > r.Max {
			return m, &MeasurementError{
				Field:  field,
				Value:  fmt.Sprint(x),
				Reason: fmt.Sprintf("outside accepted range %g-%g", r.Min, r.Max),
			}
		}
	}
	return m, nil
}
