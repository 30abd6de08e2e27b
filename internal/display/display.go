// Package display provides human-readable names for machine codes.
//
// Code is for machines, words are for humans: use these in CLI tables and
// logs, keep the raw codes in JSON fields and map keys.
package display

import (
	"strings"

	"fuzzynews/internal/news2"
)

// --- Measurement fields ---

var fields = map[string]string{
	news2.FieldRespiratoryRate:    "Respiratory rate",
	news2.FieldOxygenSaturation:   "SpO2",
	news2.FieldSupplementalOxygen: "Air or oxygen",
	news2.FieldSystolicBP:         "Systolic BP",
	news2.FieldPulse:              "Pulse",
	news2.FieldConsciousness:      "Consciousness",
	news2.FieldTemperature:        "Temperature",
}

var units = map[string]string{
	news2.FieldRespiratoryRate:  "breaths/min",
	news2.FieldOxygenSaturation: "%",
	news2.FieldSystolicBP:       "mmHg",
	news2.FieldPulse:            "bpm",
	news2.FieldTemperature:      "°C",
}

// Field returns the chart label for a measurement field.
// Unknown fields are returned as-is.
func Field(code string) string {
	if name, ok := fields[code]; ok {
		return name
	}
	return code
}

// Unit returns the unit of a measurement field, or "".
func Unit(code string) string { return units[code] }

// FieldWithUnit returns "Pulse (bpm)" format.
func FieldWithUnit(code string) string {
	if u := Unit(code); u != "" {
		return Field(code) + " (" + u + ")"
	}
	return Field(code)
}

// --- ACVPU ---

var consciousness = map[news2.Consciousness]string{
	news2.Alert:        "Alert",
	news2.Voice:        "Responds to voice",
	news2.Pain:         "Responds to pain",
	news2.Unresponsive: "Unresponsive",
}

// Consciousness returns the ACVPU description of a level code.
func Consciousness(c news2.Consciousness) string {
	if name, ok := consciousness[c]; ok {
		return name
	}
	return string(c)
}

// --- Fuzzy terms ---

// Term humanizes a linguistic term name: "very_low" -> "Very low".
func Term(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// OxygenScale names the SpO2 scale in use.
func OxygenScale(scale int) string {
	switch scale {
	case 1:
		return "Scale 1 (room air)"
	case 2:
		return "Scale 2 (supplemental oxygen)"
	}
	return "unknown scale"
}
