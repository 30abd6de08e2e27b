// Package readings loads batches of bedside observations from YAML or JSON
// files for offline scoring.
package readings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fuzzynews/internal/news2"

	yaml "go.yaml.in/yaml/v3"
)

// Reading is one set of observations, optionally tied to a patient.
type Reading struct {
	PatientID          string             `yaml:"patient_id,omitempty" json:"patient_id,omitempty"`
	news2.Measurements `yaml:",inline"`
}

// LoadFromPath reads a readings file. Format is detected by extension
// (.yaml/.yml, .json) or by content.
func LoadFromPath(path string) ([]Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read readings: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a list of readings. ext is a format hint; empty means detect
// from the first non-space character.
func Load(data []byte, ext string) ([]Reading, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	var out []Reading
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse readings json: %w", err)
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse readings yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported readings format %q", ext)
	}
	return out, nil
}

// Measurements returns the observations of every reading, in order.
func Measurements(rs []Reading) []news2.Measurements {
	out := make([]news2.Measurements, len(rs))
	for i, r := range rs {
		out[i] = r.Measurements
	}
	return out
}
