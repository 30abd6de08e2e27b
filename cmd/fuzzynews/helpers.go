package main

import (
	"encoding/json"
	"fmt"
	"io"

	"fuzzynews/internal/format"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"
)

// loadConfig reads --config, or the built-in rules when it is empty, and
// applies --resolution.
func loadConfig(g *globalFlags) (*news2.Config, error) {
	cfg := news2.DefaultConfig()
	if g.config != "" {
		var err error
		if cfg, err = news2.LoadConfigFile(g.config); err != nil {
			return nil, err
		}
	}
	if g.resolution != 0 {
		cfg.Resolution = g.resolution
	}
	return cfg, nil
}

func loadScorer(g *globalFlags) (*news2.Scorer, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	s, err := news2.New(cfg)
	if err != nil {
		if g.config != "" {
			return nil, fmt.Errorf("build scorer from %s: %w", g.config, err)
		}
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	return s, nil
}

func openStore(path string) (store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return st, nil
}

// output is a parsed --format flag: a table mode or JSON.
type output struct {
	json bool
	mode format.Mode
}

func parseOutput(s string) (output, error) {
	if s == "json" {
		return output{json: true}, nil
	}
	m, err := format.ParseMode(s)
	if err != nil {
		return output{}, fmt.Errorf("unknown format %q (want table, markdown or json)", s)
	}
	return output{mode: m}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
