package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"fuzzynews/internal/display"
	"fuzzynews/internal/format"
	"fuzzynews/internal/news2"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	var dump bool
	var formatFlag string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active rule base",
		Long: `Shows the fuzzy variables, risk categories and baseline readings of the
active rule base. With --dump the full configuration is printed as YAML, ready
to edit and pass back with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if dump {
				cfg, err := loadConfig(g)
				if err != nil {
					return err
				}
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}

			mode, err := format.ParseMode(formatFlag)
			if err != nil {
				return err
			}
			scorer, err := loadScorer(g)
			if err != nil {
				return err
			}
			for _, oxygen := range []bool{false, true} {
				fmt.Fprintf(w, "%s\n", display.OxygenScale(scaleFor(oxygen)))
				fmt.Fprintln(w, format.RuleBase(scorer.Engine(oxygen), mode))
			}
			fmt.Fprintln(w, categoryTable(scorer.Categorizer(), mode))
			fmt.Fprintln(w, baselineTable(scorer, mode))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Print the configuration as YAML")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table or markdown")
	return cmd
}

func scaleFor(oxygen bool) int {
	if oxygen {
		return 2
	}
	return 1
}

func categoryTable(c *news2.Categorizer, m format.Mode) string {
	tb := format.NewTable(m)
	tb.Header("Category", "Fuzzy score", "Response")
	for _, cat := range c.Categories() {
		lo, hi, _ := c.Bounds(cat)
		span := fmt.Sprintf("%g – %g", lo, hi)
		if math.IsInf(hi, 1) {
			span = fmt.Sprintf("≥ %g", lo)
		}
		tb.Row(string(cat), span, c.Response(lo, false))
	}
	return tb.String()
}

func baselineTable(s *news2.Scorer, m format.Mode) string {
	tb := format.NewTable(m)
	tb.Header("Parameter", "On air", "On oxygen")
	air, oxygen := s.Baseline(false), s.Baseline(true)
	for _, f := range news2.Fields {
		if f == news2.FieldConsciousness {
			tb.Row(display.Field(f), display.Consciousness(air.Consciousness), display.Consciousness(oxygen.Consciousness))
			continue
		}
		a, _ := air.Value(f)
		o, _ := oxygen.Value(f)
		tb.Row(display.FieldWithUnit(f), format.Reading(a), format.Reading(o))
	}
	return tb.String()
}
