package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"fuzzynews/internal/format"
	"fuzzynews/internal/readings"
	"fuzzynews/internal/store"
	"fuzzynews/internal/telemetry"
)

type batchFlags struct {
	parallel int
	save     bool
	format   string
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	f := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch <readings-file>",
		Short: "Score a file of observations in parallel",
		Long: `Scores every reading in a YAML or JSON list. Invalid readings are reported
in place and make the command exit non-zero once the whole file is scored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.parallel, "parallel", runtime.NumCPU(), "Number of scoring workers")
	fl.BoolVar(&f.save, "save", false, "Save readings that carry a patient_id to the history database")
	fl.StringVar(&f.format, "format", "table", "Output format: table or markdown")
	return cmd
}

func runBatch(cmd *cobra.Command, g *globalFlags, f *batchFlags, path string) error {
	mode, err := format.ParseMode(f.format)
	if err != nil {
		return err
	}
	rs, err := readings.LoadFromPath(path)
	if err != nil {
		return err
	}
	scorer, err := loadScorer(g)
	if err != nil {
		return err
	}
	ctx, span := telemetry.WithSpan(cmd.Context(), "fuzzynews.batch",
		attribute.String("file", path), attribute.Int("readings", len(rs)))
	defer span.End()
	items, err := scorer.CalculateBatch(ctx, readings.Measurements(rs), f.parallel)
	if err != nil {
		return err
	}

	var st store.Store
	if f.save {
		if st, err = openStore(g.dbPath); err != nil {
			return err
		}
		defer st.Close()
	}

	tb := format.NewTable(mode)
	tb.Header("#", "Patient", "Crisp", "Fuzzy", "Category", "Error")
	failed, saved := 0, 0
	for _, it := range items {
		patient := rs[it.Index].PatientID
		if it.Err != nil {
			failed++
			tb.Row(it.Index+1, patient, "", "", "", it.Err.Error())
			continue
		}
		if st != nil && patient != "" {
			if _, err := st.SaveAssessment(store.FromResult(patient, it.Result)); err != nil {
				return fmt.Errorf("save reading %d: %w", it.Index+1, err)
			}
			saved++
		}
		tb.Row(it.Index+1, patient, it.Result.CrispScore, format.Score(it.Result.FuzzyScore), it.Result.RiskCategory, "")
	}
	tb.RightAlign(1, 3, 4)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tb.String())
	fmt.Fprintf(w, "Scored %d of %d readings", len(items)-failed, len(items))
	if f.save {
		fmt.Fprintf(w, ", saved %d", saved)
	}
	fmt.Fprintln(w)
	if failed > 0 {
		return fmt.Errorf("%d of %d readings are invalid", failed, len(items))
	}
	return nil
}
