package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fuzzynews/internal/format"
	"fuzzynews/internal/store"
)

func newStatsCmd(g *globalFlags) *cobra.Command {
	var days int
	var formatFlag string
	cmd := &cobra.Command{
		Use:   "stats <patient-id>",
		Short: "Summarize a patient's assessments over recent days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseOutput(formatFlag)
			if err != nil {
				return err
			}
			if days < 1 || days > 365 {
				return fmt.Errorf("--days must be between 1 and 365, got %d", days)
			}
			st, err := openStore(g.dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
			list, err := st.ListAssessmentsSince(args[0], since)
			if err != nil {
				return err
			}
			sum := store.Summarize(args[0], days, list)
			if out.json {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Summary(sum, out.mode))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Window in days (1-365)")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, markdown or json")
	return cmd
}
