package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fuzzynews/internal/format"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var limit int
	var formatFlag string
	cmd := &cobra.Command{
		Use:   "history <patient-id>",
		Short: "List a patient's saved assessments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseOutput(formatFlag)
			if err != nil {
				return err
			}
			if limit < 1 || limit > 100 {
				return fmt.Errorf("--limit must be between 1 and 100, got %d", limit)
			}
			st, err := openStore(g.dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			list, err := st.ListAssessments(args[0], limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.json {
				if list == nil {
					return writeJSON(w, []any{})
				}
				return writeJSON(w, list)
			}
			if len(list) == 0 {
				fmt.Fprintf(w, "No assessments for patient %s\n", args[0])
				return nil
			}
			fmt.Fprintln(w, format.History(list, out.mode))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum assessments to list (1-100)")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, markdown or json")
	return cmd
}
