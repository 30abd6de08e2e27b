package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fuzzynews/internal/logging"
	"fuzzynews/internal/store"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
	config     string
	dbPath     string
	resolution int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "fuzzynews",
		Short: "Fuzzy NEWS-2 early warning scores",
		Long: "fuzzynews computes the National Early Warning Score 2 for a set of vital signs,\n" +
			"alongside a fuzzy-logic score that moves smoothly across the chart's band edges.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(g.logLevel)
			if err != nil {
				return err
			}
			logging.Init(level, g.logFormat, cmd.ErrOrStderr())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", envOr("FUZZYNEWS_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", envOr("FUZZYNEWS_LOG_FORMAT", "text"), "Log format: text or json")
	pf.StringVar(&g.config, "config", os.Getenv("FUZZYNEWS_CONFIG"), "Rule base file (YAML or JSON); empty uses the built-in rules")
	pf.StringVar(&g.dbPath, "db", envOr("FUZZYNEWS_DB", store.DefaultDBPath), "Assessment database path")
	pf.IntVar(&g.resolution, "resolution", envInt("FUZZYNEWS_RESOLUTION", 0), "Sample points per output universe; 0 keeps the rule base's value")

	root.AddCommand(
		newCalculateCmd(g),
		newBatchCmd(g),
		newHistoryCmd(g),
		newStatsCmd(g),
		newServeCmd(g),
		newMCPCmd(g),
		newConfigCmd(g),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}
