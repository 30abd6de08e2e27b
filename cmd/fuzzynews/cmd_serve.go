package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fuzzynews/internal/api"
	"fuzzynews/internal/logging"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"
	"fuzzynews/internal/telemetry"
)

type serveFlags struct {
	addr   string
	memory bool
	watch  bool
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring and history API over HTTP",
		Long: `Serves POST /api/calculate, GET /api/history/{patient_id},
GET /api/statistics/{patient_id} and GET /api/health.

With --watch the rule base given by --config is reloaded whenever the file
changes. Traces and metrics are exported when OTEL_EXPORTER_OTLP_ENDPOINT is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", envOr("FUZZYNEWS_ADDR", ":8000"), "Listen address")
	fl.BoolVar(&f.memory, "memory", false, "Keep history in memory instead of the database")
	fl.BoolVar(&f.watch, "watch", false, "Reload --config when it changes")
	return cmd
}

// calculator returns the scorer behind the servers, and a reloader when
// the rule base is watched.
func calculator(g *globalFlags, watch bool) (api.Calculator, *news2.Reloader, error) {
	if watch {
		if g.config == "" {
			return nil, nil, fmt.Errorf("--watch needs --config")
		}
		r, err := news2.NewReloader(g.config)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	}
	s, err := loadScorer(g)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

func historyStore(g *globalFlags, memory bool) (store.Store, error) {
	if memory {
		return store.NewMemStore(), nil
	}
	return openStore(g.dbPath)
}

func runServe(cmd *cobra.Command, g *globalFlags, f *serveFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.Init(ctx, telemetry.EndpointFromEnv(), version)
	defer telemetry.Flush(context.WithoutCancel(ctx), shutdown)

	calc, reloader, err := calculator(g, f.watch)
	if err != nil {
		return err
	}
	st, err := historyStore(g, f.memory)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := api.DefaultConfig()
	cfg.Addr = f.addr
	cfg.Version = version
	srv, err := api.NewServer(calc, st, cfg)
	if err != nil {
		return err
	}

	logging.New("serve").Info("starting fuzzynews API", "addr", f.addr, "db", g.dbPath, "memory", f.memory, "watch", f.watch)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return srv.ListenAndServe(egCtx) })
	if reloader != nil {
		eg.Go(func() error { return reloader.Watch(egCtx) })
	}
	return eg.Wait()
}
