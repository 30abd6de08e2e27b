package main

import (
	"context"

	"github.com/spf13/cobra"

	"fuzzynews/internal/logging"
	mcpserver "fuzzynews/internal/mcp"
	"fuzzynews/internal/telemetry"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	var memory, watch bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the scoring tools over MCP on stdio",
		Long: `Starts an MCP server over stdin/stdout exposing calculate_news2, get_history
and get_statistics. The server exits when the parent process goes away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			shutdown := telemetry.Init(ctx, telemetry.EndpointFromEnv(), version)
			defer telemetry.Flush(context.WithoutCancel(ctx), shutdown)

			calc, reloader, err := calculator(g, watch)
			if err != nil {
				return err
			}
			if reloader != nil {
				go func() {
					if err := reloader.Watch(ctx); err != nil {
						logging.New("mcp").Error("config watch stopped", "error", err)
					}
				}()
			}
			st, err := historyStore(g, memory)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := mcpserver.NewServer(calc, st, version)
			if err != nil {
				return err
			}
			mcpserver.WatchParent(ctx, cancel)

			logging.New("mcp").Info("starting fuzzynews MCP server over stdio (parent watchdog active)")
			return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep history in memory instead of the database")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload --config when it changes")
	return cmd
}
