// -- cmd/serve.go --
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/internal/registry"
	"github.com/webpilot-ai/webpilot/internal/server"
)

func newServeCommand() *cobra.Command {
	var listenAddr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP automation API.",
		Long: `Serve exposes the orchestrator over HTTP. Prompts submitted to
POST /execute run in the background; GET /execution/{id} reports their
status and results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(); err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.Server.ListenAddr = listenAddr
			}

			orch, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			reg, err := registry.New(cfg.Registry, orch, logger)
			if err != nil {
				return err
			}
			srv := server.New(cfg.Server, reg, logger)

			logger.Info("Starting webpilot HTTP API",
				zap.String("listen_addr", cfg.Server.ListenAddr),
				zap.String("playwright_server", cfg.Playwright.ServerURL),
			)
			return srv.Start(cmd.Context())
		},
	}

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides server.listen_addr)")
	return serveCmd
}
