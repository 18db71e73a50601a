package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/server"
	"github.com/alswn8268/ai-cii/internal/store"
	"github.com/alswn8268/ai-cii/internal/tracing"
)

// NewServeCmd constructs the `aicii serve` subcommand, which runs the HTTP
// API server until interrupted.
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recommendation HTTP API server",
		Long: `Starts the HTTP server exposing the chat and search API:

  POST /api/v1/chat     — grounded restaurant recommendation
  GET  /api/v1/search   — retrieval without answer generation
  GET  /api/v1/history  — recent answered queries
  GET  /health, /ready, /metrics

The server shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if handler, flush, ok := tracing.Setup(); ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			}

			svc, pingers, cleanup, err := buildService(ctx, log)
			if err != nil {
				return err
			}
			defer cleanup()

			history := openHistory(log)
			if history != nil {
				defer history.Close()
			}

			srv, err := server.New(svc, svc, history, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
			})
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Interface to bind the HTTP server to")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "Port to listen on")

	return cmd
}

// openHistory opens the chat history store. AICII_HISTORY_DB overrides the
// default path; the value "disabled" turns history off. A failure to open
// disables history with a warning rather than preventing startup.
func openHistory(log *slog.Logger) store.HistoryStore {
	path := os.Getenv("AICII_HISTORY_DB")
	if path == "disabled" {
		return nil
	}
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("history disabled: could not resolve database path", slog.Any("error", err))
			return nil
		}
	}
	s, err := store.Open(path)
	if err != nil {
		log.Warn("history disabled: could not open database",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil
	}
	log.Info("chat history enabled", slog.String("path", path))
	return s
}
