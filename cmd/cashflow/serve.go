package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/cashflow/internal/auth"
	"github.com/mmynk/cashflow/internal/config"
	"github.com/mmynk/cashflow/internal/metrics"
	"github.com/mmynk/cashflow/internal/server"
	"github.com/mmynk/cashflow/internal/storage/sqlite"
	"github.com/mmynk/cashflow/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		envFile string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Connect RPC server",
		Long: `Serves SettlementService, GroupService and AuthService over the Connect
protocol (HTTP/1.1 and cleartext HTTP/2), plus /metrics and /healthz.

Settings come from the environment, optionally seeded from a .env file:
PORT, DB_PATH, JWT_SECRET, TOKEN_TTL, LOG_LEVEL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if !cmd.Flags().Changed("log-level") {
				logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
			}

			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()
			slog.Info("Storage initialized", "database", cfg.DBPath)

			handler := server.NewHandler(server.Deps{
				Store:    store,
				JWT:      auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
				Metrics:  metrics.New(prometheus.DefaultRegisterer),
				Gatherer: prometheus.DefaultGatherer,
				Logger:   slog.Default(),
			})

			// h2c serves HTTP/2 without TLS, which Connect clients use.
			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           h2c.NewHandler(handler, &http2.Server{}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErrors := make(chan error, 1)
			go func() {
				slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
				slog.Info("Shutting down", "timeout", shutdownTimeout)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("Graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			slog.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load before reading the environment")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides PORT)")
	return cmd
}
