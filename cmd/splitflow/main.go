// Package main provides the splitflow binary: the web UI and the RPC API
// for creating revenue splits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitflow/internal/auth"
	"github.com/mmynk/splitflow/internal/config"
	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/metrics"
	"github.com/mmynk/splitflow/internal/middleware"
	"github.com/mmynk/splitflow/internal/service"
	"github.com/mmynk/splitflow/internal/session"
	"github.com/mmynk/splitflow/internal/storage/sqlite"
	"github.com/mmynk/splitflow/internal/web"
	"github.com/mmynk/splitflow/pkg/logging"
)

const (
	Version = "0.1.0"
	appName = "splitflow"

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), configPath)
	}

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Revenue split dashboard",
		SilenceUsage: true,
		RunE:         serve,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML, JSON or TOML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  serve,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCloser := logging.Setup(cfg.Log.Level, cfg.Log.File)
	defer logCloser.Close()

	tokenTTL, err := cfg.TokenTTL()
	if err != nil {
		return err
	}
	idleTTL, err := cfg.IdleTTL()
	if err != nil {
		return err
	}

	store, err := sqlite.NewInMemory()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", sqlite.MemoryPath)

	sessions := session.NewManager(store, nil)
	jwtManager := auth.NewJWTManager(cfg.Auth.TokenSecret, tokenTTL)
	dashboards := dashboard.NewBuilder(cfg.Dashboard.ExplorerURL)

	janitor, err := session.NewJanitor(sessions, cfg.Session.JanitorSchedule, idleTTL)
	if err != nil {
		return err
	}

	pages, err := web.New(sessions, jwtManager, dashboards)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()

	apiPath, apiHandler := service.NewSplitServiceHandler(
		service.NewSplitService(sessions, jwtManager, dashboards),
		jwtManager,
	)
	mux.Handle(apiPath, middleware.CORS(apiHandler))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", pages.Router())

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           h2c.NewHandler(middleware.Logging(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitor.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", cfg.HTTP.Address, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		janitor.Stop(shutdownCtx)
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
