package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/api"
	"github.com/p2sg/wiseinvestor/internal/config"
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/store"
	"github.com/p2sg/wiseinvestor/internal/worker"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wiseinvestor",
	Short: "Wise Investor - nonprofit analytics dashboard gateway",
	Long: "Serves the Wise Investor dashboard API on top of the analytics service.\n" +
		"Subcommands query the same dashboards from the terminal.",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "",
		"Token cache profile (overrides WISEINVESTOR_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log progress to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(whatifCmd)
	rootCmd.AddCommand(exportCmd)
}

// run starts the HTTP gateway and blocks until SIGTERM or SIGINT.
func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log, parseLogLevel(cfg.Log.Level)))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Store.Path)

	client, err := newAnalyticsClient(cfg.Analytics)
	if err != nil {
		db.Close()
		return err
	}
	slog.Info("analytics client initialized",
		"base_url", cfg.Analytics.BaseURL,
		"max_retries", cfg.Analytics.MaxRetries,
	)

	handler := api.NewHandler(client, api.Options{
		Version:      Version,
		LoginPath:    cfg.Server.LoginPath,
		Concurrency:  cfg.Dashboard.ConcurrencyLimit,
		Thresholds:   metrics.Thresholds{RevenueThreshold: cfg.Metrics.RevenueThreshold},
		Placeholders: cfg.Charts.Placeholders,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	if interval := time.Duration(cfg.Worker.TokenSweepInterval); interval > 0 {
		sweeper := worker.NewTokenSweeper(db, interval)
		startWorker(ctx, &wg, "token-sweeper", sweeper.Run)
	}

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed follows a graceful Shutdown; anything else is fatal.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Drain in-flight requests, then wait for workers, then close the store.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	wg.Wait()
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func newAnalyticsClient(cfg config.AnalyticsConfig) (*analytics.Client, error) {
	return analytics.New(analytics.Config{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		Timeout:    time.Duration(cfg.Timeout),
		MaxRetries: cfg.MaxRetries,
		RetryBase:  time.Duration(cfg.RetryBase),
		UserAgent:  cfg.UserAgent,
	})
}

// newLogger builds the process logger in the configured format.
func newLogger(w io.Writer, cfg config.LogConfig, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
