package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/app"
	"github.com/cmlabs-hris/timesheet-sync/internal/config"
	appHTTP "github.com/cmlabs-hris/timesheet-sync/internal/handler/http"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/cron"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/sse"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer stack.Close()

	hub := sse.NewHub()
	jobs := cron.NewTimesheetJobs(stack.Service, hub, cfg.Sync.MonthsBack)

	scheduler := cron.NewScheduler()
	if cfg.Sync.AutoSyncEnabled {
		jobs.RegisterJobs(scheduler, cron.SyncInterval(cfg.Sync.Interval, cfg.Sync.Realtime))
	} else {
		slog.Info("Auto sync disabled")
	}
	scheduler.Start()
	defer scheduler.Stop()

	var JWTService jwt.Service
	if cfg.JWT.Secret != "" {
		svc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
		if err != nil {
			return err
		}
		JWTService = svc
	}

	timesheetHandler := appHTTP.NewTimesheetHandler(stack.Service, jobs, hub, cfg.Sync.MonthsBack)
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, timesheetHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open event streams return.
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
