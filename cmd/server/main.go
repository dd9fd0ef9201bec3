package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/config"
	"github.com/mamadbah2/cellar/internal/scheduler"
	"github.com/mamadbah2/cellar/internal/server/handlers"
	"github.com/mamadbah2/cellar/internal/server/router"
	"github.com/mamadbah2/cellar/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	cellar, err := app.New(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init cellar", zap.Error(err))
	}
	defer func() { _ = cellar.Close(context.Background()) }()

	cellarHandler := handlers.NewCellarHandler(cellar.Store, cellar.Export, cellar.Images, baseLogger.Named("handlers.cellar"))
	scanHandler := handlers.NewScanHandler(cellar.Scanner, baseLogger.Named("handlers.scans"))
	engine := router.New(cellarHandler, scanHandler, baseLogger.Named("router"))

	if cfg.Export.CronSchedule != "" {
		sched := scheduler.NewScheduler(cfg.Export.CronSchedule, cfg.Location(), cellar.Export, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Info("export schedule not set, scheduler disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
