package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"timetable-backend/config"
	"timetable-backend/internal/api"
	"timetable-backend/internal/db"
	"timetable-backend/internal/logger"
	"timetable-backend/internal/notification"
	"timetable-backend/internal/refresher"
	"timetable-backend/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	zl, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	zl.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, zl)

	var webpushOptions *webpush.Options
	var dispatcher refresher.Dispatcher
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions, zl)
		pool.Start(ctx)
		dispatcher = pool
	} else {
		zl.Warn("VAPID keys not configured, class reminders are disabled")
	}

	schedule, err := refresher.NewService(cfg.Schedule, appStore, dispatcher, zl)
	if err != nil {
		zl.Fatal("failed to create schedule refresher", zap.Error(err))
	}
	if err := schedule.Refresh(ctx); err != nil {
		zl.Fatal("failed to load initial timetable", zap.Error(err))
	}
	go schedule.Run(ctx)

	router := api.NewRouter(appStore, schedule, webpushOptions, cfg.Server, zl)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zl.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	zl.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	zl.Info("server gracefully stopped")
}
