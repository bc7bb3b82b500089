package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"travelog/internal/articles"
	"travelog/internal/cms"
	"travelog/internal/config"
	"travelog/internal/i18n"
	"travelog/internal/session"
	"travelog/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := i18n.Load()
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	client := cms.NewClient(cfg.CMS.BaseURL, logger)
	service := articles.NewService(client, cfg.RootURL)
	sessions := session.NewStore(cfg.SessionSecret(), logger)

	handler, err := web.NewHandler(cfg, service, sessions, catalog, logger)
	if err != nil {
		logger.Fatal("handler setup failed", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("travelog listening", zap.String("addr", cfg.ListenAddr), zap.String("cms", cfg.CMS.BaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
