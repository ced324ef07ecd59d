package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sajjat43/ai-agent/internal/ai"
	"github.com/sajjat43/ai-agent/internal/chat"
	"github.com/sajjat43/ai-agent/internal/config"
	"github.com/sajjat43/ai-agent/internal/db"
	"github.com/sajjat43/ai-agent/internal/httpapi"
	"github.com/sajjat43/ai-agent/internal/httpapi/handlers"
	"github.com/sajjat43/ai-agent/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	// The whole system is a history log in front of vendor APIs; without
	// the store there is nothing to run.
	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("database connection failed", "driver", cfg.DBDriver, "error", err)
	}
	if err := gdb.AutoMigrate(&chat.Turn{}, &chat.UploadedFile{}); err != nil {
		log.Fatal("database migration failed", "error", err)
	}
	log.Info("database connected", "driver", cfg.DBDriver)

	usage := ai.NewUsage(log)
	registry := ai.NewRegistry(usage)
	registry.Register(ai.NewGoogleProvider(cfg.GoogleBaseURL, cfg.GeminiAPIKey))
	registry.Register(ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey))
	registry.Register(ai.NewAnthropicProvider(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey))
	registry.Register(ai.NewCohereProvider())
	registry.Register(ai.NewHuggingFaceProvider())

	for _, p := range registry.Providers() {
		log.Info("provider registered",
			"provider", p.Name, "status", p.Status, "models", len(p.Models))
	}

	h := handlers.New(gdb, registry, usage, cfg.UploadDir, log)
	router := httpapi.NewRouter(h, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
	log.Info("server stopped")
}
