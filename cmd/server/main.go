package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"resume-reviewer/internal/client"
	"resume-reviewer/internal/config"
	"resume-reviewer/internal/review"
	"resume-reviewer/internal/server"
	"resume-reviewer/internal/storage"
)

func main() {

	// Load configuration first
	cfg := config.LoadConfig()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging with configurable level, format, and output
	logger, logCleanup := setupLogger(cfg)
	defer logCleanup()
	slog.SetDefault(logger)

	ctx := context.Background()

	// Create the model gateway client once at startup
	llmClient, err := client.NewLLM(ctx, cfg)
	if err != nil {
		slog.Error("create llm failed", "error", err)
		os.Exit(1)
	}
	defer llmClient.Close()

	// Verify provider reachability. An unreachable provider is not fatal:
	// review actions degrade to the labeled fallback result.
	if err := llmClient.Ping(ctx); err != nil {
		slog.Warn("llm unreachable, reviews will use fallback", "provider", llmClient.Provider(), "error", err)
	} else {
		slog.Info("llm verified", "provider", llmClient.Provider(), "model", llmClient.Model())
	}

	// Load prompts (file overrides or compiled-in defaults)
	prompts, err := review.LoadPrompts(cfg.Prompts.Dir)
	if err != nil {
		slog.Error("load prompts failed", "error", err)
		os.Exit(1)
	}

	orchestrator := review.New(llmClient, prompts)

	// Initialize storage
	if dir := filepath.Dir(cfg.Storage.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("create storage dir failed", "error", err, "dir", dir)
			os.Exit(1)
		}
	}
	store, err := storage.NewSQLiteRepository(cfg.Storage.DSN)
	if err != nil {
		slog.Error("init storage failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Setup HTTP server
	api := server.New(cfg, orchestrator, store)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "provider", cfg.LLM.Provider)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server start failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("server stopping")

	// Give in-flight review actions time to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown forced", "error", err)
		os.Exit(1)
	}

	// defer store.Close() handles storage cleanup (via WAL checkpoint)

	slog.Info("server stopped")
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	var writers []io.Writer
	var closers []io.Closer
	outputs := strings.Split(cfg.Log.Output, ",")

	for _, output := range outputs {
		output = strings.TrimSpace(output)
		if output == "" {
			continue
		}

		var w io.Writer
		switch output {
		case "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			// Use lumberjack for log rotation
			l := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    cfg.Log.Rotation.MaxSize,
				MaxBackups: cfg.Log.Rotation.MaxBackups,
				MaxAge:     cfg.Log.Rotation.MaxAge,
				Compress:   cfg.Log.Rotation.Compress,
			}
			w = l
			closers = append(closers, l)
		}
		writers = append(writers, w)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	multiWriter := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: cfg.GetLogLevel()}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(multiWriter, opts)
	} else {
		handler = slog.NewTextHandler(multiWriter, opts)
	}

	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	return slog.New(handler), cleanup
}
