package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/heri-science/artifact-pipeline/internal/handlers"
	"github.com/heri-science/artifact-pipeline/internal/storage"
	"github.com/heri-science/artifact-pipeline/internal/workflows"
)

func main() {
	// Load .env if present (silently ignore if not found)
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("ENHANCE_LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	httpAddr := os.Getenv("ENHANCE_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	cfg := workflows.DefaultConfig()
	if v := envInt("ENHANCE_MAX_INPUT_DIM"); v > 0 {
		cfg.MaxInputDim = v
	}
	if v := envInt("ENHANCE_MAX_OUTPUT_DIM"); v > 0 {
		cfg.MaxOutputDim = v
	}

	var archive *storage.Archive
	if dir := os.Getenv("ENHANCE_PROCESSED_DIR"); dir != "" {
		var err error
		archive, err = storage.NewArchive(dir)
		if err != nil {
			logger.WithError(err).Fatal("failed to initialize archive")
		}
		logger.WithField("dir", dir).Info("archiving processed images")
	}

	runner := workflows.NewRunner(cfg, logger)
	handler := handlers.NewProcessHandler(runner, archive, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.HandleHealth)
	mux.HandleFunc("/v1/process", handler.HandleProcess)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":           httpAddr,
			"max_input_dim":  cfg.MaxInputDim,
			"max_output_dim": cfg.MaxOutputDim,
		}).Info("enhance-server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
