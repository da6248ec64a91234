// Package main is the entry point for the evaluator worker Lambda.
//
// The worker consumes usage batches from the evaluation queue and runs each
// through the same evaluation service as the API: classify, score, alert,
// persist, publish interrupting alerts and record metrics.
//
// Cold start:
//  1. Load configuration and build the logger.
//  2. Connect to PostgreSQL and assemble the evaluation service.
//  3. Register the SQS handler with lambda.Start.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"mindfuel/internal/bootstrap"
	"mindfuel/internal/config"
	"mindfuel/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(nil)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.LogLevel)
	logger.Info("evaluator worker initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}
	defer deps.Close()

	handler := worker.NewHandler(deps.Service, cfg.Worker.Concurrency, logger)
	logger.Info("evaluator worker initialized", "concurrency", cfg.Worker.Concurrency)

	lambda.Start(handler.Handle)
	return nil
}
