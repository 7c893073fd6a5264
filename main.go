package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"remediation-agent/packages/agents"
	"remediation-agent/packages/ai"
	"remediation-agent/packages/config"
	"remediation-agent/packages/handlers"
	"remediation-agent/packages/repository"
	"remediation-agent/types"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	eventFile := pflag.String("event", "", "run a single invocation from a JSON event file (- for stdin) and print the response")
	pflag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	ctx = clog.WithLogger(ctx, clog.New(logger.Handler()))

	handler, model, err := newHandler(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := ai.Close(model); err != nil {
			slog.Warn("Failed to close model client", "error", err)
		}
	}()

	if *eventFile != "" {
		if err := runLocal(ctx, handler, *eventFile, os.Stdout); err != nil {
			slog.Error("Local invocation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("Starting function handler", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	lambda.Start(handler.Invoke)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func newHandler(ctx context.Context, cfg *config.Config) (*handlers.InvocationHandler, ai.Model, error) {
	client, err := repository.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	model, err := ai.NewModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return handlers.NewInvocationHandler(
		client,
		agents.NewRemediationAgent(model),
		client,
		client.CommitMessage(),
	), model, nil
}

func runLocal(ctx context.Context, handler *handlers.InvocationHandler, path string, out io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	var event types.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	resp := handler.Handle(ctx, event)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
