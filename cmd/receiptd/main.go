package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tabilog-dev/receipt-engine/internal/aiparse/gemini"
	"github.com/tabilog-dev/receipt-engine/internal/aiparse/openai"
	"github.com/tabilog-dev/receipt-engine/internal/common"
	"github.com/tabilog-dev/receipt-engine/internal/core"
	"github.com/tabilog-dev/receipt-engine/internal/core/async"
	"github.com/tabilog-dev/receipt-engine/internal/engine"
	"github.com/tabilog-dev/receipt-engine/internal/export"
	"github.com/tabilog-dev/receipt-engine/internal/remote"
	"github.com/tabilog-dev/receipt-engine/internal/server"
	"github.com/tabilog-dev/receipt-engine/internal/store"
	"github.com/tabilog-dev/receipt-engine/internal/strategy"
	"github.com/tabilog-dev/receipt-engine/internal/vision"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err, "path", cfg.Store.Path)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close error", "error", err)
		}
	}()

	parser := engine.NewParser(engine.Config{Currency: cfg.Engine.Currency}, logger)

	// The chain runs every configured strategy in order; local heuristics are
	// always present as the last resort.
	var strategies []strategy.Strategy

	if cfg.Remote.BaseURL != "" {
		remoteClient, err := remote.NewClient(remote.Config{
			BaseURL:  cfg.Remote.BaseURL,
			APIKey:   cfg.Remote.APIKey,
			Timeout:  cfg.Remote.Timeout,
			Currency: cfg.Engine.Currency,
		}, logger)
		if err != nil {
			logger.Error("failed to build remote parse client", "error", err)
			os.Exit(1)
		}
		strategies = append(strategies, strategy.NewRemote(remoteClient))
		logger.Info("remote structured parsing enabled", "url", cfg.Remote.BaseURL)
	}

	if cfg.AI.APIKey != "" {
		textParser, closeAI, err := buildTextParser(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to build generative parser", "error", err, "provider", cfg.AI.Provider)
			os.Exit(1)
		}
		defer closeAI()
		strategies = append(strategies, strategy.NewAI(textParser, parser.Config().MinFieldConfidence))
		logger.Info("generative parsing enabled", "provider", cfg.AI.Provider)
	}

	strategies = append(strategies, strategy.NewLocal(parser))

	chain := strategy.NewChain(logger, cfg.Chain.StrategyTimeout, strategies...)

	var recognizer core.FieldRecognizer
	if cfg.Vision.Endpoint != "" && cfg.Vision.APIKey != "" {
		vc, err := vision.NewClient(vision.Config{
			Endpoint: cfg.Vision.Endpoint,
			APIKey:   cfg.Vision.APIKey,
			Enhance:  cfg.Vision.Enhance,
		}, logger)
		if err != nil {
			logger.Error("failed to build vision client", "error", err)
			os.Exit(1)
		}
		recognizer = vc
		logger.Info("image scanning enabled", "endpoint", cfg.Vision.Endpoint)
	}

	proc := core.NewProcessor(recognizer, chain, st, cfg.Engine.ExchangeRate, logger)

	var queue *async.ScanQueue
	if recognizer != nil {
		queue = async.NewScanQueue(proc, logger,
			async.WithWorkers(4),
			async.WithQueueSize(128),
			async.WithProcessTimeout(2*time.Minute),
		)
	}

	srv := server.New(proc, queue, st, export.NewService(st, logger), logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("receiptd listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", "error", err)
	}
}

func buildTextParser(ctx context.Context, cfg *common.Config, logger *slog.Logger) (strategy.TextParser, func(), error) {
	switch cfg.AI.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.Engine.Currency, engine.DefaultConfig().MaxItems, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Warn("gemini close error", "error", err)
			}
		}, nil
	default:
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
			Currency:    cfg.Engine.Currency,
		}, logger)
		return client, func() {}, nil
	}
}
