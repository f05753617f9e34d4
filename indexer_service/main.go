package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmmp241/product-catalog/shared"
)

const ServiceName = "Indexer Service"

func main() {
	shared.LoadDotEnv()

	cfg, err := LoadConfig()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error(err.Error())
		os.Exit(1)
	}

	slog.SetDefault(shared.NewLogger(os.Stdout, cfg.LogLevel, ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	esClient, err := initElasticsearch(ctx, cfg.ElasticsearchAddr)
	if err != nil {
		slog.Error("Error connecting to Elasticsearch", "err", err)
		stop()
		os.Exit(1)
	}

	app := NewAppServer(cfg, NewIndexerService(esClient))

	slog.Info("Starting product indexer consumer", "bootstrap-server", cfg.KafkaAddr)
	if err := app.RunProductIndexerConsumer(ctx); err != nil {
		slog.Error("Product indexer consumer stopped", "err", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Product indexer consumer stopped")
}
