package main

import (
	"context"
)

const GroupId = "indexer-service-group"

type AppServer struct {
	Consumer       *KafkaConsumer
	IndexerService *IndexerService
}

func NewAppServer(cfg Config, indexer *IndexerService) *AppServer {
	return &AppServer{
		Consumer:       NewKafkaConsumer(cfg.KafkaAddr, GroupId),
		IndexerService: indexer,
	}
}

func (a *AppServer) RunProductIndexerConsumer(ctx context.Context) error {
	return a.Consumer.StartIndexerConsumer(ctx, a.IndexerService.HandleProductIndexer)
}
