package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/segmentio/kafka-go"
)

type HandlerKafka func(ctx context.Context, msg *kafka.Message) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	ProductIndexerReader messageReader
}

func NewKafkaConsumer(bootstrapServer string, groupId string) *KafkaConsumer {
	defer slog.Info("Kafka Consumer created with", "topic", shared.ProductIndexerTopic, "group-id", groupId)

	return &KafkaConsumer{
		ProductIndexerReader: shared.NewKafkaConsumer(bootstrapServer, groupId, shared.ProductIndexerTopic),
	}
}

// StartIndexerConsumer reads until ctx is cancelled or the reader fails.
// Handler errors are logged and the message is skipped.
func (c *KafkaConsumer) StartIndexerConsumer(ctx context.Context, handler HandlerKafka) error {
	defer c.ProductIndexerReader.Close()
	for {
		message, err := c.ProductIndexerReader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				slog.Warn("Reached EOF, possibly no messages yet.")
				continue
			}
			slog.Error("Error reading message", "error", err)
			return err
		}

		if err := handler(ctx, &message); err != nil {
			slog.Error("Error while handling message", "error", err, "key", string(message.Key))
			continue
		}

		slog.Debug("Received message", "message", string(message.Value), "key", string(message.Key))
	}
}
