package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type ProductEventPublisher interface {
	Publish(ctx context.Context, eventType string, doc shared.ProductDocument) error
	Close() error
}

func newProductEvent(eventType string, doc shared.ProductDocument) shared.ProductEvent {
	return shared.ProductEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Data:      doc,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	Writer messageWriter
}

func NewKafkaProducer(bootstrapServer string) *KafkaProducer {
	w := shared.NewProducer(bootstrapServer)
	slog.Info("Kafka Producer created", "bootstrap-server", bootstrapServer)

	return &KafkaProducer{
		Writer: w,
	}
}

func (k *KafkaProducer) Write(ctx context.Context, topic string, messages ...[2]string) error {
	var msgs []kafka.Message

	for _, message := range messages {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(message[0]),
			Value: []byte(message[1]),
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return k.Writer.WriteMessages(ctx, msgs...)
}

func (k *KafkaProducer) Publish(ctx context.Context, eventType string, doc shared.ProductDocument) error {
	payload, err := json.Marshal(newProductEvent(eventType, doc))
	if err != nil {
		return fmt.Errorf("marshal product event: %w", err)
	}

	return k.Write(ctx, shared.ProductIndexerTopic, [2]string{doc.ID, string(payload)})
}

func (k *KafkaProducer) Close() error {
	return k.Writer.Close()
}

// loggingPublisher stands in for Kafka when no broker is configured.
type loggingPublisher struct{}

func (loggingPublisher) Publish(_ context.Context, eventType string, doc shared.ProductDocument) error {
	slog.Debug("Product event not published, kafka disabled", "event-type", eventType, "product-id", doc.ID)
	return nil
}

func (loggingPublisher) Close() error { return nil }
