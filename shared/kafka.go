package shared

import (
	"time"

	"github.com/segmentio/kafka-go"
)

func NewKafkaConsumer(bootstrapServer string, groupId string, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{bootstrapServer},
		GroupID:        groupId,
		Topic:          topic,
		CommitInterval: 1 * time.Second,
	})
}

func NewProducer(bootstrapServer string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(bootstrapServer),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              10,
		BatchTimeout:           time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}
