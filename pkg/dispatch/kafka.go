package dispatch

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

const batchTimeoutMillis = 100 // batch timeout in milliseconds

// KafkaForwarder delivers records to a Kafka topic instead of a Firehose
// stream, for running the whole path locally without AWS.
type KafkaForwarder struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaForwarder(brokers []string, topic string) *KafkaForwarder {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: batchTimeoutMillis * time.Millisecond,
		// RequiredAcks is an int, so cast the constant.
		RequiredAcks: int(kafka.RequireAll),
	})
	return &KafkaForwarder{writer: w, topic: topic}
}

func (k *KafkaForwarder) Forward(ctx context.Context, data []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{
		Topic: k.topic,
		Value: data,
		Time:  time.Now(),
	})
}

func (k *KafkaForwarder) Close() error {
	return k.writer.Close()
}
