package repository

import (
	"context"
	"encoding/json"

	"unsend_service/internal/deletion/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter subset of *kafka.Writer
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer KafkaWriter
}

// NewKafkaPublisher create a Publisher on a kafka topic, keyed by destination
func NewKafkaPublisher(writer KafkaWriter) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (k *kafkaPublisher) Publish(ctx context.Context, env domain.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Destination),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(env.Kind)},
			{Key: "envelope_id", Value: []byte(env.ID)},
		},
	})
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
