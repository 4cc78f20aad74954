package service

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// EventPublisher emits domain events. The Kafka implementation is used in
// production; tests inject a recording stub.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}
