// Copyright (c) 2025 BVK Chaitanya

package stream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaOptions struct {
	Brokers []string
	Topic   string
	GroupID string

	MaxWait time.Duration
}

func (v *KafkaOptions) setDefaults() {
	if len(v.Brokers) == 0 {
		v.Brokers = []string{"localhost:9092"}
	}
	if len(v.Topic) == 0 {
		v.Topic = "quotes"
	}
	if v.MaxWait == 0 {
		v.MaxWait = 200 * time.Millisecond
	}
}

// KafkaSource reads quote messages from a Kafka topic. Each Kafka
// message value is one wire-format quote array.
type KafkaSource struct {
	reader *kafka.Reader
}

var _ Source = &KafkaSource{}

func NewKafkaSource(opts *KafkaOptions) *KafkaSource {
	if opts == nil {
		opts = new(KafkaOptions)
	}
	opts.setDefaults()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  opts.Brokers,
		Topic:    opts.Topic,
		GroupID:  opts.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  opts.MaxWait,
	})
	return &KafkaSource{reader: reader}
}

func (s *KafkaSource) Receive(ctx context.Context) ([]byte, error) {
	m, err := s.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return m.Value, nil
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
