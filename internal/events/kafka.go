// ABOUTME: Kafka-backed event publisher built on segmentio/kafka-go.
// ABOUTME: Lazily creates one writer per topic and keys messages by user id.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events to "<prefix>.<event type>" topics.
type KafkaPublisher struct {
	prefix    string
	logger    zerolog.Logger
	newWriter func(topic string) messageWriter

	mu      sync.Mutex
	writers map[string]messageWriter
}

// NewKafkaPublisher creates a publisher for the given brokers.
func NewKafkaPublisher(brokers []string, topicPrefix string, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		prefix:  topicPrefix,
		logger:  logger,
		writers: make(map[string]messageWriter),
	}
	p.newWriter = func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Balancer:     &kafka.Hash{},
		}
	}
	return p
}

// New returns a KafkaPublisher when brokers are configured, otherwise a NopPublisher.
func New(brokers []string, topicPrefix string, logger zerolog.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topicPrefix, logger)
}

// Topic returns the topic an event type is written to.
func (p *KafkaPublisher) Topic(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}

	topic := p.Topic(e.Type)
	msg := kafka.Message{
		Key:   []byte(e.UserID),
		Value: value,
		Time:  e.OccurredAt,
	}
	if err := p.writerForTopic(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debug().Str("topic", topic).Str("user_id", e.UserID).Msg("event published")
	return nil
}

func (p *KafkaPublisher) writerForTopic(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}

// Close flushes and releases all writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
