package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the sender needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMessageSender implements MessageSender using Kafka
type KafkaMessageSender struct {
	writer messageWriter
	topic  string
}

// NewKafkaMessageSender creates a new Kafka message sender. Messages are
// keyed by symbol so each symbol stays on one partition.
func NewKafkaMessageSender(brokerAddr, topic string) (*KafkaMessageSender, error) {
	if brokerAddr == "" || topic == "" {
		return nil, fmt.Errorf("kafka broker address and topic are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,

		AllowAutoTopicCreation: true,
	}

	return &KafkaMessageSender{
		writer: writer,
		topic:  topic,
	}, nil
}

// SendTradeMessage sends a trade message to Kafka
func (k *KafkaMessageSender) SendTradeMessage(ctx context.Context, msg *messaging.TradeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal trade message: %w", err)
	}

	kmsg := kafka.Message{
		Key:   []byte(msg.Symbol),
		Value: data,
		Time:  time.Now(),
	}

	if err := k.writer.WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka topic %s: %w", k.topic, err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaMessageSender) Close() error {
	return k.writer.Close()
}

var _ messaging.MessageSender = (*KafkaMessageSender)(nil)
