package queue

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/erain9/matchingo/pkg/messaging"
)

const (
	// DefaultBroker is used when no broker list is configured
	DefaultBroker = "localhost:9092"
	// DefaultTopic receives trade messages when no topic is configured
	DefaultTopic = "matchingo-trades"

	maxRetry = 5
)

// newSyncProducer is swapped out in tests
var newSyncProducer = sarama.NewSyncProducer

// QueueMessageSender implements the MessageSender interface
// for sending messages to Kafka through sarama
type QueueMessageSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueueMessageSender connects a synchronous producer to brokers.
func NewQueueMessageSender(brokers []string, topic string) (*QueueMessageSender, error) {
	if len(brokers) == 0 {
		brokers = []string{DefaultBroker}
	}
	if topic == "" {
		topic = DefaultTopic
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = maxRetry
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := newSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer, topic: topic}, nil
}

// SendTradeMessage sends the TradeMessage to the Kafka queue
func (q *QueueMessageSender) SendTradeMessage(ctx context.Context, msg *messaging.TradeMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := EncodeTradeMessage(msg)
	if err != nil {
		return err
	}

	_, _, err = q.producer.SendMessage(&sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(msg.Symbol),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

var _ messaging.MessageSender = (*QueueMessageSender)(nil)
