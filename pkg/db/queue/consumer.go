package queue

import (
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/rs/zerolog"
)

// newConsumer is swapped out in tests
var newConsumer = sarama.NewConsumer

// QueueMessageConsumer reads trade messages from every partition of a topic.
type QueueMessageConsumer struct {
	consumer  sarama.Consumer
	topic     string
	logger    zerolog.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueueMessageConsumer connects a consumer to brokers.
func NewQueueMessageConsumer(brokers []string, topic string, logger zerolog.Logger) (*QueueMessageConsumer, error) {
	if len(brokers) == 0 {
		brokers = []string{DefaultBroker}
	}
	if topic == "" {
		topic = DefaultTopic
	}

	config := sarama.NewConfig()
	config.Consumer.Return.Errors = true

	consumer, err := newConsumer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{
		consumer: consumer,
		topic:    topic,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// ConsumeTradeMessages delivers decoded messages to handler until Close is
// called. Decode and handler failures are logged and skipped.
func (c *QueueMessageConsumer) ConsumeTradeMessages(handler func(*messaging.TradeMessage) error) error {
	partitions, err := c.consumer.Partitions(c.topic)
	if err != nil {
		return fmt.Errorf("failed to list partitions for %s: %w", c.topic, err)
	}
	if len(partitions) == 0 {
		partitions = []int32{0}
	}

	var wg sync.WaitGroup
	for _, partition := range partitions {
		pc, err := c.consumer.ConsumePartition(c.topic, partition, sarama.OffsetNewest)
		if err != nil {
			return fmt.Errorf("failed to consume partition %d: %w", partition, err)
		}

		wg.Add(1)
		go func(partition int32, pc sarama.PartitionConsumer) {
			defer wg.Done()
			defer pc.AsyncClose()
			c.consumePartition(partition, pc, handler)
		}(partition, pc)
	}

	wg.Wait()
	return nil
}

func (c *QueueMessageConsumer) consumePartition(partition int32, pc sarama.PartitionConsumer, handler func(*messaging.TradeMessage) error) {
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-pc.Messages():
			if !ok {
				return
			}
			decoded, err := DecodeTradeMessage(msg.Value)
			if err != nil {
				c.logger.Error().Err(err).Int32("partition", partition).Int64("offset", msg.Offset).Msg("Failed to decode trade message")
				continue
			}
			if err := handler(decoded); err != nil {
				c.logger.Error().Err(err).Str("order_id", decoded.OrderID).Msg("Trade message handler failed")
			}
		case cerr, ok := <-pc.Errors():
			if !ok {
				return
			}
			c.logger.Error().Err(cerr).Int32("partition", partition).Msg("Kafka consumer error")
		}
	}
}

// Close stops consumption and closes the underlying consumer
func (c *QueueMessageConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.consumer.Close()
	})
	return err
}
