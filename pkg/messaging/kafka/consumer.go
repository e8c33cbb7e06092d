package kafka

import (
	"context"

	"github.com/erain9/matchingo/pkg/db/queue"
	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/rs/zerolog"
)

// SetupConsumer starts a background consumer that logs every trade message
// published to topic. It stops when ctx is done.
func SetupConsumer(ctx context.Context, logger zerolog.Logger, brokers []string, topic string) (*queue.QueueMessageConsumer, error) {
	kafkaConsumer, err := queue.NewQueueMessageConsumer(brokers, topic, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create Kafka consumer - continuing without trade echo")
		return nil, err
	}

	go func() {
		<-ctx.Done()
		_ = kafkaConsumer.Close()
	}()

	go func() {
		logger.Info().Str("topic", topic).Msg("Starting Kafka consumer")
		err := kafkaConsumer.ConsumeTradeMessages(func(msg *messaging.TradeMessage) error {
			logTradeMessage(logger, msg)
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	return kafkaConsumer, nil
}

func logTradeMessage(logger zerolog.Logger, msg *messaging.TradeMessage) {
	logger.Info().
		Str("symbol", msg.Symbol).
		Str("order_id", msg.OrderID).
		Str("side", msg.Side).
		Str("tif", msg.TimeInForce).
		Str("remaining", msg.Remaining).
		Str("status", msg.Status).
		Bool("resting", msg.Resting).
		Int("trade_count", len(msg.Trades)).
		Interface("trades", msg.Trades).
		Msg("Received trade message")
}
