package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannelPrefix prefixes the per-symbol pub/sub channel
const DefaultChannelPrefix = "matchingo:trades"

// RedisOptions represents configuration options for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client from options
func NewClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// publisher is the subset of *redis.Client the sender needs
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisMessageSender publishes trade messages on one channel per symbol
type RedisMessageSender struct {
	client publisher
	prefix string
	logger *zap.Logger
}

// NewRedisMessageSender creates a sender over client
func NewRedisMessageSender(client *redis.Client, prefix string, logger *zap.Logger) *RedisMessageSender {
	return newRedisMessageSender(client, prefix, logger)
}

func newRedisMessageSender(client publisher, prefix string, logger *zap.Logger) *RedisMessageSender {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMessageSender{client: client, prefix: prefix, logger: logger}
}

// Channel returns the pub/sub channel for symbol
func (r *RedisMessageSender) Channel(symbol string) string {
	return fmt.Sprintf("%s:%s", r.prefix, symbol)
}

// SendTradeMessage publishes msg as JSON
func (r *RedisMessageSender) SendTradeMessage(ctx context.Context, msg *messaging.TradeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal trade message: %w", err)
	}

	channel := r.Channel(msg.Symbol)
	receivers, err := r.client.Publish(ctx, channel, data).Result()
	if err != nil {
		r.logger.Error("failed to publish trade message",
			zap.String("channel", channel),
			zap.String("order_id", msg.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	r.logger.Debug("published trade message",
		zap.String("channel", channel),
		zap.String("order_id", msg.OrderID),
		zap.Int("trades", len(msg.Trades)),
		zap.Int64("receivers", receivers))
	return nil
}

// Close closes the Redis client
func (r *RedisMessageSender) Close() error {
	return r.client.Close()
}

var _ messaging.MessageSender = (*RedisMessageSender)(nil)
