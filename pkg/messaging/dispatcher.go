package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBufferSize is the dispatcher queue length used when none is given.
	DefaultBufferSize = 4096

	sendTimeout = 5 * time.Second
)

type envelope struct {
	ctx context.Context
	msg *TradeMessage
}

// Dispatcher hands messages to a sender from a single background worker so
// publication never blocks matching. Messages are delivered in Publish order.
type Dispatcher struct {
	sender MessageSender
	queue  chan envelope
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts a dispatcher with a queue of bufferSize messages.
func NewDispatcher(sender MessageSender, bufferSize int, logger zerolog.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan envelope, bufferSize),
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Publish enqueues msg. It returns false when the queue is full or the
// dispatcher is closed; the message is dropped in that case.
func (d *Dispatcher) Publish(ctx context.Context, msg *TradeMessage) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), msg: msg}:
		return true
	default:
		d.logger.Warn().
			Str("symbol", msg.Symbol).
			Str("order_id", msg.OrderID).
			Msg("Publish queue full, dropping trade message")
		return false
	}
}

// Close stops accepting messages, drains the queue and closes the sender.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	return d.sender.Close()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for env := range d.queue {
		ctx, cancel := context.WithTimeout(env.ctx, sendTimeout)
		if err := d.sender.SendTradeMessage(ctx, env.msg); err != nil {
			d.logger.Error().Err(err).
				Str("symbol", env.msg.Symbol).
				Str("order_id", env.msg.OrderID).
				Int("trades", len(env.msg.Trades)).
				Msg("Failed to publish trade message")
		}
		cancel()
	}
}
