package bus

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Handler receives the concrete topic a message was published under, which may
// be narrower than the pattern it subscribed with.
type Handler func(topic string, msg any)

// Subscription is the opaque token returned by Subscribe and consumed by
// Unsubscribe. Tokens identify the subscription instance, so closures created
// at the same code site never collide.
type Subscription uint64

var ErrUnknownSubscription = errors.New("no such subscription")

type subscription struct {
	id      Subscription
	pattern string
	handler Handler
}

// MessageBus dispatches published messages to every handler whose pattern
// matches the topic, synchronously and in subscription order. Handlers may
// publish from within a handler; nested publishes complete depth-first before
// the outer Publish returns, keeping replayed event streams deterministic.
//
// The bus is driven by a single goroutine and is not safe for concurrent use.
type MessageBus struct {
	logger *zap.Logger
	subs   []subscription
	lastID Subscription

	// Statistics
	pubCount  uint64
	sentCount uint64
	dropCount uint64
}

func NewMessageBus(logger *zap.Logger) *MessageBus {
	return &MessageBus{
		logger: logger,
	}
}

func (b *MessageBus) Publish(topic string, msg any) {
	b.pubCount++

	// Snapshot the matching handlers up front so a handler that
	// subscribes/unsubscribes mid-dispatch does not affect this publish.
	var matched []Handler
	for _, sub := range b.subs {
		if MatchTopic(topic, sub.pattern) {
			matched = append(matched, sub.handler)
		}
	}

	if len(matched) == 0 {
		b.dropCount++
		b.logger.Debug("no subscribers for topic", zap.String("topic", topic))
		return
	}

	for _, handler := range matched {
		handler(topic, msg)
		b.sentCount++
	}
}

func (b *MessageBus) Subscribe(pattern string, handler Handler) (Subscription, error) {
	if handler == nil {
		return 0, fmt.Errorf("subscribe %q: handler is nil", pattern)
	}

	b.lastID++
	b.subs = append(b.subs, subscription{id: b.lastID, pattern: pattern, handler: handler})
	b.logger.Debug("subscribed",
		zap.String("pattern", pattern),
		zap.Uint64("subscription", uint64(b.lastID)),
		zap.Int("subscriptions", len(b.subs)))
	return b.lastID, nil
}

func (b *MessageBus) Unsubscribe(sub Subscription) error {
	for idx, s := range b.subs {
		if s.id == sub {
			b.subs = append(b.subs[:idx], b.subs[idx+1:]...)
			b.logger.Debug("unsubscribed",
				zap.String("pattern", s.pattern),
				zap.Uint64("subscription", uint64(sub)),
				zap.Int("subscriptions", len(b.subs)))
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownSubscription, sub)
}

func (b *MessageBus) SubscriptionCount() int {
	return len(b.subs)
}

func (b *MessageBus) PrintStatistics() {
	b.logger.Info("message bus statistics",
		zap.Uint64("published", b.pubCount),
		zap.Uint64("delivered", b.sentCount),
		zap.Uint64("dropped", b.dropCount),
		zap.Int("subscriptions", len(b.subs)))
}
