package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/config"
)

// CartEventType identifies a commerce backend cart event.
type CartEventType string

const (
	CartEventUpdated     CartEventType = "cart.updated"
	CartEventItemRemoved CartEventType = "cart.item_removed"
	CartEventCleared     CartEventType = "cart.cleared"
)

// CartEvent is published by the commerce backend whenever it mutates a
// user's cart server-side (stock depletion, admin removal, checkout).
type CartEvent struct {
	ID        string          `json:"id"`
	Type      CartEventType   `json:"type"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// CartInvalidator drops a user's cached cart working copy so the next
// read reconciles with the backend.
type CartInvalidator interface {
	Delete(ctx context.Context, userID string) error
}

// CartSyncConsumer listens for backend cart events and invalidates the
// affected working copies. This keeps the gateway honest about
// server-side mutations it did not initiate.
type CartSyncConsumer struct {
	reader *kafka.Reader
	cache  CartInvalidator
	logger *logrus.Entry
	stopCh chan struct{}
}

// NewCartSyncConsumer creates a consumer on the backend's cart topic.
func NewCartSyncConsumer(cfg config.KafkaConfig, cache CartInvalidator, logger *logrus.Entry) *CartSyncConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.CartTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &CartSyncConsumer{
		reader: reader,
		cache:  cache,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes until the context is cancelled or Stop is called.
func (c *CartSyncConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting cart sync consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("cart sync consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.WithFields(logrus.Fields{"error": err.Error()}).Error("failed to read message")
				continue
			}
			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *CartSyncConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *CartSyncConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var event CartEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.WithFields(logrus.Fields{"error": err.Error()}).Error("failed to unmarshal cart event")
		return
	}

	switch event.Type {
	case CartEventUpdated, CartEventItemRemoved, CartEventCleared:
		if event.UserID == "" {
			return
		}
		if err := c.cache.Delete(ctx, event.UserID); err != nil {
			c.logger.WithFields(logrus.Fields{
				"user_id": event.UserID,
				"error":   err.Error(),
			}).Error("failed to invalidate cart cache")
			return
		}
		c.logger.WithFields(logrus.Fields{
			"user_id": event.UserID,
			"type":    event.Type,
		}).Debug("cart cache invalidated")
	default:
		c.logger.WithFields(logrus.Fields{"type": event.Type}).Debug("ignoring unknown cart event type")
	}
}
