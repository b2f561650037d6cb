package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
)

// EventType identifies a storefront event.
type EventType string

const (
	EventTypeCheckoutStarted  EventType = "checkout.started"
	EventTypePaymentConfirmed EventType = "payment.confirmed"
	EventTypePaymentFailed    EventType = "payment.failed"
)

// StorefrontEvent is the envelope written to the orders topic.
type StorefrontEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher publishes storefront checkout events.
type Publisher interface {
	PublishCheckoutStarted(ctx context.Context, userID string, order *models.Order) error
	PublishPaymentConfirmed(ctx context.Context, userID string, record *models.PaymentRecord) error
	PublishPaymentFailed(ctx context.Context, userID, orderID, reason string) error
}

// Ensure KafkaPublisher implements Publisher.
var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher publishes storefront events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logrus.Entry
}

// NewKafkaPublisher creates a Kafka-based publisher for the orders topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logrus.Entry) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// PublishCheckoutStarted records that an order was created and handed to
// the payment widget.
func (p *KafkaPublisher) PublishCheckoutStarted(ctx context.Context, userID string, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeCheckoutStarted, order.OrderID, userID, data))
}

// PublishPaymentConfirmed records a confirmed payment.
func (p *KafkaPublisher) PublishPaymentConfirmed(ctx context.Context, userID string, record *models.PaymentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypePaymentConfirmed, record.OrderID, userID, data))
}

// PublishPaymentFailed records a failed payment redirect.
func (p *KafkaPublisher) PublishPaymentFailed(ctx context.Context, userID, orderID, reason string) error {
	data, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypePaymentFailed, orderID, userID, data))
}

func newEvent(eventType EventType, orderID, userID string, data []byte) *StorefrontEvent {
	return &StorefrontEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *StorefrontEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		}).Error("failed to publish event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	}).Info("event published")

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// MockPublisher records events for tests.
type MockPublisher struct {
	Events []*StorefrontEvent
}

// NewMockPublisher creates a mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]*StorefrontEvent, 0)}
}

func (m *MockPublisher) PublishCheckoutStarted(ctx context.Context, userID string, order *models.Order) error {
	m.Events = append(m.Events, &StorefrontEvent{Type: EventTypeCheckoutStarted, OrderID: order.OrderID, UserID: userID})
	return nil
}

func (m *MockPublisher) PublishPaymentConfirmed(ctx context.Context, userID string, record *models.PaymentRecord) error {
	m.Events = append(m.Events, &StorefrontEvent{Type: EventTypePaymentConfirmed, OrderID: record.OrderID, UserID: userID})
	return nil
}

func (m *MockPublisher) PublishPaymentFailed(ctx context.Context, userID, orderID, reason string) error {
	m.Events = append(m.Events, &StorefrontEvent{Type: EventTypePaymentFailed, OrderID: orderID, UserID: userID})
	return nil
}
