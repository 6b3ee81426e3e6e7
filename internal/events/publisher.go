// Package events publishes order lifecycle events so downstream consumers
// (analytics, notifications) stay decoupled from the checkout flow.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"product_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderConfirmed fires only after payment verification succeeds.
type OrderConfirmed struct {
	SessionID   string      `json:"session_id"`
	UserID      string      `json:"user_id"`
	Domain      string      `json:"domain"`
	OrderID     string      `json:"order_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	ConfirmedAt time.Time   `json:"confirmed_at"`
}

type Publisher interface {
	OrderConfirmed(ctx context.Context, ev *OrderConfirmed) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) OrderConfirmed(ctx context.Context, ev *OrderConfirmed) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.SessionID), // session id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_confirmed")},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderConfirmed(context.Context, *OrderConfirmed) error { return nil }
