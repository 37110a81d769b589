// Package events publishes catalog change notifications after a write
// has committed. Delivery is best effort and never fails the write.
package events

import (
	"context"
	"time"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	StockUpserted  = "stock.upserted"
)

type Event struct {
	ID             string    `json:"event_id"`
	Type           string    `json:"event_type"`
	OrganizationID string    `json:"organization_id"`
	EntityID       string    `json:"entity_id"`
	Payload        any       `json:"payload,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. Used when Kafka is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
