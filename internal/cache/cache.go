package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

type Delivery struct {
	Status       string    `json:"status"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeliveryCache keeps the latest carrier delivery status per message sid.
type DeliveryCache interface {
	StoreDelivery(ctx context.Context, messageSID string, d Delivery) error
	Delivery(ctx context.Context, messageSID string) (Delivery, error)
}

// InboundDeduper remembers carrier message sids already handled.
type InboundDeduper interface {
	// Seen reports whether sid was marked within the TTL.
	Seen(ctx context.Context, messageSID string) (bool, error)
	// MarkSeen records sid once it has been stored.
	MarkSeen(ctx context.Context, messageSID string) error
}
