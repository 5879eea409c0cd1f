package port

import (
	"context"

	"donation_portal/internal/domain/entity"
)

// HandoffStore is a keyed, single-read byte slot.
// Take must return and delete the value atomically.
type HandoffStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Take(ctx context.Context, key string) ([]byte, bool, error)
}

// HandoffBridge carries a confirmed donation to the confirmation view.
type HandoffBridge interface {
	Stash(ctx context.Context, sessionID string, h entity.SessionHandoff) error
	// Consume returns the stashed record and clears it. A second call returns false.
	Consume(ctx context.Context, sessionID string) (entity.SessionHandoff, bool, error)
}
