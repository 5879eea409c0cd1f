package service

import (
	"context"
	"errors"
	"fmt"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidHandoff is returned by Stash for records that would render as partial data.
var ErrInvalidHandoff = errors.New("handoff record is incomplete")

// HandoffBridgeImpl keeps one read-once confirmation record per session.
type HandoffBridgeImpl struct {
	store  port.HandoffStore
	logger port.Logger
}

func NewHandoffBridge(store port.HandoffStore, logger port.Logger) *HandoffBridgeImpl {
	return &HandoffBridgeImpl{store: store, logger: logger}
}

// Stash overwrites any unconsumed record of sessionID.
func (b *HandoffBridgeImpl) Stash(ctx context.Context, sessionID string, h entity.SessionHandoff) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if !h.Valid() {
		return ErrInvalidHandoff
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	if err := b.store.Put(ctx, sessionID, data); err != nil {
		return fmt.Errorf("store handoff: %w", err)
	}
	return nil
}

// Consume returns the session's record and clears it. Corrupt records read as absent.
func (b *HandoffBridgeImpl) Consume(ctx context.Context, sessionID string) (entity.SessionHandoff, bool, error) {
	if sessionID == "" {
		return entity.SessionHandoff{}, false, nil
	}
	data, ok, err := b.store.Take(ctx, sessionID)
	if err != nil {
		return entity.SessionHandoff{}, false, fmt.Errorf("take handoff: %w", err)
	}
	if !ok {
		return entity.SessionHandoff{}, false, nil
	}

	var h entity.SessionHandoff
	if err := json.Unmarshal(data, &h); err != nil {
		b.logger.Warn("Discarding undecodable handoff", "session_id", sessionID, "error", err)
		return entity.SessionHandoff{}, false, nil
	}
	if !h.Valid() {
		b.logger.Warn("Discarding incomplete handoff", "session_id", sessionID)
		return entity.SessionHandoff{}, false, nil
	}
	return h, true, nil
}
