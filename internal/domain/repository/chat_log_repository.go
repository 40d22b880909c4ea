package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

// ChatLogRepository is the append-only log store for chat events. Append
// order, as expressed by the server-assigned key, is the ordering contract
// for a transaction's conversation.
type ChatLogRepository interface {
	// Append stores the event and returns the server-assigned key.
	Append(ctx context.Context, event *entity.ChatEvent) (string, error)

	// List returns the newest events for a transaction in append order.
	List(ctx context.Context, transactionID string, limit int) ([]*entity.ChatEvent, error)

	// Latest returns the newest event, or nil when the log is empty.
	Latest(ctx context.Context, transactionID string) (*entity.ChatEvent, error)
}
