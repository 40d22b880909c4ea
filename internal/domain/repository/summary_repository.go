package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

// SummaryRepository stores per-user thread summaries. Upserts are
// last-write-wins keyed by (userID, transactionID), which makes the
// denormalization step safe to retry or re-run from repair-on-read.
type SummaryRepository interface {
	Upsert(ctx context.Context, userID string, summary *entity.ThreadSummary) error
	Get(ctx context.Context, userID, transactionID string) (*entity.ThreadSummary, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ThreadSummary, int64, error)
}
