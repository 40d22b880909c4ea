package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

// AlertRepository is the fire-and-forget notification channel toward the
// admin UI.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.AdminAlert) error
	ListRecent(ctx context.Context, limit, offset int) ([]*entity.AdminAlert, int64, error)
}
