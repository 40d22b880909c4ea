package usecase

import (
	"context"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/utils"
)

// AdminUseCase backs the small operator surface: granting and revoking the
// agent role, and reading the alert feed the reconciler writes into.
type AdminUseCase struct {
	userRepo  repository.UserRepository
	alertRepo repository.AlertRepository
}

func NewAdminUseCase(userRepo repository.UserRepository, alertRepo repository.AlertRepository) *AdminUseCase {
	return &AdminUseCase{
		userRepo:  userRepo,
		alertRepo: alertRepo,
	}
}

// SetUserRole grants or revokes a role. An empty role demotes back to a
// regular user.
func (uc *AdminUseCase) SetUserRole(ctx context.Context, userID, role string) (*entity.User, error) {
	if role != "" && role != "agent" && role != "admin" {
		return nil, errors.BadRequest("Unknown role", nil)
	}

	if err := uc.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}

	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *AdminUseCase) ListAlerts(ctx context.Context, params utils.PaginationParams) ([]*entity.AdminAlert, int64, error) {
	return uc.alertRepo.ListRecent(ctx, params.PageSize, params.Offset)
}
