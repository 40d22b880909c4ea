package usecase

import (
	"context"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/utils"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
}

func NewListingUseCase(listingRepo repository.ListingRepository) *ListingUseCase {
	return &ListingUseCase{listingRepo: listingRepo}
}

type CreateListingInput struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Platform    string `json:"platform" validate:"required,oneof=youtube telegram instagram tiktok"`
	Handle      string `json:"handle" validate:"required,max=100"`
	Subscribers int64  `json:"subscribers" validate:"min=0"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
}

type UpdateListingInput struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=120"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"omitempty,gt=0"`
	Status      string `json:"status" validate:"omitempty,oneof=active delisted"`
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	listing := &entity.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Platform:    input.Platform,
		Handle:      input.Handle,
		Subscribers: input.Subscribers,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Status:      "active",
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, id)
}

func (uc *ListingUseCase) ListListings(ctx context.Context, platform, status string, params utils.PaginationParams) ([]*entity.Listing, int64, error) {
	filter := map[string]interface{}{}
	if platform != "" {
		filter["platform"] = platform
	}
	if status != "" {
		filter["status"] = status
	} else {
		filter["status"] = "active"
	}

	return uc.listingRepo.List(ctx, filter, params.PageSize, params.Offset)
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, sellerID, id string, input UpdateListingInput) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != sellerID {
		return nil, errors.Forbidden("Only the seller can update this listing", nil)
	}

	// Reserved and sold listings are controlled by the transaction flow.
	if listing.Status == "reserved" || listing.Status == "sold" {
		return nil, errors.Conflict("Listing is locked by an active transaction", nil)
	}

	if input.Title != "" {
		listing.Title = input.Title
	}
	if input.Description != "" {
		listing.Description = input.Description
	}
	if input.PriceCents > 0 {
		listing.PriceCents = input.PriceCents
	}
	if input.Status != "" {
		listing.Status = input.Status
	}
	listing.UpdatedAt = time.Now()

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}
