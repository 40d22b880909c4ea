package handler

import (
	"github.com/labstack/echo/v4"

	"channelmarket/internal/usecase"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/response"
	"channelmarket/pkg/utils"
)

type ClaimHandler struct {
	claimUseCase *usecase.ClaimUseCase
}

func NewClaimHandler(claimUseCase *usecase.ClaimUseCase) *ClaimHandler {
	return &ClaimHandler{
		claimUseCase: claimUseCase,
	}
}

// RequestClaim lets a participant re-ask for an agent when the automatic
// request after payment went missing.
func (h *ClaimHandler) RequestClaim(c echo.Context) error {
	transactionID := c.Param("id")
	if transactionID == "" {
		return response.Error(c, errors.BadRequest("Transaction ID is required", nil))
	}

	userID := c.Get("uid").(string)

	if err := h.claimUseCase.EnqueueClaim(c.Request().Context(), userID, transactionID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "requested"})
}

func (h *ClaimHandler) ListPendingClaims(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	claims, total, err := h.claimUseCase.ListPending(c.Request().Context(), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, claims, total, pagination.Page, pagination.PageSize)
}

func (h *ClaimHandler) ClaimTransaction(c echo.Context) error {
	transactionID := c.Param("id")
	if transactionID == "" {
		return response.Error(c, errors.BadRequest("Transaction ID is required", nil))
	}

	agentID := c.Get("uid").(string)

	transaction, err := h.claimUseCase.Claim(c.Request().Context(), agentID, transactionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}
