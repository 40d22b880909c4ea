package handler

import (
	"github.com/labstack/echo/v4"

	"channelmarket/internal/usecase"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/response"
	"channelmarket/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

type setRoleRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=agent admin"`
}

func (h *AdminHandler) SetUserRole(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.adminUseCase.SetUserRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) ListAlerts(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	alerts, total, err := h.adminUseCase.ListAlerts(c.Request().Context(), pagination)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, alerts, total, pagination.Page, pagination.PageSize)
}
