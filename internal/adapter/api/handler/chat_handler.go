package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"channelmarket/internal/usecase"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/response"
	"channelmarket/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type postMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

func (h *ChatHandler) PostMessage(c echo.Context) error {
	transactionID := c.Param("id")
	if transactionID == "" {
		return response.Error(c, errors.BadRequest("Transaction ID is required", nil))
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	event, err := h.chatUseCase.PostMessage(c.Request().Context(), userID, transactionID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, event)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	transactionID := c.Param("id")
	if transactionID == "" {
		return response.Error(c, errors.BadRequest("Transaction ID is required", nil))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	userID := c.Get("uid").(string)

	events, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, transactionID, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, events)
}

func (h *ChatHandler) GetInbox(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	userID := c.Get("uid").(string)

	summaries, total, err := h.chatUseCase.GetInbox(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, summaries, total, pagination.Page, pagination.PageSize)
}
