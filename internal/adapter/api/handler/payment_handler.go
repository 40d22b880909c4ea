package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"channelmarket/internal/usecase"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/response"
)

type PaymentHandler struct {
	checkoutUseCase *usecase.CheckoutUseCase
	webhookUseCase  *usecase.WebhookUseCase
}

func NewPaymentHandler(checkoutUseCase *usecase.CheckoutUseCase, webhookUseCase *usecase.WebhookUseCase) *PaymentHandler {
	return &PaymentHandler{
		checkoutUseCase: checkoutUseCase,
		webhookUseCase:  webhookUseCase,
	}
}

type createSessionRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Origin        string `json:"origin,omitempty" validate:"omitempty,url"`
}

func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	session, err := h.checkoutUseCase.CreateSession(c.Request().Context(), userID, usecase.CreateSessionInput{
		TransactionID: req.TransactionID,
		OriginHint:    req.Origin,
		OriginHeader:  c.Request().Header.Get("Origin"),
		Referer:       c.Request().Header.Get("Referer"),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, session)
}

// HandleStripeWebhook consumes gateway deliveries. It reads the raw body
// because signature verification runs over the exact bytes Stripe sent.
// Unauthenticated by design; the signature is the authentication.
func (h *PaymentHandler) HandleStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read webhook body", err))
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.webhookUseCase.HandleGatewayEvent(c.Request().Context(), payload, sigHeader); err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}
