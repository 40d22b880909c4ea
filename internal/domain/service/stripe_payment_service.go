package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"channelmarket/pkg/logger"
)

// StripePaymentService implements the gateway contract with Stripe Checkout.
type StripePaymentService struct {
	webhookSecret string
}

func NewStripePaymentService(secretKey, webhookSecret string) *StripePaymentService {
	stripe.Key = secretKey

	return &StripePaymentService{
		webhookSecret: webhookSecret,
	}
}

func (s *StripePaymentService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("transaction_id", req.TransactionID)
	params.AddMetadata("buyer_id", req.BuyerID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	logger.Info("Created checkout session %s for transaction %s", sess.ID, req.TransactionID)

	return &CheckoutSession{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *StripePaymentService) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session lookup: %w", err)
	}

	return &CheckoutSession{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *StripePaymentService) VerifyEvent(payload []byte, sigHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	normalized := &PaymentEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		CreatedAt: time.Unix(event.Created, 0),
	}

	if !normalized.Completed() {
		return normalized, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse checkout session from event %s: %w", event.ID, err)
	}

	normalized.SessionID = sess.ID
	normalized.AmountCents = sess.AmountTotal
	normalized.TransactionID = sess.Metadata["transaction_id"]
	normalized.BuyerID = sess.Metadata["buyer_id"]
	if sess.PaymentIntent != nil {
		normalized.ChargeRef = sess.PaymentIntent.ID
	}

	return normalized, nil
}
