package service

import (
	"context"
	"errors"
	"time"
)

// ErrBadSignature marks a webhook payload whose signature did not verify.
// Treated as a potential forgery, never as a transient fault.
var ErrBadSignature = errors.New("webhook signature verification failed")

// CheckoutRequest asks the gateway for a hosted checkout session. Metadata is
// the only channel correlating the asynchronous completion event back to the
// transaction; the reconciler revalidates it against the record.
type CheckoutRequest struct {
	TransactionID string
	BuyerID       string
	AmountCents   int64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// PaymentEvent is the normalized form of a gateway webhook delivery.
type PaymentEvent struct {
	ID            string
	Type          string
	SessionID     string
	TransactionID string
	BuyerID       string
	AmountCents   int64
	ChargeRef     string
	CreatedAt     time.Time
}

// Completed reports whether this event notifies a finished checkout. All
// other event types are acknowledged and ignored.
func (e *PaymentEvent) Completed() bool {
	return e.Type == "checkout.session.completed"
}

// PaymentGatewayService abstracts the hosted-checkout provider.
type PaymentGatewayService interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// GetCheckoutSession looks up an existing hosted session so a client
	// retry can be answered with the same checkout URL.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyEvent checks the payload signature against the shared webhook
	// secret and parses the event. Returns ErrBadSignature when the payload
	// cannot be trusted.
	VerifyEvent(payload []byte, sigHeader string) (*PaymentEvent, error)
}
