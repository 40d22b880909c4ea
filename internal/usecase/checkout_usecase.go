package usecase

import (
	"context"
	"net/url"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/internal/domain/service"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/logger"
)

// CheckoutUseCase creates hosted payment sessions for the escrow service
// fee. The gateway requires an exact pre-registered return URL, so the
// caller's origin is resolved through a fallback chain before the session is
// requested.
type CheckoutUseCase struct {
	transactionRepo repository.TransactionRepository
	transactionUC   *TransactionUseCase
	gateway         service.PaymentGatewayService

	defaultOrigin  string
	allowedOrigins []string
	gatewayTimeout time.Duration
}

func NewCheckoutUseCase(
	transactionRepo repository.TransactionRepository,
	transactionUC *TransactionUseCase,
	gateway service.PaymentGatewayService,
	defaultOrigin string,
	allowedOrigins []string,
	gatewayTimeout time.Duration,
) *CheckoutUseCase {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}

	return &CheckoutUseCase{
		transactionRepo: transactionRepo,
		transactionUC:   transactionUC,
		gateway:         gateway,
		defaultOrigin:   defaultOrigin,
		allowedOrigins:  allowedOrigins,
		gatewayTimeout:  gatewayTimeout,
	}
}

type CreateSessionInput struct {
	TransactionID string
	OriginHint    string // explicit origin from the request body
	OriginHeader  string // Origin header
	Referer       string // Referer header, origin derived
}

// ResolveReturnOrigin applies the precedence hint > Origin header > Referer >
// configured default. Anything not on the allowlist falls back to the
// default, since the gateway rejects unregistered return URLs anyway.
func (uc *CheckoutUseCase) ResolveReturnOrigin(input CreateSessionInput) string {
	candidates := []string{input.OriginHint, input.OriginHeader, originFromURL(input.Referer)}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		normalized := originFromURL(candidate)
		if normalized == "" {
			continue
		}
		if uc.originAllowed(normalized) {
			return normalized
		}
	}

	return uc.defaultOrigin
}

func (uc *CheckoutUseCase) originAllowed(origin string) bool {
	if origin == uc.defaultOrigin {
		return true
	}
	for _, allowed := range uc.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func originFromURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	return parsed.Scheme + "://" + parsed.Host
}

// CreateSession resolves the fee, asks the gateway for a hosted checkout
// session and persists the session reference. Retrying after a dropped
// response returns the already-created session instead of erroring.
func (uc *CheckoutUseCase) CreateSession(ctx context.Context, userID string, input CreateSessionInput) (*service.CheckoutSession, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	if transaction.Status.AtOrPast(entity.StatusPaymentConfirmed) || transaction.Status.IsTerminal() {
		return nil, errors.Conflict("Transaction is already paid or closed", nil)
	}

	// Dropped-response retry: the session exists, hand back its URL.
	if transaction.CheckoutSessionID != "" {
		return uc.lookupExisting(ctx, transaction.CheckoutSessionID)
	}

	if err := uc.transactionRepo.UpdateStatus(ctx, input.TransactionID,
		[]entity.TransactionStatus{entity.StatusCreated}, entity.StatusAwaitingPayment); err != nil {
		return nil, err
	}

	feeCents, err := uc.transactionUC.ResolveFee(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	origin := uc.ResolveReturnOrigin(input)

	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
	defer cancel()

	session, err := uc.gateway.CreateCheckoutSession(gatewayCtx, service.CheckoutRequest{
		TransactionID: input.TransactionID,
		BuyerID:       userID,
		AmountCents:   feeCents,
		Currency:      "usd",
		Description:   "Escrow service fee",
		SuccessURL:    origin + "/checkout/success?transaction_id=" + input.TransactionID,
		CancelURL:     origin + "/checkout/cancel?transaction_id=" + input.TransactionID,
	})
	if err != nil {
		// Status is untouched; the client can retry safely.
		return nil, errors.Unavailable("Payment gateway is unavailable, please retry", err)
	}

	if err := uc.transactionRepo.SetCheckoutSession(ctx, input.TransactionID, session.SessionID); err != nil {
		if errors.Is(err, "CONFLICT") {
			// A concurrent call stored its session first; converge on it.
			current, getErr := uc.transactionRepo.GetByID(ctx, input.TransactionID)
			if getErr == nil && current.CheckoutSessionID != "" {
				logger.Info("Concurrent checkout session for transaction %s, reusing %s",
					input.TransactionID, current.CheckoutSessionID)
				return uc.lookupExisting(ctx, current.CheckoutSessionID)
			}
		}
		return nil, err
	}

	log := &entity.TransactionLog{
		TransactionID: input.TransactionID,
		Status:        entity.StatusSessionCreated,
		Notes:         "Checkout session created",
		CreatedBy:     userID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.Error("Failed to create session log for transaction %s: %v", input.TransactionID, err)
	}

	return session, nil
}

func (uc *CheckoutUseCase) lookupExisting(ctx context.Context, sessionID string) (*service.CheckoutSession, error) {
	gatewayCtx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
	defer cancel()

	session, err := uc.gateway.GetCheckoutSession(gatewayCtx, sessionID)
	if err != nil {
		return nil, errors.Unavailable("Payment gateway is unavailable, please retry", err)
	}

	return session, nil
}
