package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/internal/domain/service"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/logger"
)

// WebhookUseCase reconciles asynchronous gateway deliveries against the
// transaction record. Deliveries arrive at-least-once and possibly out of
// order, so every step here is idempotent.
type WebhookUseCase struct {
	gateway         service.PaymentGatewayService
	transactionRepo repository.TransactionRepository
	claimRepo       repository.ClaimRepository
	alertRepo       repository.AlertRepository
	chatUseCase     *ChatUseCase
}

func NewWebhookUseCase(
	gateway service.PaymentGatewayService,
	transactionRepo repository.TransactionRepository,
	claimRepo repository.ClaimRepository,
	alertRepo repository.AlertRepository,
	chatUseCase *ChatUseCase,
) *WebhookUseCase {
	return &WebhookUseCase{
		gateway:         gateway,
		transactionRepo: transactionRepo,
		claimRepo:       claimRepo,
		alertRepo:       alertRepo,
		chatUseCase:     chatUseCase,
	}
}

// HandleGatewayEvent verifies and applies one webhook delivery. A nil return
// tells the handler to acknowledge; the gateway retries on any error, so
// store failures before the transition is durable must surface as errors.
func (uc *WebhookUseCase) HandleGatewayEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := uc.gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		if stderrors.Is(err, service.ErrBadSignature) {
			return errors.BadRequest("Invalid webhook signature", err)
		}
		return errors.BadRequest("Malformed webhook payload", err)
	}

	// Only completed checkouts change state; everything else is acked.
	if !event.Completed() {
		logger.Debug("Ignoring gateway event %s of type %s", event.ID, event.Type)
		return nil
	}

	if event.TransactionID == "" {
		logger.Warn("Gateway event %s has no transaction reference, acknowledging", event.ID)
		return nil
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, event.TransactionID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			// Metadata points at a record we never created. Acknowledged
			// deliberately rather than surfaced as a server error: a retry
			// of this delivery can never succeed, it would only keep a
			// poison event in the gateway's retry queue.
			logger.Warn("Gateway event %s references unknown transaction %s", event.ID, event.TransactionID)
			return nil
		}
		return err
	}

	// Metadata is attacker-influenced in principle; revalidate it against
	// the record before trusting the event.
	if event.BuyerID != "" && event.BuyerID != transaction.BuyerID {
		logger.Warn("Gateway event %s buyer %s does not match transaction %s, acknowledging",
			event.ID, event.BuyerID, event.TransactionID)
		return nil
	}
	if event.SessionID != "" && transaction.CheckoutSessionID != "" && event.SessionID != transaction.CheckoutSessionID {
		logger.Warn("Gateway event %s session %s does not match stored session on transaction %s",
			event.ID, event.SessionID, event.TransactionID)
		return nil
	}
	if transaction.FeeAmountCents > 0 && event.AmountCents > 0 && event.AmountCents != transaction.FeeAmountCents {
		logger.Warn("Gateway event %s amount %d differs from frozen fee %d on transaction %s",
			event.ID, event.AmountCents, transaction.FeeAmountCents, event.TransactionID)
	}

	applied, err := uc.transactionRepo.ConfirmPayment(ctx, event.TransactionID, event.ID, event.ChargeRef)
	if err != nil {
		return err
	}
	if !applied {
		// Duplicate delivery or the record already moved past confirmation.
		logger.Debug("Gateway event %s already applied to transaction %s", event.ID, event.TransactionID)
		return nil
	}

	// The transition is durable; everything below is best-effort and must
	// not cause a retry that would re-run it.
	uc.recordConfirmation(ctx, transaction, event)

	return nil
}

func (uc *WebhookUseCase) recordConfirmation(ctx context.Context, transaction *entity.Transaction, event *service.PaymentEvent) {
	transaction.Status = entity.StatusPaymentConfirmed
	transaction.PaymentEventID = event.ID
	transaction.ChargeRef = event.ChargeRef

	log := &entity.TransactionLog{
		TransactionID: transaction.ID,
		Status:        entity.StatusPaymentConfirmed,
		Notes:         fmt.Sprintf("Payment confirmed by gateway event %s", event.ID),
		CreatedBy:     entity.SystemSenderID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.LogSyncError(transaction.ID, "payment log", err)
	}

	chatEvent := &entity.ChatEvent{
		TransactionID: transaction.ID,
		SenderID:      entity.SystemSenderID,
		Kind:          entity.KindPaymentConfirmation,
		Confirmation: &entity.ConfirmationPayload{
			FeeAmountCents: transaction.FeeAmountCents,
			ChargeRef:      event.ChargeRef,
		},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, chatEvent); err != nil {
		logger.LogSyncError(transaction.ID, "payment chat event", err)
	}

	claim := &entity.ClaimRequest{
		TransactionID: transaction.ID,
		RequestedBy:   entity.SystemSenderID,
		CreatedAt:     time.Now(),
	}
	if err := uc.claimRepo.Enqueue(ctx, claim); err != nil {
		logger.LogSyncError(transaction.ID, "claim enqueue", err)
	}

	alert := &entity.AdminAlert{
		TransactionID: transaction.ID,
		Kind:          "payment_confirmed",
		Message:       fmt.Sprintf("Payment confirmed for transaction %s, escrow agent needed", transaction.ID),
	}
	if err := uc.alertRepo.Create(ctx, alert); err != nil {
		logger.LogSyncError(transaction.ID, "admin alert", err)
	}
}
