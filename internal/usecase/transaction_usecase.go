package usecase

import (
	"context"
	"math"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/logger"
	"channelmarket/pkg/utils"
)

const (
	// Service fee is 8% of the listing price with a $3 floor, in cents.
	feeRate         = 0.08
	minimumFeeCents = 300
)

func calculateFeeCents(priceCents int64) int64 {
	fee := int64(math.Round(float64(priceCents) * feeRate))
	if fee < minimumFeeCents {
		return minimumFeeCents
	}
	return fee
}

type TransactionUseCase struct {
	transactionRepo repository.TransactionRepository
	listingRepo     repository.ListingRepository
	chatUseCase     *ChatUseCase
}

func NewTransactionUseCase(
	transactionRepo repository.TransactionRepository,
	listingRepo repository.ListingRepository,
	chatUseCase *ChatUseCase,
) *TransactionUseCase {
	return &TransactionUseCase{
		transactionRepo: transactionRepo,
		listingRepo:     listingRepo,
		chatUseCase:     chatUseCase,
	}
}

type CreateTransactionInput struct {
	ListingID string
	Message   string
}

// CreateTransaction opens the escrow negotiation when a buyer first contacts
// a seller about a listing.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, buyerID string, input CreateTransactionInput) (*entity.Transaction, error) {
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	if listing.SellerID == buyerID {
		return nil, errors.BadRequest("Cannot buy your own listing", nil)
	}

	if listing.Status != "active" {
		return nil, errors.BadRequest("Listing is not available", nil)
	}

	transaction := &entity.Transaction{
		ListingID:    input.ListingID,
		BuyerID:      buyerID,
		SellerID:     listing.SellerID,
		Participants: []string{buyerID, listing.SellerID},
		Status:       entity.StatusCreated,
	}

	if err := uc.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	log := &entity.TransactionLog{
		TransactionID: transaction.ID,
		Status:        entity.StatusCreated,
		Notes:         "Transaction created",
		CreatedBy:     buyerID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.Error("Failed to create transaction log for transaction %s: %v", transaction.ID, err)
	}

	event := &entity.ChatEvent{
		TransactionID: transaction.ID,
		SenderID:      buyerID,
		Kind:          entity.KindPurchaseRequest,
		Purchase: &entity.PurchaseRequestPayload{
			ListingID: input.ListingID,
			Message:   input.Message,
		},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, event); err != nil {
		logger.Error("Failed to append purchase request event for transaction %s: %v", transaction.ID, err)
	}

	return transaction, nil
}

// ResolveFee returns the frozen service fee for a transaction, computing and
// persisting it on first use. Retries and concurrent callers converge on one
// value; if the listing cannot be resolved the minimum fee applies so
// checkout stays available.
func (uc *TransactionUseCase) ResolveFee(ctx context.Context, transactionID string) (int64, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return 0, err
	}

	if transaction.FeeAmountCents > 0 {
		return transaction.FeeAmountCents, nil
	}

	fee := int64(minimumFeeCents)
	listing, err := uc.listingRepo.GetByID(ctx, transaction.ListingID)
	if err != nil {
		logger.Warn("Listing %s unavailable for fee computation, using minimum fee: %v", transaction.ListingID, err)
	} else {
		fee = calculateFeeCents(listing.PriceCents)
	}

	return uc.transactionRepo.SetFeeAmount(ctx, transactionID, fee)
}

// GetTransaction returns a transaction to one of its participants. Opening
// the record doubles as the repair-on-read pass for its summaries.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	return uc.chatUseCase.OpenThread(ctx, userID, transactionID)
}

func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID, role string, status entity.TransactionStatus, page, limit int) ([]*entity.Transaction, int64, error) {
	if role != "buyer" && role != "seller" && role != "agent" {
		role = "buyer"
	}

	pagination := utils.NewPaginationParams(page, limit)

	return uc.transactionRepo.ListByUserID(ctx, userID, role, status, pagination.PageSize, pagination.Offset)
}

// Resolve finishes an escrow hand-off. Only the assigned agent may resolve.
func (uc *TransactionUseCase) Resolve(ctx context.Context, agentID, transactionID string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.AgentID == "" || transaction.AgentID != agentID {
		return nil, errors.Forbidden("Only the assigned agent can resolve this transaction", nil)
	}

	err = uc.transactionRepo.UpdateStatus(ctx, transactionID,
		[]entity.TransactionStatus{entity.StatusEscrowActive}, entity.StatusResolved)
	if err != nil {
		return nil, err
	}

	log := &entity.TransactionLog{
		TransactionID: transactionID,
		Status:        entity.StatusResolved,
		Notes:         "Escrow resolved by agent",
		CreatedBy:     agentID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.Error("Failed to create resolve log for transaction %s: %v", transactionID, err)
	}

	event := &entity.ChatEvent{
		TransactionID: transactionID,
		SenderID:      entity.SystemSenderID,
		Kind:          entity.KindSystemNotice,
		Notice:        &entity.SystemNoticePayload{Text: "Transaction resolved. Thanks for using escrow."},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, event); err != nil {
		logger.Error("Failed to append resolve notice for transaction %s: %v", transactionID, err)
	}

	return uc.transactionRepo.GetByID(ctx, transactionID)
}

// Fail aborts a non-terminal transaction.
func (uc *TransactionUseCase) Fail(ctx context.Context, userID, transactionID, reason string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	err = uc.transactionRepo.UpdateStatus(ctx, transactionID,
		[]entity.TransactionStatus{
			entity.StatusCreated,
			entity.StatusAwaitingPayment,
			entity.StatusSessionCreated,
			entity.StatusPaymentConfirmed,
			entity.StatusEscrowActive,
		}, entity.StatusFailed)
	if err != nil {
		return nil, err
	}

	notes := "Transaction failed"
	if reason != "" {
		notes = "Transaction failed: " + reason
	}

	log := &entity.TransactionLog{
		TransactionID: transactionID,
		Status:        entity.StatusFailed,
		Notes:         notes,
		CreatedBy:     userID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.Error("Failed to create failure log for transaction %s: %v", transactionID, err)
	}

	event := &entity.ChatEvent{
		TransactionID: transactionID,
		SenderID:      entity.SystemSenderID,
		Kind:          entity.KindSystemNotice,
		Notice:        &entity.SystemNoticePayload{Text: notes},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, event); err != nil {
		logger.Error("Failed to append failure notice for transaction %s: %v", transactionID, err)
	}

	return uc.transactionRepo.GetByID(ctx, transactionID)
}

func (uc *TransactionUseCase) GetTransactionLogs(ctx context.Context, userID, transactionID string) ([]*entity.TransactionLog, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	return uc.transactionRepo.ListLogsByTransactionID(ctx, transactionID)
}
