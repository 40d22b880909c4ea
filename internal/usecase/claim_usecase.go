package usecase

import (
	"context"
	"fmt"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/logger"
	"channelmarket/pkg/utils"
)

// ClaimUseCase runs the first-wins queue through which escrow agents pick up
// paid transactions.
type ClaimUseCase struct {
	claimRepo       repository.ClaimRepository
	transactionRepo repository.TransactionRepository
	alertRepo       repository.AlertRepository
	chatUseCase     *ChatUseCase
}

func NewClaimUseCase(
	claimRepo repository.ClaimRepository,
	transactionRepo repository.TransactionRepository,
	alertRepo repository.AlertRepository,
	chatUseCase *ChatUseCase,
) *ClaimUseCase {
	return &ClaimUseCase{
		claimRepo:       claimRepo,
		transactionRepo: transactionRepo,
		alertRepo:       alertRepo,
		chatUseCase:     chatUseCase,
	}
}

// EnqueueClaim lets a participant (re-)request an agent for a paid
// transaction, for the case where the automatic enqueue after payment was
// lost. Idempotent.
func (uc *ClaimUseCase) EnqueueClaim(ctx context.Context, userID, transactionID string) error {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if !transaction.IsParticipant(userID) {
		return errors.Forbidden("User is not a participant in this transaction", nil)
	}

	if transaction.Status != entity.StatusPaymentConfirmed {
		return errors.Conflict("Transaction is not awaiting an escrow agent", nil)
	}

	claim := &entity.ClaimRequest{
		TransactionID: transactionID,
		RequestedBy:   userID,
		CreatedAt:     time.Now(),
	}
	if err := uc.claimRepo.Enqueue(ctx, claim); err != nil {
		return err
	}

	alert := &entity.AdminAlert{
		TransactionID: transactionID,
		Kind:          "claim_requested",
		Message:       fmt.Sprintf("Escrow agent requested for transaction %s", transactionID),
	}
	if err := uc.alertRepo.Create(ctx, alert); err != nil {
		logger.LogSyncError(transactionID, "claim alert", err)
	}

	notice := &entity.ChatEvent{
		TransactionID: transactionID,
		SenderID:      entity.SystemSenderID,
		Kind:          entity.KindSystemNotice,
		Notice:        &entity.SystemNoticePayload{Text: "An escrow agent has been requested."},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, notice); err != nil {
		logger.LogSyncError(transactionID, "claim notice", err)
	}

	return nil
}

// ListPending returns the open claim queue for the agent dashboard.
func (uc *ClaimUseCase) ListPending(ctx context.Context, params utils.PaginationParams) ([]*entity.ClaimRequest, int64, error) {
	return uc.claimRepo.ListPending(ctx, params.PageSize, params.Offset)
}

// Claim attempts to take the transaction for the calling agent. Exactly one
// of any set of concurrent callers wins; the losers get a conflict naming the
// assigned agent's existence, not a partial assignment.
func (uc *ClaimUseCase) Claim(ctx context.Context, agentID, transactionID string) (*entity.Transaction, error) {
	accepted, newly, err := uc.claimRepo.Claim(ctx, transactionID, agentID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, errors.Conflict("Transaction was already claimed by another agent", nil)
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	// A retry by the winning agent is an acknowledgement, not a second
	// hand-off; the log entry and chat event were written on the first win.
	if !newly {
		return transaction, nil
	}

	log := &entity.TransactionLog{
		TransactionID: transactionID,
		Status:        entity.StatusEscrowActive,
		Notes:         fmt.Sprintf("Claimed by agent %s", agentID),
		CreatedBy:     agentID,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.LogSyncError(transactionID, "claim log", err)
	}

	event := &entity.ChatEvent{
		TransactionID: transactionID,
		SenderID:      entity.SystemSenderID,
		Kind:          entity.KindAgentJoined,
		AgentJoin:     &entity.AgentJoinedPayload{AgentID: agentID},
	}
	if err := uc.chatUseCase.AppendAndSync(ctx, transaction, event); err != nil {
		logger.LogSyncError(transactionID, "agent joined event", err)
	}

	return transaction, nil
}
