package repository

import (
	"context"

	"channelmarket/internal/domain/entity"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	ListByUserID(ctx context.Context, userID, role string, status entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, int64, error)

	// SetFeeAmount freezes the fee on first write. If a fee is already
	// present the stored value is returned untouched.
	SetFeeAmount(ctx context.Context, id string, amountCents int64) (int64, error)

	// SetCheckoutSession advances the record to session_created, storing the
	// gateway session reference. A repeat call carrying the session already
	// on the record is a no-op; a different session after one is stored is a
	// conflict.
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// ConfirmPayment applies the payment event with a conditional update.
	// Returns applied=false without error when the event id or status shows
	// the event was already processed.
	ConfirmPayment(ctx context.Context, id, eventID, chargeRef string) (applied bool, err error)

	// UpdateStatus moves the record to the target status only if the current
	// status is one of from; anything else is a conflict. Status never
	// regresses through this path.
	UpdateStatus(ctx context.Context, id string, from []entity.TransactionStatus, to entity.TransactionStatus) error

	// SetLastMessage is a last-write-wins denormalization update.
	SetLastMessage(ctx context.Context, id string, summary *entity.MessageSummary) error

	CreateLog(ctx context.Context, log *entity.TransactionLog) error
	ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error)
}
