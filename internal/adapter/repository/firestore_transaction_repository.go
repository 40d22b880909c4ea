package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
)

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) docRef(id string) *firestore.DocumentRef {
	return r.client.Collection("transactions").Doc(id)
}

func (r *firestoreTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	_, err := r.docRef(transaction.ID).Create(ctx, transaction)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Transaction already exists", err)
		}
		return errors.Internal("Failed to create transaction", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	doc, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Transaction", err)
		}
		return nil, errors.Internal("Failed to get transaction", err)
	}

	var transaction entity.Transaction
	if err := doc.DataTo(&transaction); err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}

	return &transaction, nil
}

func (r *firestoreTransactionRepository) ListByUserID(ctx context.Context, userID, role string, filterStatus entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, int64, error) {
	var field string
	switch role {
	case "buyer":
		field = "buyerId"
	case "seller":
		field = "sellerId"
	case "agent":
		field = "agentId"
	default:
		return nil, 0, errors.BadRequest("Invalid role", nil)
	}

	query := r.client.Collection("transactions").Where(field, "==", userID)
	if filterStatus != "" {
		query = query.Where("status", "==", string(filterStatus))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count transactions", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var transactions []*entity.Transaction

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate transactions", err)
		}

		var transaction entity.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return nil, 0, errors.Internal("Failed to parse transaction data", err)
		}
		transactions = append(transactions, &transaction)
	}

	return transactions, total, nil
}

func (r *firestoreTransactionRepository) SetFeeAmount(ctx context.Context, id string, amountCents int64) (int64, error) {
	var frozen int64

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.docRef(id))
		if err != nil {
			return err
		}

		var transaction entity.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return err
		}

		// Fee is frozen once set. Concurrent callers converge on whichever
		// write committed first.
		if transaction.FeeAmountCents > 0 {
			frozen = transaction.FeeAmountCents
			return nil
		}

		frozen = amountCents
		return tx.Update(r.docRef(id), []firestore.Update{
			{Path: "feeAmountCents", Value: amountCents},
			{Path: "updatedAt", Value: time.Now()},
		})
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, errors.NotFound("Transaction", err)
		}
		return 0, errors.Internal("Failed to set fee amount", err)
	}

	return frozen, nil
}

func (r *firestoreTransactionRepository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.docRef(id))
		if err != nil {
			return err
		}

		var transaction entity.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return err
		}

		// Client retry after a dropped response lands here with the session
		// already persisted.
		if transaction.CheckoutSessionID == sessionID {
			return nil
		}
		if transaction.CheckoutSessionID != "" {
			return errors.Conflict("Transaction already has a checkout session", nil)
		}
		if !transaction.Status.CanTransition(entity.StatusSessionCreated) {
			return errors.Conflict("Transaction is not awaiting a checkout session", nil)
		}

		return tx.Update(r.docRef(id), []firestore.Update{
			{Path: "checkoutSessionId", Value: sessionID},
			{Path: "status", Value: string(entity.StatusSessionCreated)},
			{Path: "updatedAt", Value: time.Now()},
		})
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Transaction", err)
		}
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to store checkout session", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) ConfirmPayment(ctx context.Context, id, eventID, chargeRef string) (bool, error) {
	applied := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		applied = false

		doc, err := tx.Get(r.docRef(id))
		if err != nil {
			return err
		}

		var transaction entity.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return err
		}

		// At-least-once delivery: the same event id, or a record already at
		// or past confirmation, means the first delivery won.
		if transaction.PaymentEventID == eventID || transaction.Status.AtOrPast(entity.StatusPaymentConfirmed) {
			return nil
		}

		// The webhook can overtake the session-persist write when the client
		// dropped between the gateway call and our own store, so
		// awaiting_payment is accepted as a predecessor too.
		if transaction.Status != entity.StatusSessionCreated && transaction.Status != entity.StatusAwaitingPayment {
			return nil
		}

		now := time.Now()
		applied = true
		return tx.Update(r.docRef(id), []firestore.Update{
			{Path: "status", Value: string(entity.StatusPaymentConfirmed)},
			{Path: "paymentEventId", Value: eventID},
			{Path: "chargeRef", Value: chargeRef},
			{Path: "confirmedAt", Value: now},
			{Path: "updatedAt", Value: now},
		})
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, errors.NotFound("Transaction", err)
		}
		return false, errors.Unavailable("Failed to apply payment confirmation", err)
	}

	return applied, nil
}

func (r *firestoreTransactionRepository) UpdateStatus(ctx context.Context, id string, from []entity.TransactionStatus, to entity.TransactionStatus) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(r.docRef(id))
		if err != nil {
			return err
		}

		var transaction entity.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return err
		}

		if transaction.Status == to {
			return nil
		}

		allowed := false
		for _, s := range from {
			if transaction.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Conflict("Transaction status does not allow this transition", nil)
		}

		now := time.Now()
		updates := []firestore.Update{
			{Path: "status", Value: string(to)},
			{Path: "updatedAt", Value: now},
		}
		if to == entity.StatusResolved {
			updates = append(updates, firestore.Update{Path: "resolvedAt", Value: now})
		}

		return tx.Update(r.docRef(id), updates)
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Transaction", err)
		}
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to update transaction status", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) SetLastMessage(ctx context.Context, id string, summary *entity.MessageSummary) error {
	_, err := r.docRef(id).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: summary},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Transaction", err)
		}
		return errors.Internal("Failed to update last message summary", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) CreateLog(ctx context.Context, log *entity.TransactionLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()

	_, err := r.client.Collection("transaction_logs").Doc(log.ID).Set(ctx, log)
	if err != nil {
		return errors.Internal("Failed to create transaction log", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error) {
	query := r.client.Collection("transaction_logs").
		Where("transactionId", "==", transactionID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var logs []*entity.TransactionLog

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate transaction logs", err)
		}

		var log entity.TransactionLog
		if err := doc.DataTo(&log); err != nil {
			return nil, errors.Internal("Failed to parse transaction log data", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}
