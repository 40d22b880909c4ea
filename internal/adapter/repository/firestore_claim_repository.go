package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
)

type firestoreClaimRepository struct {
	client *firestore.Client
}

func NewFirestoreClaimRepository(client *firestore.Client) repository.ClaimRepository {
	return &firestoreClaimRepository{
		client: client,
	}
}

func (r *firestoreClaimRepository) claimRef(transactionID string) *firestore.DocumentRef {
	return r.client.Collection("claim_requests").Doc(transactionID)
}

func (r *firestoreClaimRepository) Enqueue(ctx context.Context, claim *entity.ClaimRequest) error {
	claim.CreatedAt = time.Now()

	_, err := r.claimRef(claim.TransactionID).Create(ctx, claim)
	if err != nil {
		// A request for this transaction is already queued; enqueueing is
		// idempotent.
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return errors.Internal("Failed to enqueue claim request", err)
	}

	return nil
}

func (r *firestoreClaimRepository) ListPending(ctx context.Context, limit, offset int) ([]*entity.ClaimRequest, int64, error) {
	query := r.client.Collection("claim_requests").OrderBy("createdAt", firestore.Asc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count claim requests", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var claims []*entity.ClaimRequest

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate claim requests", err)
		}

		var claim entity.ClaimRequest
		if err := doc.DataTo(&claim); err != nil {
			return nil, 0, errors.Internal("Failed to parse claim request data", err)
		}
		claims = append(claims, &claim)
	}

	return claims, total, nil
}

// Claim runs the remove-if-present race inside one store transaction: the
// first agent whose removal of the claim document commits wins, and the same
// commit assigns the agent on the transaction record. Losers cause no writes.
// newly reports whether this call performed the assignment; the winning
// agent's retry sees accepted without newly.
func (r *firestoreClaimRepository) Claim(ctx context.Context, transactionID, agentID string) (bool, bool, error) {
	accepted := false
	newly := false
	txRef := r.client.Collection("transactions").Doc(transactionID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		accepted = false
		newly = false

		_, err := tx.Get(r.claimRef(transactionID))
		claimPresent := err == nil
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		txDoc, err := tx.Get(txRef)
		if err != nil {
			return err
		}

		var transaction entity.Transaction
		if err := txDoc.DataTo(&transaction); err != nil {
			return err
		}

		// A claim cannot be stolen: once an agent is set, only that agent
		// sees accepted=true again.
		if transaction.AgentID != "" {
			accepted = transaction.AgentID == agentID
			if accepted && claimPresent {
				if err := tx.Delete(r.claimRef(transactionID)); err != nil {
					return err
				}
			}
			return nil
		}

		if !claimPresent {
			return nil
		}

		if transaction.Status != entity.StatusPaymentConfirmed {
			return nil
		}

		if err := tx.Delete(r.claimRef(transactionID)); err != nil {
			return err
		}

		participants := transaction.Participants
		participants = append(participants, agentID)

		accepted = true
		newly = true
		return tx.Update(txRef, []firestore.Update{
			{Path: "agentId", Value: agentID},
			{Path: "participants", Value: participants},
			{Path: "status", Value: string(entity.StatusEscrowActive)},
			{Path: "updatedAt", Value: time.Now()},
		})
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, false, errors.NotFound("Transaction", err)
		}
		return false, false, errors.Unavailable("Failed to process claim", err)
	}

	return accepted, newly, nil
}
