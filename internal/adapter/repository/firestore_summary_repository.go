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

type firestoreSummaryRepository struct {
	client *firestore.Client
}

func NewFirestoreSummaryRepository(client *firestore.Client) repository.SummaryRepository {
	return &firestoreSummaryRepository{
		client: client,
	}
}

func (r *firestoreSummaryRepository) threadRef(userID, transactionID string) *firestore.DocumentRef {
	return r.client.Collection("chat_summaries").Doc(userID).Collection("threads").Doc(transactionID)
}

func (r *firestoreSummaryRepository) Upsert(ctx context.Context, userID string, summary *entity.ThreadSummary) error {
	summary.UpdatedAt = time.Now()

	_, err := r.threadRef(userID, summary.TransactionID).Set(ctx, summary)
	if err != nil {
		return errors.Internal("Failed to upsert thread summary", err)
	}

	return nil
}

func (r *firestoreSummaryRepository) Get(ctx context.Context, userID, transactionID string) (*entity.ThreadSummary, error) {
	doc, err := r.threadRef(userID, transactionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errors.Internal("Failed to get thread summary", err)
	}

	var summary entity.ThreadSummary
	if err := doc.DataTo(&summary); err != nil {
		return nil, errors.Internal("Failed to parse thread summary", err)
	}

	return &summary, nil
}

func (r *firestoreSummaryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ThreadSummary, int64, error) {
	query := r.client.Collection("chat_summaries").Doc(userID).Collection("threads").
		OrderBy("lastEventAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count thread summaries", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var summaries []*entity.ThreadSummary

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate thread summaries", err)
		}

		var summary entity.ThreadSummary
		if err := doc.DataTo(&summary); err != nil {
			return nil, 0, errors.Internal("Failed to parse thread summary", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, total, nil
}
