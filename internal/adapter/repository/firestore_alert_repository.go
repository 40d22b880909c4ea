package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
)

type firestoreAlertRepository struct {
	client *firestore.Client
}

func NewFirestoreAlertRepository(client *firestore.Client) repository.AlertRepository {
	return &firestoreAlertRepository{
		client: client,
	}
}

func (r *firestoreAlertRepository) Create(ctx context.Context, alert *entity.AdminAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()

	_, err := r.client.Collection("admin_alerts").Doc(alert.ID).Set(ctx, alert)
	if err != nil {
		return errors.Internal("Failed to create admin alert", err)
	}

	return nil
}

func (r *firestoreAlertRepository) ListRecent(ctx context.Context, limit, offset int) ([]*entity.AdminAlert, int64, error) {
	query := r.client.Collection("admin_alerts").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count admin alerts", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var alerts []*entity.AdminAlert

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate admin alerts", err)
		}

		var alert entity.AdminAlert
		if err := doc.DataTo(&alert); err != nil {
			return nil, 0, errors.Internal("Failed to parse admin alert data", err)
		}
		alerts = append(alerts, &alert)
	}

	return alerts, total, nil
}
