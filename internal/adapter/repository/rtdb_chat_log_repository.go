package repository

import (
	"context"
	"time"

	"firebase.google.com/go/v4/db"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/pkg/errors"
)

// rtdbChatLogRepository stores chat events in the Realtime Database under
// chat-events/{transactionID}. Push keys are server-assigned and
// chronologically ordered, which is the ordering contract for the thread.
type rtdbChatLogRepository struct {
	client *db.Client
}

func NewRTDBChatLogRepository(client *db.Client) repository.ChatLogRepository {
	return &rtdbChatLogRepository{
		client: client,
	}
}

func (r *rtdbChatLogRepository) threadRef(transactionID string) *db.Ref {
	return r.client.NewRef("chat-events/" + transactionID)
}

func (r *rtdbChatLogRepository) Append(ctx context.Context, event *entity.ChatEvent) (string, error) {
	if event.ServerTimestamp.IsZero() {
		event.ServerTimestamp = time.Now()
	}

	ref, err := r.threadRef(event.TransactionID).Push(ctx, event)
	if err != nil {
		return "", errors.Unavailable("Failed to append chat event", err)
	}

	event.ServerKey = ref.Key
	return ref.Key, nil
}

func (r *rtdbChatLogRepository) List(ctx context.Context, transactionID string, limit int) ([]*entity.ChatEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	nodes, err := r.threadRef(transactionID).OrderByKey().LimitToLast(limit).GetOrdered(ctx)
	if err != nil {
		return nil, errors.Unavailable("Failed to read chat events", err)
	}

	events := make([]*entity.ChatEvent, 0, len(nodes))
	for _, node := range nodes {
		var event entity.ChatEvent
		if err := node.Unmarshal(&event); err != nil {
			return nil, errors.Internal("Failed to parse chat event", err)
		}
		event.ServerKey = node.Key()
		events = append(events, &event)
	}

	return events, nil
}

func (r *rtdbChatLogRepository) Latest(ctx context.Context, transactionID string) (*entity.ChatEvent, error) {
	nodes, err := r.threadRef(transactionID).OrderByKey().LimitToLast(1).GetOrdered(ctx)
	if err != nil {
		return nil, errors.Unavailable("Failed to read latest chat event", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	var event entity.ChatEvent
	if err := nodes[0].Unmarshal(&event); err != nil {
		return nil, errors.Internal("Failed to parse chat event", err)
	}
	event.ServerKey = nodes[0].Key()

	return &event, nil
}
