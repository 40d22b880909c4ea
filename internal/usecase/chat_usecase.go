package usecase

import (
	"context"
	"time"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/repository"
	"channelmarket/internal/infrastructure/ratelimit"
	"channelmarket/internal/infrastructure/realtime"
	"channelmarket/pkg/errors"
	"channelmarket/pkg/logger"
)

// ChatUseCase coordinates the two stores behind a conversation: the
// append-only log (source of truth for content and ordering) and the
// denormalized summaries on the transaction record and per-user inbox. The
// two writes are not transactional together; the log write happens first and
// summary writes are last-write-wins updates that repair-on-read can redo.
type ChatUseCase struct {
	logRepo         repository.ChatLogRepository
	transactionRepo repository.TransactionRepository
	summaryRepo     repository.SummaryRepository
	hub             *realtime.Hub
	rateLimiter     *ratelimit.RateLimiter
}

func NewChatUseCase(
	logRepo repository.ChatLogRepository,
	transactionRepo repository.TransactionRepository,
	summaryRepo repository.SummaryRepository,
	hub *realtime.Hub,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		logRepo:         logRepo,
		transactionRepo: transactionRepo,
		summaryRepo:     summaryRepo,
		hub:             hub,
		rateLimiter:     rateLimiter,
	}
}

// PostMessage appends a participant's plain message to a transaction thread.
func (uc *ChatUseCase) PostMessage(ctx context.Context, userID, transactionID, text string) (*entity.ChatEvent, error) {
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	allowed, _ := uc.rateLimiter.Allow(userID, "post_message")
	if !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	event := &entity.ChatEvent{
		TransactionID: transactionID,
		SenderID:      userID,
		Kind:          entity.KindPlainMessage,
		Plain:         &entity.PlainMessagePayload{Text: text},
	}

	if err := uc.AppendAndSync(ctx, transaction, event); err != nil {
		return nil, err
	}

	return event, nil
}

// AppendAndSync writes the event to the log store, then denormalizes it onto
// the transaction record and each participant's inbox summary. Only the log
// append is fatal: once the event is durable there, summary failures are
// logged and healed by the next read.
func (uc *ChatUseCase) AppendAndSync(ctx context.Context, transaction *entity.Transaction, event *entity.ChatEvent) error {
	key, err := uc.logRepo.Append(ctx, event)
	if err != nil {
		return err
	}

	summary := summaryFromEvent(event, key)

	if err := uc.transactionRepo.SetLastMessage(ctx, transaction.ID, summary); err != nil {
		logger.LogSyncError(transaction.ID, "transaction_summary", err)
	}

	for _, participantID := range transaction.Participants {
		threadSummary := threadSummaryFromEvent(transaction.ID, event, key)
		if err := uc.summaryRepo.Upsert(ctx, participantID, threadSummary); err != nil {
			logger.LogSyncError(transaction.ID, "user_summary:"+participantID, err)
		}
	}

	uc.hub.BroadcastEvent(transaction.ID, map[string]interface{}{
		"type":           "chat_event",
		"transaction_id": transaction.ID,
		"event":          event,
	}, event.SenderID)

	return nil
}

// ListMessages returns the newest events of a thread and opportunistically
// repairs stale denormalized summaries against the log.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, transactionID string, limit int) ([]*entity.ChatEvent, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	events, err := uc.logRepo.List(ctx, transactionID, limit)
	if err != nil {
		return nil, err
	}

	if len(events) > 0 {
		uc.repairIfStale(ctx, transaction, userID, events[len(events)-1])
	}

	return events, nil
}

// GetInbox lists a user's thread summaries, newest activity first.
func (uc *ChatUseCase) GetInbox(ctx context.Context, userID string, limit, offset int) ([]*entity.ThreadSummary, int64, error) {
	return uc.summaryRepo.ListByUser(ctx, userID, limit, offset)
}

// OpenThread is the participant's entry into a conversation view. Besides
// returning the transaction it runs the repair-on-read pass, so a summary
// dropped by a partial dual write converges as soon as anyone looks.
func (uc *ChatUseCase) OpenThread(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !transaction.IsParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this transaction", nil)
	}

	latest, err := uc.logRepo.Latest(ctx, transactionID)
	if err != nil {
		logger.Warn("Repair-on-read skipped for transaction %s: %v", transactionID, err)
		return transaction, nil
	}
	if latest != nil {
		uc.repairIfStale(ctx, transaction, userID, latest)
	}

	return transaction, nil
}

// repairIfStale recomputes denormalized summaries from the log's newest
// event. Redundant runs are harmless: every write is last-write-wins keyed by
// transaction id and lands on the same value.
func (uc *ChatUseCase) repairIfStale(ctx context.Context, transaction *entity.Transaction, readerID string, latest *entity.ChatEvent) {
	stale := transaction.LastMessage == nil || transaction.LastMessage.EventKey != latest.ServerKey

	if stale {
		logger.Info("Repairing stale summary for transaction %s (key %s)", transaction.ID, latest.ServerKey)

		summary := summaryFromEvent(latest, latest.ServerKey)
		if err := uc.transactionRepo.SetLastMessage(ctx, transaction.ID, summary); err != nil {
			logger.LogSyncError(transaction.ID, "repair_transaction_summary", err)
		}
		transaction.LastMessage = summary

		for _, participantID := range transaction.Participants {
			threadSummary := threadSummaryFromEvent(transaction.ID, latest, latest.ServerKey)
			if err := uc.summaryRepo.Upsert(ctx, participantID, threadSummary); err != nil {
				logger.LogSyncError(transaction.ID, "repair_user_summary:"+participantID, err)
			}
		}
		return
	}

	// The record is current; still make sure the reader's own inbox entry
	// caught up.
	existing, err := uc.summaryRepo.Get(ctx, readerID, transaction.ID)
	if err != nil {
		logger.LogSyncError(transaction.ID, "repair_check:"+readerID, err)
		return
	}
	if existing == nil || existing.LastEventKey != latest.ServerKey {
		threadSummary := threadSummaryFromEvent(transaction.ID, latest, latest.ServerKey)
		if err := uc.summaryRepo.Upsert(ctx, readerID, threadSummary); err != nil {
			logger.LogSyncError(transaction.ID, "repair_user_summary:"+readerID, err)
		}
	}
}

func summaryFromEvent(event *entity.ChatEvent, key string) *entity.MessageSummary {
	return &entity.MessageSummary{
		Text:     event.SummaryText(),
		SenderID: event.SenderID,
		EventKey: key,
		At:       event.ServerTimestamp,
	}
}

func threadSummaryFromEvent(transactionID string, event *entity.ChatEvent, key string) *entity.ThreadSummary {
	return &entity.ThreadSummary{
		TransactionID: transactionID,
		LastText:      event.SummaryText(),
		LastSenderID:  event.SenderID,
		LastEventKey:  key,
		LastEventAt:   event.ServerTimestamp,
		UpdatedAt:     time.Now(),
	}
}
