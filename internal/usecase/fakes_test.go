package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"channelmarket/internal/domain/entity"
	"channelmarket/internal/domain/service"
	"channelmarket/pkg/errors"
)

// In-memory repository doubles with the same conditional-update semantics as
// the Firestore implementations, so usecase tests exercise the real race and
// idempotence rules.

type memTransactionRepo struct {
	mu           sync.Mutex
	transactions map[string]*entity.Transaction
	logs         []*entity.TransactionLog

	failSetLastMessage bool
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{transactions: make(map[string]*entity.Transaction)}
}

func copyTransaction(t *entity.Transaction) *entity.Transaction {
	clone := *t
	clone.Participants = append([]string(nil), t.Participants...)
	if t.LastMessage != nil {
		summary := *t.LastMessage
		clone.LastMessage = &summary
	}
	return &clone
}

func (r *memTransactionRepo) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if _, exists := r.transactions[transaction.ID]; exists {
		return errors.Conflict("Transaction already exists", nil)
	}

	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	r.transactions[transaction.ID] = copyTransaction(transaction)
	return nil
}

func (r *memTransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}
	return copyTransaction(transaction), nil
}

func (r *memTransactionRepo) ListByUserID(ctx context.Context, userID, role string, filterStatus entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*entity.Transaction
	for _, transaction := range r.transactions {
		var field string
		switch role {
		case "buyer":
			field = transaction.BuyerID
		case "seller":
			field = transaction.SellerID
		case "agent":
			field = transaction.AgentID
		default:
			return nil, 0, errors.BadRequest("Invalid role", nil)
		}
		if field != userID {
			continue
		}
		if filterStatus != "" && transaction.Status != filterStatus {
			continue
		}
		matches = append(matches, copyTransaction(transaction))
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	if offset >= len(matches) {
		return nil, total, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}

func (r *memTransactionRepo) SetFeeAmount(ctx context.Context, id string, amountCents int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return 0, errors.NotFound("Transaction", nil)
	}
	if transaction.FeeAmountCents > 0 {
		return transaction.FeeAmountCents, nil
	}
	transaction.FeeAmountCents = amountCents
	transaction.UpdatedAt = time.Now()
	return amountCents, nil
}

func (r *memTransactionRepo) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return errors.NotFound("Transaction", nil)
	}
	if transaction.CheckoutSessionID == sessionID {
		return nil
	}
	if transaction.CheckoutSessionID != "" {
		return errors.Conflict("Transaction already has a checkout session", nil)
	}
	if !transaction.Status.CanTransition(entity.StatusSessionCreated) {
		return errors.Conflict("Transaction is not awaiting a checkout session", nil)
	}
	transaction.CheckoutSessionID = sessionID
	transaction.Status = entity.StatusSessionCreated
	transaction.UpdatedAt = time.Now()
	return nil
}

func (r *memTransactionRepo) ConfirmPayment(ctx context.Context, id, eventID, chargeRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return false, errors.NotFound("Transaction", nil)
	}
	if transaction.PaymentEventID == eventID || transaction.Status.AtOrPast(entity.StatusPaymentConfirmed) {
		return false, nil
	}
	if transaction.Status != entity.StatusSessionCreated && transaction.Status != entity.StatusAwaitingPayment {
		return false, nil
	}

	now := time.Now()
	transaction.Status = entity.StatusPaymentConfirmed
	transaction.PaymentEventID = eventID
	transaction.ChargeRef = chargeRef
	transaction.ConfirmedAt = &now
	transaction.UpdatedAt = now
	return true, nil
}

func (r *memTransactionRepo) UpdateStatus(ctx context.Context, id string, from []entity.TransactionStatus, to entity.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return errors.NotFound("Transaction", nil)
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
	transaction.Status = to
	transaction.UpdatedAt = now
	if to == entity.StatusResolved {
		transaction.ResolvedAt = &now
	}
	return nil
}

func (r *memTransactionRepo) SetLastMessage(ctx context.Context, id string, summary *entity.MessageSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSetLastMessage {
		return errors.Unavailable("store unavailable", nil)
	}

	transaction, ok := r.transactions[id]
	if !ok {
		return errors.NotFound("Transaction", nil)
	}
	clone := *summary
	transaction.LastMessage = &clone
	transaction.UpdatedAt = time.Now()
	return nil
}

func (r *memTransactionRepo) CreateLog(ctx context.Context, log *entity.TransactionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()
	clone := *log
	r.logs = append(r.logs, &clone)
	return nil
}

func (r *memTransactionRepo) ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var logs []*entity.TransactionLog
	for _, log := range r.logs {
		if log.TransactionID == transactionID {
			clone := *log
			logs = append(logs, &clone)
		}
	}
	return logs, nil
}

type memChatLogRepo struct {
	mu     sync.Mutex
	events map[string][]*entity.ChatEvent
	nextID int

	failAppend bool
}

func newMemChatLogRepo() *memChatLogRepo {
	return &memChatLogRepo{events: make(map[string][]*entity.ChatEvent)}
}

func (r *memChatLogRepo) Append(ctx context.Context, event *entity.ChatEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAppend {
		return "", errors.Unavailable("log store unavailable", nil)
	}

	r.nextID++
	event.ServerKey = fmt.Sprintf("-K%08d", r.nextID)
	event.ServerTimestamp = time.Now()

	clone := *event
	r.events[event.TransactionID] = append(r.events[event.TransactionID], &clone)
	return event.ServerKey, nil
}

func (r *memChatLogRepo) List(ctx context.Context, transactionID string, limit int) ([]*entity.ChatEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events[transactionID]
	if limit > 0 && limit < len(events) {
		events = events[len(events)-limit:]
	}

	out := make([]*entity.ChatEvent, 0, len(events))
	for _, event := range events {
		clone := *event
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memChatLogRepo) Latest(ctx context.Context, transactionID string) (*entity.ChatEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events[transactionID]
	if len(events) == 0 {
		return nil, nil
	}
	clone := *events[len(events)-1]
	return &clone, nil
}

type memSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]map[string]*entity.ThreadSummary // userID -> transactionID

	failUpsertFor map[string]bool
}

func newMemSummaryRepo() *memSummaryRepo {
	return &memSummaryRepo{
		summaries:     make(map[string]map[string]*entity.ThreadSummary),
		failUpsertFor: make(map[string]bool),
	}
}

func (r *memSummaryRepo) Upsert(ctx context.Context, userID string, summary *entity.ThreadSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpsertFor[userID] {
		return errors.Unavailable("summary store unavailable", nil)
	}

	if r.summaries[userID] == nil {
		r.summaries[userID] = make(map[string]*entity.ThreadSummary)
	}
	clone := *summary
	r.summaries[userID][summary.TransactionID] = &clone
	return nil
}

func (r *memSummaryRepo) Get(ctx context.Context, userID, transactionID string) (*entity.ThreadSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary, ok := r.summaries[userID][transactionID]
	if !ok {
		return nil, nil
	}
	clone := *summary
	return &clone, nil
}

func (r *memSummaryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.ThreadSummary, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.ThreadSummary
	for _, summary := range r.summaries[userID] {
		clone := *summary
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastEventAt.After(out[j].LastEventAt)
	})

	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type memClaimRepo struct {
	mu              sync.Mutex
	claims          map[string]*entity.ClaimRequest
	transactionRepo *memTransactionRepo
}

func newMemClaimRepo(transactionRepo *memTransactionRepo) *memClaimRepo {
	return &memClaimRepo{
		claims:          make(map[string]*entity.ClaimRequest),
		transactionRepo: transactionRepo,
	}
}

func (r *memClaimRepo) Enqueue(ctx context.Context, claim *entity.ClaimRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.TransactionID]; exists {
		return nil
	}
	clone := *claim
	r.claims[claim.TransactionID] = &clone
	return nil
}

func (r *memClaimRepo) ListPending(ctx context.Context, limit, offset int) ([]*entity.ClaimRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.ClaimRequest
	for _, claim := range r.claims {
		clone := *claim
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *memClaimRepo) Claim(ctx context.Context, transactionID, agentID string) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactionRepo.mu.Lock()
	defer r.transactionRepo.mu.Unlock()

	transaction, ok := r.transactionRepo.transactions[transactionID]
	if !ok {
		return false, false, errors.NotFound("Transaction", nil)
	}

	if transaction.AgentID != "" {
		delete(r.claims, transactionID)
		return transaction.AgentID == agentID, false, nil
	}
	if _, exists := r.claims[transactionID]; !exists {
		return false, false, nil
	}
	if transaction.Status != entity.StatusPaymentConfirmed {
		return false, false, nil
	}

	delete(r.claims, transactionID)
	transaction.AgentID = agentID
	transaction.Participants = append(transaction.Participants, agentID)
	transaction.Status = entity.StatusEscrowActive
	transaction.UpdatedAt = time.Now()
	return true, true, nil
}

type memListingRepo struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing

	failGet bool
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[string]*entity.Listing)}
}

func (r *memListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	clone := *listing
	r.listings[listing.ID] = &clone
	return nil
}

func (r *memListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failGet {
		return nil, errors.Unavailable("listing store unavailable", nil)
	}

	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	clone := *listing
	return &clone, nil
}

func (r *memListingRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Listing
	for _, listing := range r.listings {
		if platform, ok := filter["platform"].(string); ok && listing.Platform != platform {
			continue
		}
		if status, ok := filter["status"].(string); ok && listing.Status != status {
			continue
		}
		clone := *listing
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *memListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	clone := *listing
	r.listings[listing.ID] = &clone
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *memUserRepo) SetRole(ctx context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Role = role
	return nil
}

type memAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.AdminAlert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{}
}

func (r *memAlertRepo) Create(ctx context.Context, alert *entity.AdminAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()
	clone := *alert
	r.alerts = append(r.alerts, &clone)
	return nil
}

func (r *memAlertRepo) ListRecent(ctx context.Context, limit, offset int) ([]*entity.AdminAlert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.AdminAlert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		clone := *alert
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

// fakeGateway stands in for the hosted checkout provider.
type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*service.CheckoutSession
	nextID   int

	failCreate  bool
	verifyEvent *service.PaymentEvent
	verifyErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*service.CheckoutSession)}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failCreate {
		return nil, fmt.Errorf("gateway timeout")
	}

	g.nextID++
	session := &service.CheckoutSession{
		SessionID:   fmt.Sprintf("cs_test_%d", g.nextID),
		CheckoutURL: fmt.Sprintf("https://checkout.example.com/c/%d", g.nextID),
	}
	g.sessions[session.SessionID] = session
	return session, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*service.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %s", sessionID)
	}
	return session, nil
}

func (g *fakeGateway) VerifyEvent(payload []byte, sigHeader string) (*service.PaymentEvent, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyEvent, nil
}
