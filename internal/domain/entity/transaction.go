package entity

import (
	"time"
)

type TransactionStatus string

const (
	StatusCreated          TransactionStatus = "created"
	StatusAwaitingPayment  TransactionStatus = "awaiting_payment"
	StatusSessionCreated   TransactionStatus = "session_created"
	StatusPaymentConfirmed TransactionStatus = "payment_confirmed"
	StatusEscrowActive     TransactionStatus = "escrow_active"
	StatusResolved         TransactionStatus = "resolved"
	StatusFailed           TransactionStatus = "failed"
)

// statusRank defines the forward-only ordering of the escrow lifecycle.
// StatusFailed sits outside the chain; it is reachable from any non-terminal
// status but never from a terminal one.
var statusRank = map[TransactionStatus]int{
	StatusCreated:          0,
	StatusAwaitingPayment:  1,
	StatusSessionCreated:   2,
	StatusPaymentConfirmed: 3,
	StatusEscrowActive:     4,
	StatusResolved:         5,
}

func (s TransactionStatus) Rank() int {
	if rank, ok := statusRank[s]; ok {
		return rank
	}
	return -1
}

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusFailed
}

// AtOrPast reports whether s has already reached other in the lifecycle.
func (s TransactionStatus) AtOrPast(other TransactionStatus) bool {
	return s.Rank() >= other.Rank() && other != StatusFailed
}

// CanTransition reports whether moving from s to target is a legal forward
// transition. Regressions are never legal.
func (s TransactionStatus) CanTransition(target TransactionStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusFailed {
		return true
	}
	return target.Rank() > s.Rank()
}

// MessageSummary is the denormalized mirror of the newest chat event, kept on
// the transaction document for list-view rendering. It may lag the log store
// briefly; reads repair it from the log when stale.
type MessageSummary struct {
	Text     string    `json:"text" firestore:"text"`
	SenderID string    `json:"sender_id" firestore:"senderId"`
	EventKey string    `json:"event_key" firestore:"eventKey"`
	At       time.Time `json:"at" firestore:"at"`
}

// Transaction is the authoritative record of one escrow negotiation between a
// buyer and a seller over a channel listing.
type Transaction struct {
	ID        string `json:"id" firestore:"id"`
	ListingID string `json:"listing_id" firestore:"listingId"`
	BuyerID   string `json:"buyer_id" firestore:"buyerId"`
	SellerID  string `json:"seller_id" firestore:"sellerId"`

	// Participants starts as {buyer, seller} and gains the assigned agent
	// after a successful claim.
	Participants []string `json:"participants" firestore:"participants"`

	Status TransactionStatus `json:"status" firestore:"status"`

	// FeeAmountCents is computed once and then frozen; retries observe the
	// stored value instead of recomputing.
	FeeAmountCents int64 `json:"fee_amount_cents" firestore:"feeAmountCents"`

	// CheckoutSessionID is the gateway-assigned hosted-session reference,
	// set once when the session is created.
	CheckoutSessionID string `json:"checkout_session_id,omitempty" firestore:"checkoutSessionId,omitempty"`

	// PaymentEventID is the id of the gateway event that confirmed payment.
	// A redelivery carrying the same id is a no-op.
	PaymentEventID string `json:"payment_event_id,omitempty" firestore:"paymentEventId,omitempty"`
	ChargeRef      string `json:"charge_ref,omitempty" firestore:"chargeRef,omitempty"`

	// AgentID is set exactly once by the winning claim.
	AgentID string `json:"agent_id,omitempty" firestore:"agentId,omitempty"`

	LastMessage *MessageSummary `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`

	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" firestore:"confirmedAt,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" firestore:"resolvedAt,omitempty"`
}

func (t *Transaction) IsParticipant(userID string) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

type TransactionLog struct {
	ID            string            `json:"id" firestore:"id"`
	TransactionID string            `json:"transaction_id" firestore:"transactionId"`
	Status        TransactionStatus `json:"status" firestore:"status"`
	Notes         string            `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedBy     string            `json:"created_by" firestore:"createdBy"`
	CreatedAt     time.Time         `json:"created_at" firestore:"createdAt"`
}
