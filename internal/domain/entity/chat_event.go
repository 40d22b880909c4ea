package entity

import "time"

// EventKind is the tagged discriminator for chat events. Every renderer and
// processor switches on it exhaustively; there are no optional feature flags
// on the event itself.
type EventKind string

const (
	KindPlainMessage        EventKind = "plain_message"
	KindSystemNotice        EventKind = "system_notice"
	KindPurchaseRequest     EventKind = "purchase_request"
	KindPaymentConfirmation EventKind = "payment_confirmation"
	KindAgentJoined         EventKind = "agent_joined"
)

// SystemSenderID is used for events not authored by a participant.
const SystemSenderID = "system"

// ChatEvent is one entry in the append-only log for a transaction. ServerKey
// is assigned by the log store on append and defines the ordering; events are
// never mutated or deleted.
type ChatEvent struct {
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	Kind          EventKind `json:"kind"`

	// Exactly one payload is set, matching Kind.
	Plain        *PlainMessagePayload    `json:"plain,omitempty"`
	Notice       *SystemNoticePayload    `json:"notice,omitempty"`
	Purchase     *PurchaseRequestPayload `json:"purchase,omitempty"`
	Confirmation *ConfirmationPayload    `json:"confirmation,omitempty"`
	AgentJoin    *AgentJoinedPayload     `json:"agent_join,omitempty"`

	ServerKey       string    `json:"server_key,omitempty"`
	ServerTimestamp time.Time `json:"server_timestamp"`
}

type PlainMessagePayload struct {
	Text string `json:"text"`
}

type SystemNoticePayload struct {
	Text string `json:"text"`
}

type PurchaseRequestPayload struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message,omitempty"`
}

type ConfirmationPayload struct {
	FeeAmountCents int64  `json:"fee_amount_cents"`
	ChargeRef      string `json:"charge_ref,omitempty"`
}

type AgentJoinedPayload struct {
	AgentID string `json:"agent_id"`
}

// SummaryText returns the line shown in list views for this event.
func (e *ChatEvent) SummaryText() string {
	switch e.Kind {
	case KindPlainMessage:
		if e.Plain != nil {
			return e.Plain.Text
		}
	case KindSystemNotice:
		if e.Notice != nil {
			return e.Notice.Text
		}
	case KindPurchaseRequest:
		if e.Purchase != nil && e.Purchase.Message != "" {
			return e.Purchase.Message
		}
		return "Purchase requested"
	case KindPaymentConfirmation:
		return "Payment confirmed"
	case KindAgentJoined:
		return "Escrow agent joined"
	}
	return ""
}
