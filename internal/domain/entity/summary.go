package entity

import "time"

// ThreadSummary is the per-user denormalized view of one transaction thread,
// backing the inbox list. Rebuilt from the log store whenever a read finds it
// absent or older than the newest log entry.
type ThreadSummary struct {
	TransactionID string    `json:"transaction_id" firestore:"transactionId"`
	LastText      string    `json:"last_text" firestore:"lastText"`
	LastSenderID  string    `json:"last_sender_id" firestore:"lastSenderId"`
	LastEventKey  string    `json:"last_event_key" firestore:"lastEventKey"`
	LastEventAt   time.Time `json:"last_event_at" firestore:"lastEventAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}
