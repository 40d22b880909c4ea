package entity

import "time"

// AdminAlert is a fire-and-forget "needs human attention" record consumed by
// the external admin UI.
type AdminAlert struct {
	ID            string    `json:"id" firestore:"id"`
	TransactionID string    `json:"transaction_id" firestore:"transactionId"`
	Kind          string    `json:"kind" firestore:"kind"` // "payment_confirmed", "claim_requested"
	Message       string    `json:"message" firestore:"message"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}
