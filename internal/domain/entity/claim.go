package entity

import "time"

// ClaimRequest asks for an escrow agent to be assigned to a transaction.
// Keyed by transaction id; removed atomically when the first agent claims it.
type ClaimRequest struct {
	TransactionID string    `json:"transaction_id" firestore:"transactionId"`
	RequestedBy   string    `json:"requested_by" firestore:"requestedBy"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}
