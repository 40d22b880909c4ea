package entity

import "time"

// Listing is a social-media channel offered for sale.
type Listing struct {
	ID          string `json:"id" firestore:"id"`
	SellerID    string `json:"seller_id" firestore:"sellerId"`
	Title       string `json:"title" firestore:"title"`
	Platform    string `json:"platform" firestore:"platform"` // "youtube", "telegram", "instagram", "tiktok"
	Handle      string `json:"handle" firestore:"handle"`
	Subscribers int64  `json:"subscribers" firestore:"subscribers"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`

	// PriceCents is the asking price in the minor currency unit.
	PriceCents int64 `json:"price_cents" firestore:"priceCents"`

	Status string `json:"status" firestore:"status"` // "active", "reserved", "sold", "delisted"

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
