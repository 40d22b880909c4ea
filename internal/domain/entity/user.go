package entity

import "time"

// User mirrors the Firebase Auth account with marketplace-specific fields.
// Role is a per-user record checked through the same store as everything
// else; there is no process-wide privileged-user list.
type User struct {
	ID        string    `json:"id" firestore:"id"`
	Username  string    `json:"username" firestore:"username"`
	Email     string    `json:"email" firestore:"email"`
	Role      string    `json:"role" firestore:"role"` // "", "agent", "admin"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAgent() bool {
	return u.Role == "agent" || u.Role == "admin"
}
