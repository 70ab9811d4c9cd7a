package models

import "time"

// User is a sync account. Each account owns exactly one server collection.
type User struct {
	UserID int64  `json:"-"`
	Login  string `json:"login"`

	// Password is only populated on input; it is never persisted.
	Password string `json:"-"`
	// PasswordHash is the bcrypt hash kept by the account store.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the accounts table.
func (u User) TableName() string {
	return "users"
}
