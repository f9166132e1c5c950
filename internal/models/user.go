package models

import "time"

// User is an account record. Guests get generated usernames and no credentials.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	PasswordHash  string    `json:"-"`
	IsGuest       bool      `json:"is_guest"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// PasswordResetToken is stored in the kv store under passwordReset_{token}
type PasswordResetToken struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// IsExpired reports whether the reset token has passed its expiry
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
