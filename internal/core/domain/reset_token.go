package domain

import "time"

// ResetTokenRetention is how long an expired reset token is kept so that
// confirming it still reports expiry rather than an unknown token.
const ResetTokenRetention = 24 * time.Hour

// ResetToken is the stored half of a password-reset credential. Only the
// fingerprint of the value handed to the user is persisted.
type ResetToken struct {
	ID         string
	AccountID  string
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (t *ResetToken) Consumed() bool { return t.ConsumedAt != nil }

func (t *ResetToken) Expired(at time.Time) bool { return !at.Before(t.ExpiresAt) }

// ResetDelivery is what the delivery collaborator receives for one reset request.
type ResetDelivery struct {
	AccountID string
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
}
