package domain

import "time"

// SessionToken is a signed bearer token handed to the client after signup or login.
type SessionToken struct {
	Value     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims is the verified payload of a session token.
type Claims struct {
	AccountID string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasRole reports whether the claims' role is a member of allowed.
func (c *Claims) HasRole(allowed ...Role) bool {
	if c == nil {
		return false
	}
	for _, r := range allowed {
		if c.Role == r {
			return true
		}
	}
	return false
}
