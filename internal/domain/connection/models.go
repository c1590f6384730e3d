package connection

import (
	"time"
)

// TokenRecord is the stored provider credential pair for one local user.
// At most one record exists per user; a new grant fully replaces the old
// record so stale refresh tokens never linger.
type TokenRecord struct {
	UserID         int64     `json:"userId"`
	ProviderUserID int64     `json:"providerUserId"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenType      string    `json:"tokenType"`
	Scope          string    `json:"scope"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Expired reports whether the access token is past its expiry. The
// comparison is strict; no clock-skew margin is applied.
func (r *TokenRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Status is the connection state exposed to the dashboard.
type Status struct {
	Connected      bool       `json:"connected"`
	Configured     bool       `json:"configured"`
	ProviderUserID int64      `json:"providerUserId,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}
