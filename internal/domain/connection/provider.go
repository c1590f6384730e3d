package connection

import (
	"context"
	"encoding/json"
	"time"
)

// TokenResponse is the normalized result of a code exchange or refresh call.
// RefreshToken may be empty on refresh when the provider does not rotate it.
type TokenResponse struct {
	AccessToken    string
	RefreshToken   string
	TokenType      string
	Scope          string
	ExpiresIn      int
	ProviderUserID int64
}

// UserInfo is the provider account profile.
type UserInfo struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Paging mirrors the provider's search pagination envelope.
type Paging struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Payment is a provider payment search result.
type Payment struct {
	ID                int64     `json:"id"`
	Amount            float64   `json:"amount"`
	Description       string    `json:"description"`
	DateCreated       time.Time `json:"dateCreated"`
	Status            string    `json:"status"`
	PaymentTypeID     string    `json:"paymentTypeId"`
	PaymentMethodID   string    `json:"paymentMethodId"`
	ExternalReference string    `json:"externalReference,omitempty"`
}

// PaymentsPage is one page of payment search results.
type PaymentsPage struct {
	Results []Payment `json:"results"`
	Paging  Paging    `json:"paging"`
}

// RawMovement is an account movement as reported by the provider, before
// local normalization.
type RawMovement struct {
	ID          int64
	Type        string // "credit" or "debit"
	Amount      float64
	Description string
	CreatedAt   time.Time
	Raw         json.RawMessage
}

// MovementsPage is one page of movement search results.
type MovementsPage struct {
	Results []RawMovement
	Paging  Paging
}

// ProviderClient wraps the remote calls the lifecycle manager needs. All
// failures are returned as classified *Error values.
type ProviderClient interface {
	// AuthorizationURL builds the provider consent URL for a connect attempt.
	AuthorizationURL(state string) string
	// ExchangeCode trades a single-use authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)
	// Refresh mints a new access token from a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	// UserInfo fetches the provider account profile.
	UserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
	// SearchPayments fetches a page of payment history.
	SearchPayments(ctx context.Context, accessToken string, limit, offset int) (*PaymentsPage, error)
	// SearchMovements fetches a page of account movements.
	SearchMovements(ctx context.Context, accessToken string, limit, offset int) (*MovementsPage, error)
}
