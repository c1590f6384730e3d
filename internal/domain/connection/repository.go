package connection

import "context"

// TokenRepository is the durable keyed store for TokenRecord, one record per
// user. Only the lifecycle Service writes through it.
type TokenRepository interface {
	// Get returns the record for the user, or (nil, nil) when none exists.
	Get(ctx context.Context, userID int64) (*TokenRecord, error)
	// Upsert replaces any existing record for the user.
	Upsert(ctx context.Context, record *TokenRecord) error
	// Delete removes the record for the user. Deleting a non-existent
	// record succeeds.
	Delete(ctx context.Context, userID int64) error
}
