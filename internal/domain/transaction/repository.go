package transaction

import "context"

// Repository defines the interface for transaction data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	// GetByID returns ErrTransactionNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*Transaction, error)
	// ListByUserID returns transactions ordered by date descending.
	ListByUserID(ctx context.Context, userID int64, filter ListFilter, limit, offset int) ([]*Transaction, error)
	CountByUserID(ctx context.Context, userID int64, filter ListFilter) (int64, error)
	// ListAllByUserID returns every transaction for the user, date descending.
	// Dashboard aggregation walks the full set.
	ListAllByUserID(ctx context.Context, userID int64) ([]*Transaction, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Transaction, error)
	Delete(ctx context.Context, id string) error
	// Upsert inserts or replaces by ID; used by the provider import.
	Upsert(ctx context.Context, params UpsertParams) (*Transaction, error)
}
