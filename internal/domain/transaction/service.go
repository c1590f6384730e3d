package transaction

import (
	"context"
	"errors"
)

// Service contains the business logic for transaction operations
type Service struct {
	repo Repository
}

// NewService creates a new transaction service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTransaction creates a new transaction with validation
func (s *Service) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// GetTransaction retrieves a transaction by ID and verifies user ownership
func (s *Service) GetTransaction(ctx context.Context, id string, userID int64) (*Transaction, error) {
	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ErrForbidden
	}
	return tx, nil
}

// ListTransactions retrieves a page of the user's transactions
func (s *Service) ListTransactions(ctx context.Context, userID int64, filter ListFilter, limit, offset int) ([]*Transaction, int64, error) {
	if userID <= 0 {
		return nil, 0, errors.New("valid user ID is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := s.repo.ListByUserID(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByUserID(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// UpdateTransaction updates a transaction after verifying ownership
func (s *Service) UpdateTransaction(ctx context.Context, id string, userID int64, params UpdateParams) (*Transaction, error) {
	existing, err := s.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Type != nil && *params.Type != TypeIncome && *params.Type != TypeExpense {
		return nil, errors.New("type must be income or expense")
	}

	// Keep the stored amount's sign consistent with the effective type.
	effectiveType := existing.Type
	if params.Type != nil {
		effectiveType = *params.Type
	}
	if params.Amount != nil {
		signed := signedAmount(*params.Amount, effectiveType)
		params.Amount = &signed
	} else if params.Type != nil && *params.Type != existing.Type {
		signed := signedAmount(existing.Amount, effectiveType)
		params.Amount = &signed
	}

	return s.repo.Update(ctx, id, params)
}

// DeleteTransaction deletes a transaction after verifying ownership
func (s *Service) DeleteTransaction(ctx context.Context, id string, userID int64) error {
	if _, err := s.GetTransaction(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
