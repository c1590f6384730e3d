package transaction

import (
	"context"
	"fmt"

	"plata/internal/domain/connection"
	"plata/internal/domain/movement"
)

// MovementSource provides pages of provider account movements. Satisfied by
// the connection lifecycle service.
type MovementSource interface {
	Movements(ctx context.Context, userID int64, limit, offset int) (*connection.MovementsPage, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// ImporterService pulls provider movements and upserts them as transactions.
// Runs synchronously inside the requesting call; there is no background
// scheduler.
type ImporterService struct {
	repo   Repository
	source MovementSource
}

// NewImporterService creates a movement importer.
func NewImporterService(repo Repository, source MovementSource) *ImporterService {
	return &ImporterService{repo: repo, source: source}
}

const importPageSize = 50

// ImportMovements fetches up to limit movements and upserts each as a
// transaction keyed by its provider id, so repeated imports are idempotent.
func (s *ImporterService) ImportMovements(ctx context.Context, userID int64, limit int) (*ImportResult, error) {
	if limit <= 0 || limit > 500 {
		limit = importPageSize
	}

	page, err := s.source.Movements(ctx, userID, limit, 0)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Total: page.Paging.Total}
	for _, raw := range page.Results {
		m := movement.Normalize(raw, movement.SourceMercadoPago)

		amount := m.Amount
		if m.Type == movement.TypeExpense {
			amount = -amount
		}

		_, err := s.repo.Upsert(ctx, UpsertParams{
			ID:          m.ID,
			UserID:      userID,
			Amount:      amount,
			Type:        m.Type,
			Category:    m.Category,
			Description: m.Description,
			Date:        m.Date,
			Source:      m.Source,
		})
		if err != nil {
			return nil, fmt.Errorf("importing movement %s: %w", m.ID, err)
		}
		result.Imported++
	}
	return result, nil
}
