package transaction

import (
	"context"
	"sync"

	"plata/internal/domain/movement"
)

// DefaultWorkerCount is the default number of concurrent workers for batch
// operations run from the admin CLI.
const DefaultWorkerCount = 4

// BatchOutcome is the per-user result of a batch import run.
type BatchOutcome struct {
	Result *ImportResult
	Err    error
}

// BatchImporter runs provider imports for many users concurrently.
type BatchImporter struct {
	importer    *ImporterService
	workerCount int
}

// NewBatchImporter creates a batch importer with a custom worker count.
func NewBatchImporter(importer *ImporterService, workerCount int) *BatchImporter {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &BatchImporter{importer: importer, workerCount: workerCount}
}

type batchImportJob struct {
	userID int64
}

type batchImportResult struct {
	userID  int64
	outcome BatchOutcome
}

// ImportForUsers runs ImportMovements for each user using a worker pool and
// returns the per-user outcomes. A failed user never aborts the others.
func (b *BatchImporter) ImportForUsers(ctx context.Context, userIDs []int64, limit int) map[int64]BatchOutcome {
	outcomes := make(map[int64]BatchOutcome, len(userIDs))
	if len(userIDs) == 0 {
		return outcomes
	}

	jobs := make(chan batchImportJob, len(userIDs))
	results := make(chan batchImportResult, len(userIDs))

	var wg sync.WaitGroup
	for i := 0; i < b.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					results <- batchImportResult{userID: job.userID, outcome: BatchOutcome{Err: ctx.Err()}}
					continue
				}
				res, err := b.importer.ImportMovements(ctx, job.userID, limit)
				results <- batchImportResult{userID: job.userID, outcome: BatchOutcome{Result: res, Err: err}}
			}
		}()
	}

	for _, id := range userIDs {
		jobs <- batchImportJob{userID: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		outcomes[r.userID] = r.outcome
	}
	return outcomes
}

// RecategorizeResult summarizes one recategorization run.
type RecategorizeResult struct {
	Checked int
	Updated int
}

// RecategorizeService reapplies the keyword categorization rules to stored
// transactions, for when the rules change after data was imported.
type RecategorizeService struct {
	repo Repository
}

// NewRecategorizeService creates a recategorization service.
func NewRecategorizeService(repo Repository) *RecategorizeService {
	return &RecategorizeService{repo: repo}
}

// RecategorizeUser recomputes the category of every imported transaction for
// a user and persists the ones that changed. Manual transactions carry
// user-chosen categories and are never touched.
func (s *RecategorizeService) RecategorizeUser(ctx context.Context, userID int64) (*RecategorizeResult, error) {
	txs, err := s.repo.ListAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &RecategorizeResult{}
	for _, tx := range txs {
		if tx.Source == SourceManual {
			continue
		}
		result.Checked++

		// Categorize works on the provider's credit/debit vocabulary.
		movementType := "debit"
		if tx.Type == TypeIncome {
			movementType = "credit"
		}
		category := movement.Categorize(movementType, tx.Description)
		if category == tx.Category {
			continue
		}

		if _, err := s.repo.Update(ctx, tx.ID, UpdateParams{Category: &category}); err != nil {
			return result, err
		}
		result.Updated++
	}
	return result, nil
}
