package transaction

import (
	"errors"
	"time"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("transaction does not belong to user")
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	SourceManual = "manual"
)

type Transaction struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	Amount      float64   `json:"amount"` // signed: positive=income, negative=expense
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateParams struct {
	UserID      int64
	Amount      float64
	Type        string
	Category    string
	Description string
	Date        time.Time
	Source      string
}

// Validate checks and normalizes the creation parameters: the stored amount
// is always signed to match the type.
func (p *CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Amount == 0 {
		return errors.New("amount must be non-zero")
	}
	if p.Type != TypeIncome && p.Type != TypeExpense {
		return errors.New("type must be income or expense")
	}
	if p.Category == "" {
		return errors.New("category is required")
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.Source == "" {
		p.Source = SourceManual
	}
	p.Amount = signedAmount(p.Amount, p.Type)
	return nil
}

type UpdateParams struct {
	Amount      *float64
	Type        *string
	Category    *string
	Description *string
	Date        *time.Time
}

// UpsertParams is used when importing provider movements; ID carries the
// provider movement id so re-imports are idempotent.
type UpsertParams struct {
	ID          string
	UserID      int64
	Amount      float64
	Type        string
	Category    string
	Description string
	Date        time.Time
	Source      string
}

// ListFilter narrows transaction listings. Zero values mean "no constraint".
type ListFilter struct {
	Type     string
	Category string
	From     time.Time
	To       time.Time
}

func signedAmount(amount float64, txType string) float64 {
	if amount < 0 {
		amount = -amount
	}
	if txType == TypeExpense {
		return -amount
	}
	return amount
}
