package movement

import (
	"encoding/json"
	"time"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// SourceMercadoPago tags movements imported from the Mercado Pago account.
const SourceMercadoPago = "mercadopago"

// Categories assigned to normalized movements. Credits are always income;
// debits are categorized by keyword-matching the description.
const (
	CategoryIncome    = "ingresos"
	CategoryTransfers = "transferencias"
	CategoryPayments  = "pagos"
	CategoryFees      = "comisiones"
	CategoryOther     = "otros"
)

// Movement is a provider account movement normalized into the dashboard's
// income/expense shape. Amount is always non-negative; Type carries the sign.
type Movement struct {
	ID          string          `json:"id"`
	Amount      float64         `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Source      string          `json:"source"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Page is one page of normalized movements.
type Page struct {
	Movements []Movement `json:"movements"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
