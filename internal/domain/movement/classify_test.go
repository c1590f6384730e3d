package movement

import (
	"encoding/json"
	"testing"
	"time"

	"plata/internal/domain/connection"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name         string
		movementType string
		description  string
		want         string
	}{
		{"credit is always income", "credit", "compra en tienda", CategoryIncome},
		{"credit ignores keywords", "credit", "transferencia recibida", CategoryIncome},
		{"debit transferencia", "debit", "Transferencia a Juan", CategoryTransfers},
		{"debit transfer english", "debit", "Bank transfer out", CategoryTransfers},
		{"debit pago", "debit", "Pago de servicios", CategoryPayments},
		{"debit payment english", "debit", "Payment to merchant", CategoryPayments},
		{"debit comision", "debit", "Comision por retiro", CategoryFees},
		{"debit fee english", "debit", "Monthly fee", CategoryFees},
		{"debit no keyword", "debit", "compra supermercado", CategoryOther},
		{"debit empty description", "debit", "", CategoryOther},
		{"transfer wins over payment", "debit", "pago via transferencia", CategoryTransfers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.movementType, tt.description)
			if got != tt.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tt.movementType, tt.description, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	created := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	raw := connection.RawMovement{
		ID:          12345,
		Type:        "debit",
		Amount:      -150.25,
		Description: "Transferencia a Maria",
		CreatedAt:   created,
		Raw:         json.RawMessage(`{"id":12345}`),
	}

	got := Normalize(raw, "mercadopago")

	if got.ID != "mercadopago_12345" {
		t.Errorf("expected prefixed id, got %q", got.ID)
	}
	if got.Amount != 150.25 {
		t.Errorf("expected absolute amount 150.25, got %v", got.Amount)
	}
	if got.Type != TypeExpense {
		t.Errorf("expected expense, got %q", got.Type)
	}
	if got.Category != CategoryTransfers {
		t.Errorf("expected %q, got %q", CategoryTransfers, got.Category)
	}
	if !got.Date.Equal(created) {
		t.Errorf("expected date %v, got %v", created, got.Date)
	}
	if got.Source != "mercadopago" {
		t.Errorf("expected source mercadopago, got %q", got.Source)
	}
	if string(got.Raw) != `{"id":12345}` {
		t.Errorf("expected raw payload preserved, got %s", got.Raw)
	}
}

func TestNormalizeCredit(t *testing.T) {
	raw := connection.RawMovement{
		ID:     9,
		Type:   "credit",
		Amount: 300,
	}

	got := Normalize(raw, "mercadopago")

	if got.Type != TypeIncome {
		t.Errorf("expected income, got %q", got.Type)
	}
	if got.Category != CategoryIncome {
		t.Errorf("expected %q, got %q", CategoryIncome, got.Category)
	}
	if got.Description == "" {
		t.Error("expected a default description for empty provider description")
	}
	if got.Date.IsZero() {
		t.Error("expected a fallback date for zero provider timestamp")
	}
}

func TestNormalizeEmptyDescriptionDebit(t *testing.T) {
	raw := connection.RawMovement{
		ID:     77,
		Type:   "debit",
		Amount: -10,
	}

	got := Normalize(raw, "mercadopago")

	// The default display description contains "pago"; it must not leak into
	// the keyword match.
	if got.Category != CategoryOther {
		t.Errorf("expected %q for empty provider description, got %q", CategoryOther, got.Category)
	}
	if got.Description != "Movimiento Mercado Pago" {
		t.Errorf("expected default description, got %q", got.Description)
	}
}

func TestNormalizePage(t *testing.T) {
	page := connection.MovementsPage{
		Results: []connection.RawMovement{
			{ID: 1, Type: "credit", Amount: 100},
			{ID: 2, Type: "debit", Amount: -50, Description: "pago luz"},
		},
		Paging: connection.Paging{Total: 42, Limit: 2, Offset: 10},
	}

	got := NormalizePage(page, "mercadopago")

	if len(got.Movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(got.Movements))
	}
	if got.Total != 42 || got.Limit != 2 || got.Offset != 10 {
		t.Errorf("paging not preserved: %+v", got)
	}
	if got.Movements[0].Category != CategoryIncome {
		t.Errorf("expected income category, got %q", got.Movements[0].Category)
	}
	if got.Movements[1].Category != CategoryPayments {
		t.Errorf("expected payments category, got %q", got.Movements[1].Category)
	}
}
