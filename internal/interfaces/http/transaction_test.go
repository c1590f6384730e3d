package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plata/internal/domain/transaction"
	"plata/internal/shared/middleware"
)

// mockTransactionRepo implements transaction.Repository
type mockTransactionRepo struct {
	CreateFunc          func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
	GetByIDFunc         func(ctx context.Context, id string) (*transaction.Transaction, error)
	ListByUserIDFunc    func(ctx context.Context, userID int64, filter transaction.ListFilter, limit, offset int) ([]*transaction.Transaction, error)
	CountByUserIDFunc   func(ctx context.Context, userID int64, filter transaction.ListFilter) (int64, error)
	ListAllByUserIDFunc func(ctx context.Context, userID int64) ([]*transaction.Transaction, error)
	UpdateFunc          func(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error)
	DeleteFunc          func(ctx context.Context, id string) error
	UpsertFunc          func(ctx context.Context, params transaction.UpsertParams) (*transaction.Transaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &transaction.Transaction{ID: "t1", UserID: params.UserID, Amount: params.Amount, Type: params.Type, Category: params.Category}, nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, transaction.ErrTransactionNotFound
}

func (m *mockTransactionRepo) ListByUserID(ctx context.Context, userID int64, filter transaction.ListFilter, limit, offset int) ([]*transaction.Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockTransactionRepo) CountByUserID(ctx context.Context, userID int64, filter transaction.ListFilter) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID, filter)
	}
	return 0, nil
}

func (m *mockTransactionRepo) ListAllByUserID(ctx context.Context, userID int64) ([]*transaction.Transaction, error) {
	if m.ListAllByUserIDFunc != nil {
		return m.ListAllByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockTransactionRepo) Update(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *mockTransactionRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTransactionRepo) Upsert(ctx context.Context, params transaction.UpsertParams) (*transaction.Transaction, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, params)
	}
	return &transaction.Transaction{ID: params.ID}, nil
}

func authedPostRequest(target string, userID int64, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestHandleCreateTransaction(t *testing.T) {
	repo := &mockTransactionRepo{}
	handler := NewTransactionHandler(transaction.NewService(repo))

	body, _ := json.Marshal(CreateTransactionRequest{
		Amount:   120,
		Type:     "expense",
		Category: "pagos",
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	req := authedPostRequest("/api/transactions/", 7, body)

	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleCreateTransactionInvalid(t *testing.T) {
	handler := NewTransactionHandler(transaction.NewService(&mockTransactionRepo{}))

	body := []byte(`{"amount": 10, "type": "transfer", "category": "otros"}`)
	req := authedPostRequest("/api/transactions/", 7, body)

	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid type, got %d", rec.Code)
	}
}

func TestHandleListTransactions(t *testing.T) {
	var gotFilter transaction.ListFilter
	repo := &mockTransactionRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64, filter transaction.ListFilter, limit, offset int) ([]*transaction.Transaction, error) {
			gotFilter = filter
			return []*transaction.Transaction{{ID: "t1", UserID: userID}}, nil
		},
		CountByUserIDFunc: func(ctx context.Context, userID int64, filter transaction.ListFilter) (int64, error) {
			return 1, nil
		},
	}
	handler := NewTransactionHandler(transaction.NewService(repo))

	rec := httptest.NewRecorder()
	handler.HandleList(rec, authedRequest(http.MethodGet,
		"/api/transactions/?type=expense&category=pagos&from=2025-06-01T00:00:00Z", 7))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotFilter.Type != "expense" || gotFilter.Category != "pagos" || gotFilter.From.IsZero() {
		t.Errorf("filters not forwarded: %+v", gotFilter)
	}

	var resp TransactionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable body: %v", err)
	}
	if resp.Total != 1 || len(resp.Transactions) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleGetTransactionOwnership(t *testing.T) {
	repo := &mockTransactionRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*transaction.Transaction, error) {
			return &transaction.Transaction{ID: id, UserID: 42}, nil
		},
	}
	handler := NewTransactionHandler(transaction.NewService(repo))

	req := authedRequest(http.MethodGet, "/api/transactions/t1", 7)
	req.SetPathValue("id", "t1")
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", rec.Code)
	}
}

func TestHandleGetTransactionNotFound(t *testing.T) {
	handler := NewTransactionHandler(transaction.NewService(&mockTransactionRepo{}))

	req := authedRequest(http.MethodGet, "/api/transactions/missing", 7)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteTransaction(t *testing.T) {
	deleted := false
	repo := &mockTransactionRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*transaction.Transaction, error) {
			return &transaction.Transaction{ID: id, UserID: 7}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	handler := NewTransactionHandler(transaction.NewService(repo))

	req := authedRequest(http.MethodDelete, "/api/transactions/t1", 7)
	req.SetPathValue("id", "t1")
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if !deleted {
		t.Error("expected repository delete to run")
	}
}

func TestHandleDashboard(t *testing.T) {
	repo := &mockTransactionRepo{
		ListAllByUserIDFunc: func(ctx context.Context, userID int64) ([]*transaction.Transaction, error) {
			return []*transaction.Transaction{
				{ID: "t1", UserID: userID, Amount: 500, Category: "ingresos", Date: time.Now().UTC()},
				{ID: "t2", UserID: userID, Amount: -120, Category: "pagos", Date: time.Now().UTC()},
			}, nil
		},
	}
	handler := NewStatsHandler(transaction.NewStatsService(repo, 2000))

	rec := httptest.NewRecorder()
	handler.HandleDashboard(rec, authedRequest(http.MethodGet, "/api/stats/dashboard", 7))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var stats transaction.DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unparseable body: %v", err)
	}
	if stats.CurrentBalance != 380 {
		t.Errorf("expected balance 380, got %v", stats.CurrentBalance)
	}
	if stats.BudgetProgress.TotalBudget != 2000 {
		t.Errorf("unexpected budget %+v", stats.BudgetProgress)
	}
}
