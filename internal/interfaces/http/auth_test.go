package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"plata/internal/domain/user"
	"plata/internal/shared/auth"
)

// mockUserRepo implements user.Repository
type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc    func(ctx context.Context, id int64) (*user.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &user.User{ID: 1, Email: params.Email, Name: params.Name, PasswordHash: params.PasswordHash}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func postJSON(target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
}

func TestHandleRegister(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, postJSON("/api/auth/register",
		RegisterRequest{Email: "ana@example.com", Password: "secret123", Name: "Ana"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable body: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token in the response")
	}
	if resp.User == nil || resp.User.Email != "ana@example.com" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}

	cookie := rec.Result().Cookies()
	if len(cookie) != 1 || cookie[0].Name != "access_token" || !cookie[0].HttpOnly {
		t.Errorf("expected HttpOnly access_token cookie, got %+v", cookie)
	}
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
			return nil, user.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, postJSON("/api/auth/register",
		RegisterRequest{Email: "ana@example.com", Password: "secret123"}))

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandleRegisterMissingFields(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, postJSON("/api/auth/register", RegisterRequest{Email: "ana@example.com"}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{ID: 5, Email: email, PasswordHash: hash}, nil
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postJSON("/api/auth/login",
		LoginRequest{Email: "ana@example.com", Password: "secret123"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{ID: 5, Email: email, PasswordHash: hash}, nil
		},
	}
	handler := NewAuthHandler(repo, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postJSON("/api/auth/login",
		LoginRequest{Email: "ana@example.com", Password: "wrong"}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginUnknownUser(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postJSON("/api/auth/login",
		LoginRequest{Email: "nobody@example.com", Password: "secret123"}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLogout(t *testing.T) {
	handler := NewAuthHandler(&mockUserRepo{}, auth.NewJWT("test-secret"))

	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("expected expired access_token cookie, got %+v", cookies)
	}
}
