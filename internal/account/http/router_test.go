package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/screentime-labs/tracker/backend/internal/account/domain"
	accounthttp "github.com/screentime-labs/tracker/backend/internal/account/http"
	"github.com/screentime-labs/tracker/backend/internal/account/repository"
	"github.com/screentime-labs/tracker/backend/internal/account/service"
	"github.com/screentime-labs/tracker/backend/internal/common/clock"
	"github.com/screentime-labs/tracker/backend/internal/common/config"
	"github.com/screentime-labs/tracker/backend/internal/common/crypto"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
)

type stubRepository struct {
	createFunc      func(ctx context.Context, account domain.Account) error
	findByEmailFunc func(ctx context.Context, email string) (domain.Account, error)
	listFunc        func(ctx context.Context) ([]domain.Summary, error)
}

func (s *stubRepository) Create(ctx context.Context, account domain.Account) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, account)
	}
	return nil
}

func (s *stubRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if s.findByEmailFunc != nil {
		return s.findByEmailFunc(ctx, email)
	}
	return domain.Account{}, repository.ErrAccountNotFound
}

func (s *stubRepository) List(ctx context.Context) ([]domain.Summary, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return []domain.Summary{}, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed_" + password, nil
}

func (stubHasher) Compare(hash string, password string) error {
	if hash != "hashed_"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func setupHandler(t *testing.T, repo *stubRepository) http.Handler {
	t.Helper()

	log, err := logger.New("", "account-http-test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	svc := service.NewAccountService(service.Deps{
		Repo:        repo,
		Hasher:      stubHasher{},
		IDGenerator: crypto.NewUUIDGenerator(),
		Clock:       clock.NewMockClock(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)),
		Log:         log,
	}, "test-secret-test-secret-test-secret!", time.Hour)

	cfg := config.Config{RequestTimeout: 5 * time.Second}
	return accounthttp.NewHandler(svc, cfg, log)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return envelope.Code
}

func TestRegister_Success(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID == "" {
		t.Error("expected user_id to be set")
	}
	if resp.Token == "" {
		t.Error("expected token to be set")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "MISSING_FIELDS" {
		t.Errorf("expected MISSING_FIELDS, got %s", code)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	body := `{"username":"alice","email":"not-an-email","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	body := `{"username":"alice","email":"alice@example.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	repo := &stubRepository{
		createFunc: func(ctx context.Context, account domain.Account) error {
			return repository.ErrUsernameExists
		},
	}
	handler := setupHandler(t, repo)

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "USERNAME_TAKEN" {
		t.Errorf("expected USERNAME_TAKEN, got %s", code)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &stubRepository{
		createFunc: func(ctx context.Context, account domain.Account) error {
			return repository.ErrEmailExists
		},
	}
	handler := setupHandler(t, repo)

	body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "EMAIL_TAKEN" {
		t.Errorf("expected EMAIL_TAKEN, got %s", code)
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	req := httptest.NewRequest(http.MethodGet, "/api/register", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := &stubRepository{
		findByEmailFunc: func(ctx context.Context, email string) (domain.Account, error) {
			return domain.Account{
				ID:           "11111111-1111-4111-8111-111111111111",
				Username:     "alice",
				Email:        email,
				PasswordHash: "hashed_password123",
				CreatedAt:    time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	handler := setupHandler(t, repo)

	body := `{"email":"alice@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.User.Username != "alice" || resp.Token == "" {
		t.Errorf("unexpected login response: %+v", resp)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	handler := setupHandler(t, &stubRepository{})

	body := `{"email":"ghost@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
	}
}

func TestListUsers_Success(t *testing.T) {
	repo := &stubRepository{
		listFunc: func(ctx context.Context) ([]domain.Summary, error) {
			return []domain.Summary{
				{ID: "u-1", Username: "alice", Email: "alice@example.com"},
			}, nil
		},
	}
	handler := setupHandler(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].Username != "alice" {
		t.Errorf("unexpected users response: %+v", resp.Users)
	}
}
