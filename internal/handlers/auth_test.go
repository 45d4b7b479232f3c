package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"barberdesk/internal/model"
	"barberdesk/libs/auth"
)

type stubUserStore struct {
	users map[string]model.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]model.User)}
}

func (s *stubUserStore) Create(_ context.Context, user model.User) (string, error) {
	user.ID = "u-" + user.Email
	s.users[user.Email] = user
	return user.ID, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	user, ok := s.users[email]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	secret := "test-secret"
	h := NewAuthHandler(newStubUserStore(), testLogger(), secret, time.Hour)

	req := httptest.NewRequest("POST", "/api/v1/auth/register", jsonBody(`{"email":"ana@example.com","password":"pass123","name":"Ana"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != 201 {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("POST", "/api/v1/auth/login", jsonBody(`{"email":"ana@example.com","password":"pass123"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != 200 {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid login response: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", resp)
	}

	claims, err := auth.ParseAndVerifyHS256(resp.AccessToken, secret)
	if err != nil {
		t.Fatalf("token should verify: %v", err)
	}
	if claims.Role != "customer" {
		t.Fatalf("expected customer role, got %q", claims.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubUserStore()
	h := NewAuthHandler(store, testLogger(), "test-secret", time.Hour)

	req := httptest.NewRequest("POST", "/api/v1/auth/register", jsonBody(`{"email":"ana@example.com","password":"pass123"}`))
	h.Register(httptest.NewRecorder(), req)

	req = httptest.NewRequest("POST", "/api/v1/auth/login", jsonBody(`{"email":"ana@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != 401 {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h := NewAuthHandler(newStubUserStore(), testLogger(), "test-secret", time.Hour)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", jsonBody(`{"email":"ghost@example.com","password":"pass123"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != 401 {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}
