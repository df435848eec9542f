package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestVerifyRoundTrip(t *testing.T) {
	token, err := Issue(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	got, err := NewVerifier(testSecret).Verify(token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if got != "user-1" {
		t.Fatalf("unexpected subject: %s", got)
	}
}

func TestVerifyRejectsWrongSecretAndExpiry(t *testing.T) {
	token, _ := Issue("other", "user-1", time.Hour)
	if _, err := NewVerifier(testSecret).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	expired, _ := Issue(testSecret, "user-1", -time.Minute)
	if _, err := NewVerifier(testSecret).Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	if _, err := NewVerifier(testSecret).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRequest(t *testing.T) {
	v := NewVerifier(testSecret)

	req := httptest.NewRequest("POST", "/diet-chat", nil)
	if _, err := v.VerifyRequest(req); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, err := v.VerifyRequest(req); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken for non-bearer scheme, got %v", err)
	}

	token, _ := Issue(testSecret, "user-2", time.Hour)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := v.VerifyRequest(req)
	if err != nil || got != "user-2" {
		t.Fatalf("unexpected result: %q %v", got, err)
	}
}

func TestUserIDContext(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("expected no user id on empty context")
	}
	ctx := WithUserID(context.Background(), "user-3")
	if id, ok := UserID(ctx); !ok || id != "user-3" {
		t.Fatalf("unexpected user id: %q %v", id, ok)
	}
}
