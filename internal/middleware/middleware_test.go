package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
)

const secret = "middleware-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	w.Header().Set("X-User", userID)
	w.WriteHeader(http.StatusOK)
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/diet-chat", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing allow-origin header")
	}
	if rr.Header().Get("Access-Control-Allow-Headers") != allowedHeaders {
		t.Fatalf("unexpected allow-headers: %s", rr.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(auth.NewVerifier(secret))(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/diet-chat", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Authentication required" {
		t.Fatalf("unexpected message: %s", msg)
	}

	token, _ := auth.Issue(secret, "user-1", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/diet-chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Header().Get("X-User") != "user-1" {
		t.Fatalf("unexpected response: %d %q", rr.Code, rr.Header().Get("X-User"))
	}
}

func TestAuthenticateWebsocketQueryToken(t *testing.T) {
	h := Authenticate(auth.NewVerifier(secret))(http.HandlerFunc(okHandler))
	token, _ := auth.Issue(secret, "user-ws", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/ws/meals?access_token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Header().Get("X-User") != "user-ws" {
		t.Fatalf("unexpected response: %d", rr.Code)
	}

	// The query token is ignored on plain requests.
	req = httptest.NewRequest(http.MethodGet, "/meals?access_token="+token, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

type brokenStore struct{}

func (brokenStore) Hit(context.Context, ratelimit.Key, ratelimit.Policy, time.Time) (bool, error) {
	return false, errors.New("connection refused")
}

func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), "user-1")))
	})
}

func TestRateLimitDeniesAfterBudget(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), time.Hour, map[string]int{"food-search": 2})
	h := withUser(RateLimit(limiter, "food-search")(http.HandlerFunc(okHandler)))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/food-search", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/food-search", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Daily request limit exceeded. Please try again tomorrow." {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestRateLimitStoreFailureIs500(t *testing.T) {
	limiter := ratelimit.New(brokenStore{}, time.Hour, nil)
	h := withUser(RateLimit(limiter, "diet-chat")(http.HandlerFunc(okHandler)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/diet-chat", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Rate limit check failed" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rr.Code)
	}
}
