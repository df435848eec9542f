package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/z-diet/backend/internal/service/chat"
	"github.com/zhouzirui/z-diet/backend/internal/storage/memory"
)

func setupRouter() *chi.Mux {
	handler := New(chatservice.NewService(memory.NewChatStore()))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), "user-1")))
		})
	})
	handler.RegisterRoutes(r)
	return r
}

func send(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSaveAndListMessages(t *testing.T) {
	r := setupRouter()

	resp := send(r, http.MethodPost, `{"role":"assistant","content":"Nice breakfast!"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = send(r, http.MethodGet, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != chat.RoleAssistant {
		t.Fatalf("unexpected messages: %+v", body.Messages)
	}
}

func TestSaveMessageRejectsInvalidRole(t *testing.T) {
	r := setupRouter()

	resp := send(r, http.MethodPost, `{"role":"system","content":"hi"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestClearMessages(t *testing.T) {
	r := setupRouter()
	send(r, http.MethodPost, `{"role":"user","content":"one"}`)
	send(r, http.MethodPost, `{"role":"user","content":"two"}`)

	resp := send(r, http.MethodDelete, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"deleted":2`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}
