package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
)

func TestRespondAppErrorIncludesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/food-search", nil)

	RespondAppError(rr, req, apperr.ValidationFailed([]string{"query too long"}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Error != "Invalid input format." || len(body.Details) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRespondAppErrorHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/diet-chat", nil)

	RespondAppError(rr, req, apperr.RateLimitCheckFailed(errors.New("connection refused")))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Fatalf("cause leaked into response: %s", rr.Body.String())
	}
}

func TestRelaySSECopiesVerbatim(t *testing.T) {
	upstream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n\n"
	rr := httptest.NewRecorder()

	n, err := RelaySSE(rr, strings.NewReader(upstream))
	if err != nil {
		t.Fatalf("RelaySSE err: %v", err)
	}
	if n != int64(len(upstream)) {
		t.Fatalf("expected %d bytes, got %d", len(upstream), n)
	}
	if rr.Body.String() != upstream {
		t.Fatalf("body mismatch: %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !rr.Flushed {
		t.Fatal("expected response to be flushed")
	}
}
