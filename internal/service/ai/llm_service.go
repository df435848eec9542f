// Package ai talks to the OpenAI-compatible completions endpoint.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/config"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

var (
	ErrMissingAPIKey       = errors.New("LLM API key is not configured")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
)

// maxErrorBody bounds how much of an upstream error body is read for logs.
const maxErrorBody = 64 << 10

// UpstreamError reports a non-2xx completions response.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

// Relay forwards conversations to the completions endpoint and hands the
// raw streaming body back to the caller.
type Relay struct {
	cfg    config.AIConfig
	client *http.Client
	log    *logrus.Entry
}

// NewRelay creates a relay. A nil client gets a transport whose header
// timeout is cfg.Timeout; the body itself is not time bounded.
func NewRelay(cfg config.AIConfig, client *http.Client) *Relay {
	if client == nil {
		client = &http.Client{Transport: newTransport(cfg.Timeout)}
	}
	return &Relay{cfg: cfg, client: client, log: logger.Component("ai")}
}

func newTransport(headerTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}
}

// StreamChat posts turns behind the diet system prompt with stream=true.
// On success the caller owns and must close the returned body.
func (r *Relay) StreamChat(ctx context.Context, turns []chat.Turn) (io.ReadCloser, error) {
	if r.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	messages := make([]completionMessage, 0, len(turns)+1)
	messages = append(messages, completionMessage{Role: "system", Content: DietChatSystemPrompt})
	for _, t := range turns {
		messages = append(messages, completionMessage{Role: string(t.Role), Content: t.Content})
	}

	payload, err := sonic.Marshal(completionRequest{
		Model:    r.cfg.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completions request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.CompletionsURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build completions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	r.log.WithFields(logrus.Fields{
		"model":    r.cfg.Model,
		"messages": len(turns),
	}).Info("starting diet chat stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completions request failed: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	upstream := &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}

	r.log.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"body":   upstream.Body,
	}).Error("completions API error")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRateLimited, upstream)
	}
	return nil, upstream
}
