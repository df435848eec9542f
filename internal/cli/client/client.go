package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	mealService "github.com/zhouzirui/z-diet/backend/internal/service/meal"
)

// ErrUnauthorized is returned when the server rejects the stored token.
var ErrUnauthorized = errors.New("not authorized, run `dietctl login`")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

type errorBody struct {
	Error string `json:"error"`
}

// APIClient talks to the diet backend over Hertz.
type APIClient struct {
	client *client.Client
	server string
	token  string
}

// NewAPIClient creates a client for server authenticating with token.
func NewAPIClient(server, token string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// netpoll 不支持流式读取，使用标准库 dialer。
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{client: c, server: normalized, token: token}, nil
}

// normalizeServerURL returns scheme://host with no trailing slash.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Server returns the normalized base URL.
func (c *APIClient) Server() string {
	return c.server
}

func (c *APIClient) newRequest(method, path string, body any) (*protocol.Request, error) {
	req := protocol.AcquireRequest()
	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			protocol.ReleaseRequest(req)
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(data)
	}
	return req, nil
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	data := resp.Body()
	if err := checkStatus(resp.StatusCode(), data); err != nil {
		return err
	}

	if out == nil || resp.StatusCode() == consts.StatusNoContent {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == consts.StatusUnauthorized {
		return ErrUnauthorized
	}

	var payload errorBody
	_ = sonic.Unmarshal(body, &payload)
	return &APIError{StatusCode: status, Message: payload.Error}
}

// Health pings the liveness endpoint.
func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, consts.MethodGet, endpointHealth, nil, nil)
}

// ChatStream posts the conversation to /diet-chat and returns the raw SSE body.
// The caller must close the returned reader.
func (c *APIClient) ChatStream(ctx context.Context, turns []chat.Turn) (io.ReadCloser, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("chat request requires at least one message")
	}

	safe := make([]chat.Turn, len(turns))
	copy(safe, turns)

	req, err := c.newRequest(consts.MethodPost, endpointDietChat, map[string]any{"messages": safe})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp := protocol.AcquireResponse()

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		err := checkStatus(status, resp.Body())
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, err
	}

	stream := resp.BodyStream()
	if stream == nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, fmt.Errorf("body stream is nil")
	}

	return &streamBody{Reader: stream, req: req, resp: resp}, nil
}

// streamBody releases the pooled request/response once the stream is closed.
type streamBody struct {
	io.Reader
	req  *protocol.Request
	resp *protocol.Response
}

func (s *streamBody) Close() error {
	err := s.resp.CloseBodyStream()
	protocol.ReleaseRequest(s.req)
	protocol.ReleaseResponse(s.resp)
	return err
}

// SearchFoods asks the backend for nutrition candidates.
func (c *APIClient) SearchFoods(ctx context.Context, query string) ([]meal.FoodItem, error) {
	var out struct {
		Foods []meal.FoodItem `json:"foods"`
	}
	if err := c.do(ctx, consts.MethodPost, endpointFoodSearch, map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return out.Foods, nil
}

// Messages returns the stored chat history.
func (c *APIClient) Messages(ctx context.Context) ([]chat.Message, error) {
	var out struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := c.do(ctx, consts.MethodGet, endpointMessages, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SaveMessage appends one message to the stored history.
func (c *APIClient) SaveMessage(ctx context.Context, role chat.Role, content string) (chat.Message, error) {
	var out chat.Message
	err := c.do(ctx, consts.MethodPost, endpointMessages, chat.Turn{Role: role, Content: content}, &out)
	return out, err
}

// ClearMessages deletes the stored history and returns how many were removed.
func (c *APIClient) ClearMessages(ctx context.Context) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	err := c.do(ctx, consts.MethodDelete, endpointMessages, nil, &out)
	return out.Deleted, err
}

// CreateMeal logs a meal.
func (c *APIClient) CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	var out meal.Meal
	err := c.do(ctx, consts.MethodPost, endpointMeals, m, &out)
	return out, err
}

// LogFood logs multiplier servings of a food lookup result.
func (c *APIClient) LogFood(ctx context.Context, item meal.FoodItem, multiplier float64, mealType meal.Type) (meal.Meal, error) {
	body := map[string]any{
		"food":       item,
		"multiplier": multiplier,
		"meal_type":  mealType,
	}
	var out meal.Meal
	err := c.do(ctx, consts.MethodPost, endpointMeals, body, &out)
	return out, err
}

// Meals lists meals between from and to inclusive. Empty bounds mean today.
func (c *APIClient) Meals(ctx context.Context, from, to string) ([]meal.Meal, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := endpointMeals
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Meals []meal.Meal `json:"meals"`
	}
	if err := c.do(ctx, consts.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Meals, nil
}

// DeleteMeal removes one of the caller's meals.
func (c *APIClient) DeleteMeal(ctx context.Context, id string) error {
	return c.do(ctx, consts.MethodDelete, fmt.Sprintf(endpointMealByID, url.PathEscape(id)), nil, nil)
}

// WeeklyStats fetches the seven day summary ending on end.
func (c *APIClient) WeeklyStats(ctx context.Context, end string) (mealService.WeeklyStats, error) {
	path := endpointWeeklyStats
	if end != "" {
		path += "?end=" + url.QueryEscape(end)
	}

	var out mealService.WeeklyStats
	err := c.do(ctx, consts.MethodGet, path, nil, &out)
	return out, err
}
