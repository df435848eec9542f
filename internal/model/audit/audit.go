// Package audit describes the change log written for user data mutations.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Action is the kind of mutation recorded.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Entry is one audit record. Data snapshots are stored as raw JSON.
type Entry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Action    Action          `json:"action"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordId,omitempty"`
	NewData   json.RawMessage `json:"newData,omitempty"`
	OldData   json.RawMessage `json:"oldData,omitempty"`
	IPAddress string          `json:"ipAddress,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Writer persists audit entries.
type Writer interface {
	Record(ctx context.Context, entry Entry) error
}

// Client identifies the caller that triggered a mutation.
type Client struct {
	IPAddress string
	UserAgent string
}

type clientKey struct{}

// WithClient attaches caller metadata to ctx.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns caller metadata from ctx, if present.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

// Snapshot encodes v for storage in an Entry. Encoding failures yield nil.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
