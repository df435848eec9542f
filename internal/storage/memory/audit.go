package memory

import (
	"context"
	"sync"

	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
)

// AuditStore appends audit entries in memory.
type AuditStore struct {
	mu      sync.Mutex
	entries []audit.Entry
}

// NewAuditStore creates an empty AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Record implements audit.Writer.
func (s *AuditStore) Record(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of the recorded entries.
func (s *AuditStore) Entries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}
