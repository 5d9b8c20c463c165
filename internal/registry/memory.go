// Package registry provides the in-memory connection registry used in
// single-instance mode and in tests.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/telllate/snipcast/internal/domain"
)

// Memory is a ConnectionRegistry backed by a plain map. Handler invocations
// run concurrently, so every map access is serialized behind a mutex.
type Memory struct {
	mu      sync.RWMutex
	records map[string]time.Time
}

var _ domain.ConnectionRegistry = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{records: make(map[string]time.Time)}
}

func (m *Memory) Put(_ context.Context, connectionID string, connectedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[connectionID] = connectedAt
	return nil
}

func (m *Memory) Delete(_ context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, connectionID)
	return nil
}

func (m *Memory) ListAll(_ context.Context) ([]domain.ConnectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]domain.ConnectionRecord, 0, len(m.records))
	for connectionID, connectedAt := range m.records {
		records = append(records, domain.ConnectionRecord{
			ConnectionID: connectionID,
			ConnectedAt:  connectedAt,
		})
	}
	return records, nil
}
