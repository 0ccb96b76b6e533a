package database

import (
	"context"
	"sort"
	"sync"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/imhuimie/string-analyzer-go/internal/query"
)

// Memory keeps records in a map; contents are lost on exit
type Memory struct {
	records map[string]StringRecord
	mu      sync.RWMutex
}

var _ Database = (*Memory)(nil)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{records: make(map[string]StringRecord)}
}

// FindByValue finds a record by its exact value
func (m *Memory) FindByValue(ctx context.Context, value string) (*StringRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[analyzer.ContentHash(value)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Insert stores record unless its id is taken
func (m *Memory) Insert(ctx context.Context, record *StringRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ID]; exists {
		return ErrDuplicate
	}
	m.records[record.ID] = *record
	return nil
}

// DeleteByValue removes the record holding value
func (m *Memory) DeleteByValue(ctx context.Context, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := analyzer.ContentHash(value)
	if _, exists := m.records[id]; !exists {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

// Query returns matching records, oldest first
func (m *Memory) Query(ctx context.Context, filters query.Filters) ([]*StringRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*StringRecord, 0)
	for _, rec := range m.records {
		if filters.Match(rec.Value, rec.Properties) {
			rec := rec
			out = append(out, &rec)
		}
	}
	sortRecords(out)
	return out, nil
}

// Disconnect is a no-op
func (m *Memory) Disconnect() error {
	return nil
}

// Ping always succeeds
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func sortRecords(records []*StringRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
