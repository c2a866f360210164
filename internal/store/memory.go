package store

import (
	"context"
	"sync"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	sales     []model.RawSalesRecord
	overrides map[string]string
	imports   []model.ImportLog
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sales:     []model.RawSalesRecord{},
		overrides: map[string]string{},
	}
}

// LoadSales returns a copy of the dataset.
func (s *MemoryStore) LoadSales(ctx context.Context) ([]model.RawSalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RawSalesRecord, len(s.sales))
	copy(out, s.sales)
	return out, nil
}

// SaveSales replaces the dataset
func (s *MemoryStore) SaveSales(ctx context.Context, records []model.RawSalesRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = make([]model.RawSalesRecord, len(records))
	copy(s.sales, records)
	return nil
}

// LoadStatusOverrides reads saved training statuses
func (s *MemoryStore) LoadStatusOverrides(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out, nil
}

// SaveStatusOverrides replaces saved training statuses
func (s *MemoryStore) SaveStatusOverrides(ctx context.Context, overrides map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides = make(map[string]string, len(overrides))
	for k, v := range overrides {
		s.overrides[k] = v
	}
	return nil
}

// RecordImport appends an import log entry
func (s *MemoryStore) RecordImport(ctx context.Context, log model.ImportLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, log)
	return nil
}

// LastImport returns the newest import log entry
func (s *MemoryStore) LastImport(ctx context.Context) (model.ImportLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.imports) == 0 {
		return model.ImportLog{}, ErrNotFound
	}
	return s.imports[len(s.imports)-1], nil
}

// Count returns the number of stored records
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

// Close drops all data
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = nil
	s.overrides = nil
	s.imports = nil
	return nil
}
