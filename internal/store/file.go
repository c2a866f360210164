package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// maxImportLogs bounds import_logs.json
const maxImportLogs = 50

// FileStore keeps each document as a JSON file under dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore stores JSON files under dir
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func writeJSONAtomic(path string, v interface{}) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// LoadSales reads the dataset
func (s *FileStore) LoadSales(ctx context.Context) ([]model.RawSalesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := readFile(s.path(SalesDocumentID))
	if errors.Is(err, ErrNotFound) {
		return []model.RawSalesRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sales document: %w", err)
	}
	return decodeSales(data)
}

// SaveSales replaces the dataset
func (s *FileStore) SaveSales(ctx context.Context, records []model.RawSalesRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.RawSalesRecord{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSONAtomic(s.path(SalesDocumentID), records); err != nil {
		return fmt.Errorf("failed to write sales document: %w", err)
	}
	return nil
}

// LoadStatusOverrides reads saved training statuses
func (s *FileStore) LoadStatusOverrides(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := readFile(s.path(StatusDocumentID))
	if errors.Is(err, ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status overrides: %w", err)
	}
	return decodeOverrides(data)
}

// SaveStatusOverrides replaces saved training statuses
func (s *FileStore) SaveStatusOverrides(ctx context.Context, overrides map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if overrides == nil {
		overrides = map[string]string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSONAtomic(s.path(StatusDocumentID), overrides); err != nil {
		return fmt.Errorf("failed to write status overrides: %w", err)
	}
	return nil
}

func (s *FileStore) readLogsLocked() ([]model.ImportLog, error) {
	data, err := readFile(s.path("import_logs"))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var logs []model.ImportLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// RecordImport appends an entry, keeping the newest maxImportLogs
func (s *FileStore) RecordImport(ctx context.Context, log model.ImportLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readLogsLocked()
	if err != nil {
		return fmt.Errorf("failed to read import logs: %w", err)
	}
	logs = append(logs, log)
	if len(logs) > maxImportLogs {
		logs = logs[len(logs)-maxImportLogs:]
	}
	if err := writeJSONAtomic(s.path("import_logs"), logs); err != nil {
		return fmt.Errorf("failed to write import logs: %w", err)
	}
	return nil
}

// LastImport returns the newest import log entry
func (s *FileStore) LastImport(ctx context.Context) (model.ImportLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readLogsLocked()
	if err != nil {
		return model.ImportLog{}, fmt.Errorf("failed to read import logs: %w", err)
	}
	if len(logs) == 0 {
		return model.ImportLog{}, ErrNotFound
	}
	return logs[len(logs)-1], nil
}

// Close is a no-op; every write is already flushed.
func (s *FileStore) Close() error {
	return nil
}
