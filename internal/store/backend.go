package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// ErrNotFound is returned when nothing is stored under a key
var ErrNotFound = errors.New("not found")

// Document ids. The sales dataset is one blob overwritten on every upload; status
// overrides live in a second document so they survive re-uploads.
const (
	SalesDocumentID  = "latest"
	StatusDocumentID = "status_overrides"
)

// Backend persists the dataset, status overrides and import logs
type Backend interface {
	// LoadSales returns the current dataset, or an empty slice on first run.
	LoadSales(ctx context.Context) ([]model.RawSalesRecord, error)
	// SaveSales replaces the dataset (last write wins).
	SaveSales(ctx context.Context, records []model.RawSalesRecord) error

	LoadStatusOverrides(ctx context.Context) (map[string]string, error)
	SaveStatusOverrides(ctx context.Context, overrides map[string]string) error

	RecordImport(ctx context.Context, log model.ImportLog) error
	// LastImport returns ErrNotFound when nothing was imported yet.
	LastImport(ctx context.Context) (model.ImportLog, error)

	Close() error
}

// Backend kinds accepted by Open
const (
	KindSQLite = "sqlite"
	KindFile   = "file"
	KindMemory = "memory"
)

// Open opens the backend named by kind
func Open(kind, dataDir string) (Backend, error) {
	switch kind {
	case "", KindSQLite:
		return New(filepath.Join(dataDir, "salesdash.db"))
	case KindFile:
		return NewFileStore(filepath.Join(dataDir, "documents"))
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
