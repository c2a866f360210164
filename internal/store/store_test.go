package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

func openBackends(t *testing.T) map[string]Backend {
	t.Helper()

	dir := t.TempDir()
	sqlite, err := New(filepath.Join(dir, "salesdash.db"))
	require.NoError(t, err)
	file, err := NewFileStore(filepath.Join(dir, "documents"))
	require.NoError(t, err)

	backends := map[string]Backend{
		KindSQLite: sqlite,
		KindFile:   file,
		KindMemory: NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, b := range backends {
			_ = b.Close()
		}
	})
	return backends
}

func TestBackends_EmptyOnFirstRun(t *testing.T) {
	ctx := context.Background()
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			records, err := b.LoadSales(ctx)
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Empty(t, records)

			overrides, err := b.LoadStatusOverrides(ctx)
			require.NoError(t, err)
			assert.Empty(t, overrides)

			_, err = b.LastImport(ctx)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestBackends_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			first := []model.RawSalesRecord{
				{SalesmanCode: "1", SalesmanName: "A", TotalSales: 10},
				{SalesmanCode: "2", SalesmanName: "B", TotalSales: 20},
			}
			require.NoError(t, b.SaveSales(ctx, first))

			second := []model.RawSalesRecord{
				{SalesmanCode: "3", SalesmanName: "C", TotalSales: 30, Extra: map[string]any{"Ring": 5.0}},
			}
			require.NoError(t, b.SaveSales(ctx, second))

			got, err := b.LoadSales(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "3", got[0].SalesmanCode)
			assert.Equal(t, 30.0, got[0].TotalSales)
			assert.Equal(t, 5.0, got[0].Extra["Ring"])
		})
	}
}

func TestBackends_StatusOverrides(t *testing.T) {
	ctx := context.Background()
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.SaveStatusOverrides(ctx, map[string]string{"101": model.TrainingCompleted}))
			require.NoError(t, b.SaveStatusOverrides(ctx, map[string]string{
				"101": model.TrainingInProgress,
				"102": model.TrainingNotApplicable,
			}))

			got, err := b.LoadStatusOverrides(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{
				"101": model.TrainingInProgress,
				"102": model.TrainingNotApplicable,
			}, got)
		})
	}
}

func TestBackends_ImportLog(t *testing.T) {
	ctx := context.Background()
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
			require.NoError(t, b.RecordImport(ctx, model.ImportLog{
				ID: "a", Filename: "march.xlsx", Status: "success",
				StartedAt: start, CompletedAt: start.Add(time.Second),
			}))
			require.NoError(t, b.RecordImport(ctx, model.ImportLog{
				ID: "b", Filename: "april.xlsx", Status: "success", TotalRows: 12, StaffCount: 4,
				StartedAt: start.Add(time.Hour), CompletedAt: start.Add(time.Hour + time.Second),
			}))

			last, err := b.LastImport(ctx)
			require.NoError(t, err)
			assert.Equal(t, "b", last.ID)
			assert.Equal(t, "april.xlsx", last.Filename)
			assert.Equal(t, 12, last.TotalRows)
			assert.Equal(t, 4, last.StaffCount)
			assert.True(t, last.CompletedAt.Equal(start.Add(time.Hour+time.Second)))
		})
	}
}

func TestStore_ReopenKeepsDocument(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "salesdash.db")

	st, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.SaveSales(ctx, []model.RawSalesRecord{{SalesmanCode: "9"}}))
	require.NoError(t, st.Close())

	st, err = New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM documents WHERE id = ?", SalesDocumentID).Scan(&count))
	assert.Equal(t, 1, count)

	got, err := st.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].SalesmanCode)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open("postgres", t.TempDir())
	require.Error(t, err)

	b, err := Open(KindMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b)
}

func TestMemoryStore_CopiesOnLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveSales(ctx, []model.RawSalesRecord{{SalesmanCode: "1"}}))

	got, err := s.LoadSales(ctx)
	require.NoError(t, err)
	got[0].SalesmanCode = "mutated"

	again, err := s.LoadSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", again[0].SalesmanCode)
	assert.Equal(t, 1, s.Count())
}
