package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/parser"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/store"
)

// Progress event types
const (
	EventStart = "start"
	EventInfo  = "info"
	EventDone  = "done"
	EventError = "error"
)

// Coordinator runs parse, restore and save for one upload
type Coordinator struct {
	store  store.Backend
	parser *parser.Parser
	logger *zap.Logger
}

// NewCoordinator creates a coordinator
func NewCoordinator(st store.Backend, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:  st,
		parser: parser.NewParser(),
		logger: logger,
	}
}

// ImportOptions describes one import
type ImportOptions struct {
	FilePath         string
	OriginalFilename string // name shown to the user; defaults to the base of FilePath
	PreserveStatuses bool   // re-apply stored training status overrides
}

// ProgressEvent is one step reported to the caller
type ProgressEvent struct {
	Type      string      `json:"type"` // start/info/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Report is the payload of the done event.
type Report struct {
	ImportID         string                `json:"importId"`
	Filename         string                `json:"filename"`
	SheetName        string                `json:"sheetName"`
	Format           parser.Format         `json:"format"`
	TotalRows        int                   `json:"totalRows"`
	ImportedRows     int                   `json:"importedRows"`
	SkippedRows      int                   `json:"skippedRows"`
	StaffCount       int                   `json:"staffCount"`
	RestoredStatuses int                   `json:"restoredStatuses"`
	Mappings         []parser.FieldMapping `json:"mappings"`
	Missing          []string              `json:"missing,omitempty"`
	Duration         time.Duration         `json:"duration"`
}

// Import runs the upload in a goroutine. The channel is closed after the done or
// error event, or as soon as ctx is cancelled.
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, ch chan<- ProgressEvent) {
	startTime := time.Now()
	filename := opts.OriginalFilename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	entry := model.ImportLog{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    "error",
		StartedAt: startTime,
	}
	log := c.logger.With(zap.String("import_id", entry.ID), zap.String("filename", filename))

	fail := func(msg string, err error) {
		log.Warn("import failed", zap.String("stage", msg), zap.Error(err))
		entry.Error = err.Error()
		entry.CompletedAt = time.Now()
		// failed imports are logged even after the request is cancelled
		if rerr := c.store.RecordImport(context.WithoutCancel(ctx), entry); rerr != nil {
			log.Error("record import log", zap.Error(rerr))
		}
		c.sendProgress(ctx, ch, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("%s: %v", msg, err),
			Timestamp: time.Now(),
		})
	}

	if !c.sendProgress(ctx, ch, ProgressEvent{
		Type:      EventStart,
		Message:   "Import started",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	}) {
		return
	}

	size, hash, err := fingerprint(opts.FilePath)
	if err != nil {
		fail("failed to open file", err)
		return
	}
	entry.FileSize = size
	entry.FileHash = hash

	f, err := os.Open(opts.FilePath)
	if err != nil {
		fail("failed to open file", err)
		return
	}
	result, err := c.parser.Parse(f, filename)
	_ = f.Close()
	if err != nil {
		fail("failed to parse file", err)
		return
	}
	entry.TotalRows = result.TotalRows
	entry.SkippedRows = result.SkippedRows

	if !c.sendProgress(ctx, ch, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("Read %d rows from sheet %q", len(result.Records), result.SheetName),
		Data: map[string]interface{}{
			"sheet_name":   result.SheetName,
			"total_rows":   result.TotalRows,
			"skipped_rows": result.SkippedRows,
			"missing":      result.Missing,
		},
		Timestamp: time.Now(),
	}) {
		return
	}

	restored := 0
	if opts.PreserveStatuses {
		overrides, err := c.store.LoadStatusOverrides(ctx)
		if err != nil {
			fail("failed to load training statuses", err)
			return
		}
		restored = calculator.ApplyStatusOverrides(result.Records, overrides)
		if restored > 0 {
			c.sendProgress(ctx, ch, ProgressEvent{
				Type:      EventInfo,
				Message:   fmt.Sprintf("Preserved training status for %d staff", restored),
				Data:      map[string]int{"restored_statuses": restored},
				Timestamp: time.Now(),
			})
		}
	}
	entry.Restored = restored

	if err := c.store.SaveSales(ctx, result.Records); err != nil {
		fail("failed to save data", err)
		return
	}

	staffCount := len(calculator.Aggregate(result.Records))
	entry.StaffCount = staffCount
	entry.Status = "success"
	entry.CompletedAt = time.Now()
	if err := c.store.RecordImport(ctx, entry); err != nil {
		log.Error("record import log", zap.Error(err))
	}

	report := &Report{
		ImportID:         entry.ID,
		Filename:         filename,
		SheetName:        result.SheetName,
		Format:           result.Format,
		TotalRows:        result.TotalRows,
		ImportedRows:     len(result.Records),
		SkippedRows:      result.SkippedRows,
		StaffCount:       staffCount,
		RestoredStatuses: restored,
		Mappings:         result.Mappings,
		Missing:          result.Missing,
		Duration:         time.Since(startTime),
	}
	log.Info("import done",
		zap.Int("rows", report.ImportedRows),
		zap.Int("staff", staffCount),
		zap.Int("restored_statuses", restored),
		zap.Duration("duration", report.Duration),
	)

	c.sendProgress(ctx, ch, ProgressEvent{
		Type:      EventDone,
		Message:   "Data uploaded successfully",
		Data:      report,
		Timestamp: time.Now(),
	})
}

// sendProgress blocks until the event is delivered or ctx is done.
func (c *Coordinator) sendProgress(ctx context.Context, ch chan<- ProgressEvent, event ProgressEvent) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func fingerprint(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// Drain consumes events until the channel closes and returns the final one.
func Drain(ch <-chan ProgressEvent, fn func(ProgressEvent)) ProgressEvent {
	var last ProgressEvent
	for evt := range ch {
		if fn != nil {
			fn(evt)
		}
		last = evt
	}
	return last
}
