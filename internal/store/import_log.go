package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

// RecordImport inserts an import log entry
func (s *Store) RecordImport(ctx context.Context, log model.ImportLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (
			id, filename, file_size, file_hash,
			total_rows, skipped_rows, staff_count, restored_statuses,
			status, error_message, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID, log.Filename, log.FileSize, log.FileHash,
		log.TotalRows, log.SkippedRows, log.StaffCount, log.Restored,
		log.Status, log.Error, log.StartedAt.UTC(), log.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// LastImport returns the newest import log entry
func (s *Store) LastImport(ctx context.Context) (model.ImportLog, error) {
	var log model.ImportLog
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_size, file_hash,
			total_rows, skipped_rows, staff_count, restored_statuses,
			status, error_message, started_at, completed_at
		FROM import_logs
		ORDER BY completed_at DESC
		LIMIT 1
	`).Scan(
		&log.ID, &log.Filename, &log.FileSize, &log.FileHash,
		&log.TotalRows, &log.SkippedRows, &log.StaffCount, &log.Restored,
		&log.Status, &log.Error, &log.StartedAt, &log.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ImportLog{}, ErrNotFound
		}
		return model.ImportLog{}, fmt.Errorf("failed to query import log: %w", err)
	}
	return log, nil
}
