package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepo)(nil)

type SourceRepo struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// UpsertSource registers a source, updating its URL and format when the
// configuration changed.
func (r *SourceRepo) UpsertSource(name, sourceURL, format string) error {
	now := formatTime(time.Now().UTC())
	_, err := r.db.Exec(`
		INSERT INTO sources (name, source_url, format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_url = excluded.source_url,
			format = excluded.format,
			updated_at = excluded.updated_at
	`, name, sourceURL, format, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

func (r *SourceRepo) GetSource(name string) (*Source, error) {
	var source Source
	var lastLoadedAt, nextLoadAt sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRow(`
		SELECT name, source_url, format, last_status, last_error, entry_count, fingerprint,
		       last_loaded_at, next_load_at, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, name).Scan(
		&source.Name, &source.URL, &source.Format, &source.LastStatus, &source.LastError,
		&source.EntryCount, &source.Fingerprint, &lastLoadedAt, &nextLoadAt, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	source.LastLoadedAt = parseNullTime(lastLoadedAt)
	source.NextLoadAt = parseNullTime(nextLoadAt)
	source.CreatedAt = parseTime(createdAt)
	source.UpdatedAt = parseTime(updatedAt)

	return &source, nil
}

func (r *SourceRepo) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// RecordLoad stores the outcome of a load on the source row and appends it to
// the load history.
func (r *SourceRepo) RecordLoad(name string, result LoadResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	loadedAt := formatTime(result.LoadedAt.UTC())

	// A failed load keeps the fingerprint and count of the last good one.
	_, err = tx.Exec(`
		UPDATE sources
		SET last_status = ?, last_error = ?,
		    entry_count = CASE WHEN ? = 'loaded' THEN ? ELSE entry_count END,
		    fingerprint = CASE WHEN ? = 'loaded' THEN ? ELSE fingerprint END,
		    last_loaded_at = ?, next_load_at = ?, updated_at = ?
		WHERE name = ?
	`, result.Status, result.Error,
		result.Status, result.EntryCount,
		result.Status, result.Fingerprint,
		loadedAt, formatTime(result.NextLoadAt.UTC()), loadedAt, name)
	if err != nil {
		return fmt.Errorf("failed to update source load status: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO load_history (source_name, status, error, entry_count, fingerprint, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, name, result.Status, result.Error, result.EntryCount, result.Fingerprint,
		result.Duration.Milliseconds(), loadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert load history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load record: %w", err)
	}
	return nil
}

func (r *SourceRepo) GetRecentLoads(name string, limit int) ([]LoadRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, source_name, status, error, entry_count, fingerprint, duration_ms, created_at
		FROM load_history
		WHERE source_name = ?
		ORDER BY id DESC
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get load history: %w", err)
	}
	defer rows.Close()

	records := []LoadRecord{}
	for rows.Next() {
		var record LoadRecord
		var durationMs int64
		var createdAt string
		if err := rows.Scan(&record.ID, &record.SourceName, &record.Status, &record.Error,
			&record.EntryCount, &record.Fingerprint, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan load history row: %w", err)
		}
		record.Duration = time.Duration(durationMs) * time.Millisecond
		record.CreatedAt = parseTime(createdAt)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load history rows: %w", err)
	}

	return records, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
