package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

var _ SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo keeps the last successfully fetched feed body of each source,
// zstd-compressed, so a restart can serve it before the first fetch finishes.
type SnapshotRepo struct {
	db      *DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewSnapshotRepository(db *DB) (*SnapshotRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &SnapshotRepo{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close releases the compressor resources. The database is owned by the caller.
func (r *SnapshotRepo) Close() error {
	r.decoder.Close()
	return r.encoder.Close()
}

func (r *SnapshotRepo) SaveSnapshot(snapshot Snapshot) error {
	compressed := r.encoder.EncodeAll(snapshot.Body, nil)

	_, err := r.db.Exec(`
		INSERT INTO snapshots (source_name, source_url, fingerprint, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_name) DO UPDATE SET
			source_url = excluded.source_url,
			fingerprint = excluded.fingerprint,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, snapshot.SourceName, snapshot.URL, snapshot.Fingerprint, compressed, formatTime(snapshot.FetchedAt.UTC()))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) GetSnapshot(name string) (*Snapshot, error) {
	var snapshot Snapshot
	var compressed []byte
	var fetchedAt string

	err := r.db.QueryRow(`
		SELECT source_name, source_url, fingerprint, body, fetched_at
		FROM snapshots
		WHERE source_name = ?
	`, name).Scan(&snapshot.SourceName, &snapshot.URL, &snapshot.Fingerprint, &compressed, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	body, err := r.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	snapshot.Body = body
	snapshot.FetchedAt = parseTime(fetchedAt)
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Unix(0, 0).UTC()
	}

	return &snapshot, nil
}
