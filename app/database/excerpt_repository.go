package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ExcerptRepository = (*ExcerptRepo)(nil)

type ExcerptRepo struct {
	db *DB
}

func NewExcerptRepository(db *DB) *ExcerptRepo {
	return &ExcerptRepo{db: db}
}

func (r *ExcerptRepo) GetExcerpt(link string) (string, bool, error) {
	var excerpt string
	err := r.db.QueryRow("SELECT excerpt FROM excerpts WHERE link = ?", link).Scan(&excerpt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get excerpt: %w", err)
	}
	return excerpt, true, nil
}

func (r *ExcerptRepo) SaveExcerpt(link, excerpt string) error {
	_, err := r.db.Exec(`
		INSERT INTO excerpts (link, excerpt, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			excerpt = excluded.excerpt,
			created_at = excluded.created_at
	`, link, excerpt, formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to save excerpt: %w", err)
	}
	return nil
}
