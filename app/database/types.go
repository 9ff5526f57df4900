package database

import (
	"time"
)

type Source struct {
	Name         string
	URL          string
	Format       string
	LastStatus   string
	LastError    string
	EntryCount   int
	Fingerprint  string
	LastLoadedAt *time.Time
	NextLoadAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LoadResult struct {
	Status      string
	Error       string
	EntryCount  int
	Fingerprint string
	Duration    time.Duration
	LoadedAt    time.Time
	NextLoadAt  time.Time
}

type LoadRecord struct {
	ID          int64
	SourceName  string
	Status      string
	Error       string
	EntryCount  int
	Fingerprint string
	Duration    time.Duration
	CreatedAt   time.Time
}

type Snapshot struct {
	SourceName  string
	URL         string
	Fingerprint string
	Body        []byte
	FetchedAt   time.Time
}
