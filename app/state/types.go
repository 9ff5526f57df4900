package state

import (
	"time"

	"github.com/lysyi3m/sheet-dir/app/directory"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Collection is the immutable result of one successful load.
type Collection struct {
	Entries     []directory.Entry
	TagMode     directory.TagMode
	Tags        []string
	Fingerprint string
	LoadedAt    time.Time
	Stale       bool // restored from a stored snapshot, not fetched yet
}

func NewCollection(entries []directory.Entry, fingerprint string, loadedAt time.Time) *Collection {
	mode := directory.DetectTagMode(entries)
	return &Collection{
		Entries:     entries,
		TagMode:     mode,
		Tags:        directory.Vocabulary(entries, mode),
		Fingerprint: fingerprint,
		LoadedAt:    loadedAt,
	}
}

var emptyCollection = &Collection{
	Entries: []directory.Entry{},
	TagMode: directory.TagModeLegacy,
	Tags:    []string{},
}

// EmptyCollection is what an unloaded or failed source exposes.
func EmptyCollection() *Collection {
	return emptyCollection
}

type Snapshot struct {
	Status     Status
	Collection *Collection // never nil; empty unless Status is loaded
	Error      string
	Seq        uint64
	InFlight   bool
	UpdatedAt  time.Time
}
