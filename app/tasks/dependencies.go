package tasks

import (
	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/fetch"
	"github.com/lysyi3m/sheet-dir/app/state"
)

// Dependencies are the collaborators shared by all tasks.
type Dependencies struct {
	Loader       *state.Loader
	Fetcher      *fetch.Fetcher
	Excerpts     *fetch.ExcerptExtractor // nil disables description extraction
	SourceRepo   database.SourceRepository
	SnapshotRepo database.SnapshotRepository
	ExcerptRepo  database.ExcerptRepository
}
