package database

type SourceRepository interface {
	GetSource(name string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(name, sourceURL, format string) error
	RecordLoad(name string, result LoadResult) error
	GetRecentLoads(name string, limit int) ([]LoadRecord, error)
}

type SnapshotRepository interface {
	SaveSnapshot(snapshot Snapshot) error
	GetSnapshot(name string) (*Snapshot, error)
}

type ExcerptRepository interface {
	GetExcerpt(link string) (string, bool, error)
	SaveExcerpt(link, excerpt string) error
}
