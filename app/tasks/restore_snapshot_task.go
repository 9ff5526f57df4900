package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/sheet-dir/app/source"
)

// RestoreSnapshotTask publishes the last stored feed body of a source as a
// stale collection so the directory is browsable before the first fetch ends.
type RestoreSnapshotTask struct {
	Task
	SourceConfig *source.Config
	deps         *Dependencies
}

func NewRestoreSnapshotTask(sourceName string, sourceConfig *source.Config, deps *Dependencies) *RestoreSnapshotTask {
	return &RestoreSnapshotTask{
		Task:         NewTask(TaskTypeRestoreSnapshot, sourceName, sourceConfig.URL),
		SourceConfig: sourceConfig,
		deps:         deps,
	}
}

func (t *RestoreSnapshotTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	snapshot, err := t.deps.SnapshotRepo.GetSnapshot(t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if snapshot == nil {
		slog.Debug("No snapshot stored", "source", t.SourceName)
		return nil
	}
	if snapshot.URL != t.SourceConfig.URL {
		slog.Debug("Snapshot belongs to a previous source URL, skipping", "source", t.SourceName, "snapshot_url", snapshot.URL)
		return nil
	}

	collection, err := buildCollection(ctx, t.SourceConfig, snapshot.Body, t.deps, false)
	if err != nil {
		return fmt.Errorf("failed to rebuild snapshot: %w", err)
	}
	collection.LoadedAt = snapshot.FetchedAt
	collection.Stale = true

	if !t.deps.Loader.Store().Restore(t.SourceName, collection) {
		slog.Debug("Fresh load already published, snapshot discarded", "source", t.SourceName)
		return nil
	}

	slog.Info("Task completed",
		"type", "RestoreSnapshot",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"entries", len(collection.Entries),
		"fetched_at", snapshot.FetchedAt)

	return nil
}
