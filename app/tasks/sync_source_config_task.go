package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/source"
)

type SyncSourceConfigTask struct {
	Task
	SourceConfig *source.Config
	sourceRepo   database.SourceRepository
}

func NewSyncSourceConfigTask(sourceName string, sourceConfig *source.Config, sourceRepo database.SourceRepository) *SyncSourceConfigTask {
	return &SyncSourceConfigTask{
		Task:         NewTask(TaskTypeSyncSourceConfig, sourceName, sourceConfig.URL),
		SourceConfig: sourceConfig,
		sourceRepo:   sourceRepo,
	}
}

func (t *SyncSourceConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.sourceRepo.UpsertSource(t.SourceName, t.SourceConfig.URL, string(t.SourceConfig.Format))
	if err != nil {
		return fmt.Errorf("failed to sync source configuration: %w", err)
	}

	slog.Debug("Task completed",
		"type", "SyncSourceConfig",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"url", t.SourceConfig.URL,
		"enabled", t.SourceConfig.Settings.Enabled)

	return nil
}
