package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/directory"
	"github.com/lysyi3m/sheet-dir/app/fetch"
	"github.com/lysyi3m/sheet-dir/app/sheet"
	"github.com/lysyi3m/sheet-dir/app/source"
	"github.com/lysyi3m/sheet-dir/app/state"
)

// Upper bound of page downloads for description excerpts in a single load.
const maxExcerptFetches = 25

type LoadDirectoryTask struct {
	Task
	SourceConfig *source.Config
	deps         *Dependencies
}

func NewLoadDirectoryTask(sourceName string, sourceConfig *source.Config, deps *Dependencies) *LoadDirectoryTask {
	return &LoadDirectoryTask{
		Task:         NewTask(TaskTypeLoadDirectory, sourceName, sourceConfig.URL),
		SourceConfig: sourceConfig,
		deps:         deps,
	}
}

func (t *LoadDirectoryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	// Only the caller that ran the load records it; callers that joined an
	// in-flight load share its result without writing history twice.
	var (
		executed bool
		data     []byte
		duration time.Duration
	)
	collection, applied, err := t.deps.Loader.Load(ctx, t.SourceName, t.SourceConfig.URL, func(ctx context.Context) (*state.Collection, error) {
		executed = true
		started := time.Now()
		body, collection, err := t.run(ctx)
		data, duration = body, time.Since(started)
		return collection, err
	})

	if executed {
		if applied {
			t.record(data, collection, err, duration)
		} else {
			slog.Debug("Load superseded by a newer one, not recorded", "source", t.SourceName, "url", t.SourceConfig.URL)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	slog.Info("Task completed",
		"type", "LoadDirectory",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"entries", len(collection.Entries),
		"tag_mode", collection.TagMode,
		"tags", len(collection.Tags))

	return nil
}

func (t *LoadDirectoryTask) run(ctx context.Context) ([]byte, *state.Collection, error) {
	data, err := t.deps.Fetcher.Fetch(ctx, t.SourceConfig.URL, t.SourceConfig.ProxyURL, t.SourceConfig.Timeout())
	if err != nil {
		return nil, nil, err
	}

	collection, err := buildCollection(ctx, t.SourceConfig, data, t.deps, true)
	if err != nil {
		return data, nil, err
	}

	return data, collection, nil
}

func (t *LoadDirectoryTask) record(data []byte, collection *state.Collection, loadErr error, duration time.Duration) {
	repo := t.deps.SourceRepo
	if repo == nil {
		return
	}

	if err := repo.UpsertSource(t.SourceName, t.SourceConfig.URL, string(t.SourceConfig.Format)); err != nil {
		slog.Error("Failed to register source", "source", t.SourceName, "error", err)
		return
	}

	now := time.Now().UTC()
	result := database.LoadResult{
		Status:     string(state.StatusLoaded),
		Duration:   duration,
		LoadedAt:   now,
		NextLoadAt: now.Add(t.SourceConfig.RefreshInterval()),
	}
	if loadErr != nil {
		result.Status = string(state.StatusFailed)
		result.Error = loadErr.Error()
	} else {
		result.EntryCount = len(collection.Entries)
		result.Fingerprint = collection.Fingerprint
	}

	if err := repo.RecordLoad(t.SourceName, result); err != nil {
		slog.Error("Failed to record load", "source", t.SourceName, "error", err)
	}

	if loadErr != nil || t.deps.SnapshotRepo == nil {
		return
	}

	snapshot := database.Snapshot{
		SourceName:  t.SourceName,
		URL:         t.SourceConfig.URL,
		Fingerprint: collection.Fingerprint,
		Body:        data,
		FetchedAt:   now,
	}
	if err := t.deps.SnapshotRepo.SaveSnapshot(snapshot); err != nil {
		slog.Error("Failed to save snapshot", "source", t.SourceName, "error", err)
	}
}

// buildCollection turns a raw feed body into a collection. Excerpts are
// downloaded only when fetchExcerpts is set; cached ones are always applied.
func buildCollection(ctx context.Context, cfg *source.Config, data []byte, deps *Dependencies, fetchExcerpts bool) (*state.Collection, error) {
	table, err := sheet.ParseFormat(cfg.Format, data)
	if err != nil {
		return nil, err
	}

	resolution := directory.Resolve(table.Headers, cfg.Candidates())
	for _, field := range directory.Fields {
		if _, ok := resolution.Header(field); !ok {
			slog.Debug("Column not resolved", "source", cfg.Name, "field", field)
		}
	}

	entries := directory.NormalizeAll(table, resolution, cfg.NormalizeOptions())

	if cfg.Settings.ExtractDescriptions {
		enrichDescriptions(ctx, cfg.Name, entries, deps, fetchExcerpts)
	}

	return state.NewCollection(entries, fetch.Fingerprint(data), time.Now().UTC()), nil
}

// enrichDescriptions fills empty descriptions in place. Failures only cost
// the excerpt, never the load.
func enrichDescriptions(ctx context.Context, sourceName string, entries []directory.Entry, deps *Dependencies, fetchExcerpts bool) {
	fetched := 0
	cached := 0

	for i := range entries {
		entry := &entries[i]
		if entry.Description != "" || entry.Link == "" {
			continue
		}

		if deps.ExcerptRepo != nil {
			excerpt, found, err := deps.ExcerptRepo.GetExcerpt(entry.Link)
			if err != nil {
				slog.Warn("Failed to read cached excerpt", "source", sourceName, "link", entry.Link, "error", err)
			} else if found {
				entry.Description = excerpt
				cached++
				continue
			}
		}

		if !fetchExcerpts || deps.Excerpts == nil || fetched >= maxExcerptFetches || ctx.Err() != nil {
			continue
		}
		fetched++

		excerpt, err := deps.Excerpts.Run(ctx, entry.Link)
		if err != nil {
			slog.Debug("Excerpt extraction failed", "source", sourceName, "link", entry.Link, "error", err)
			continue
		}
		entry.Description = excerpt

		if deps.ExcerptRepo != nil {
			if err := deps.ExcerptRepo.SaveExcerpt(entry.Link, excerpt); err != nil {
				slog.Warn("Failed to cache excerpt", "source", sourceName, "link", entry.Link, "error", err)
			}
		}
	}

	if fetched > 0 || cached > 0 {
		slog.Debug("Descriptions enriched", "source", sourceName, "fetched", fetched, "cached", cached)
	}
}
