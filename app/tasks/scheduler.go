package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/sheet-dir/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache *source.ConfigCache
	deps        *Dependencies
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *source.ConfigCache, deps *Dependencies, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache: configCache,
		deps:        deps,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.configCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		syncTask := NewSyncSourceConfigTask(sourceConfig.Name, sourceConfig, s.deps.SourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping LoadDirectoryTask", "source", sourceConfig.Name)
			continue
		}

		if s.deps.SnapshotRepo != nil {
			restoreTask := NewRestoreSnapshotTask(sourceConfig.Name, sourceConfig, s.deps)
			if err := s.EnqueueTask(restoreTask); err != nil {
				slog.Warn("Failed to enqueue RestoreSnapshotTask", "source", sourceConfig.Name, "error", err)
			}
		}

		loadTask := NewLoadDirectoryTask(sourceConfig.Name, sourceConfig, s.deps)
		if err := s.EnqueueTask(loadTask); err != nil {
			slog.Warn("Failed to enqueue LoadDirectoryTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Processing enabled source configurations for task scheduling", "count", len(sourceConfigs))

	now := time.Now().UTC()
	for _, sourceConfig := range sourceConfigs {
		src, err := s.deps.SourceRepo.GetSource(sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}
		if src == nil {
			slog.Warn("Source not found in database, skipping", "source", sourceConfig.Name)
			continue
		}

		if src.NextLoadAt != nil && src.NextLoadAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_load_at", src.NextLoadAt)
			continue
		}

		loadTask := NewLoadDirectoryTask(sourceConfig.Name, sourceConfig, s.deps)
		if err := s.EnqueueTask(loadTask); err != nil {
			slog.Warn("Failed to enqueue LoadDirectoryTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", append(task.LogAttrs(), "worker_id", workerID, "url", task.GetSourceURL(), "retry_count", task.GetRetryCount(), "error", err)...)

	if !task.CanRetry() {
		if task.GetMaxRetries() > 0 {
			slog.Error("Task failed after maximum retries", append(task.LogAttrs(), "max_retries", task.GetMaxRetries(), "last_error", err)...)
		}
		return
	}

	task.IncrementRetryCount()
	retryDelay := task.RetryDelay()

	slog.Warn("Task retry scheduled", append(task.LogAttrs(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())...)

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", task.LogAttrs()...)
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", append(task.LogAttrs(), "retry_count", task.GetRetryCount(), "error", retryErr)...)
			}
		}
	}()
}
