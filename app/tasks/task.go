package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

type TaskType string

const (
	TaskTypeLoadDirectory    TaskType = "load_directory"
	TaskTypeRestoreSnapshot  TaskType = "restore_snapshot"
	TaskTypeSyncSourceConfig TaskType = "sync_source_config"
)

// Retries per task type. A failed load is already visible as the failed state
// and the next due load is its retry, so loads and restores are never re-run.
var retryPolicy = map[TaskType]int{
	TaskTypeLoadDirectory:    0,
	TaskTypeRestoreSnapshot:  0,
	TaskTypeSyncSourceConfig: 3,
}

const maxRetryDelay = 30 * time.Second

var taskSeq atomic.Uint64

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSourceName() string
	GetSourceURL() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	RetryDelay() time.Duration
	Start()
	GetDuration() time.Duration
	LogAttrs() []any
}

// Task is the bookkeeping shared by every task: which source and URL it works
// on, and how often it may be re-enqueued.
type Task struct {
	ID         string
	Type       TaskType
	SourceName string
	SourceURL  string
	RetryCount int
	MaxRetries int
	CreatedAt  time.Time
	StartedAt  *time.Time
}

func NewTask(taskType TaskType, sourceName, sourceURL string) Task {
	return Task{
		ID:         fmt.Sprintf("%s/%s/%d", sourceName, taskType, taskSeq.Add(1)),
		Type:       taskType,
		SourceName: sourceName,
		SourceURL:  sourceURL,
		MaxRetries: retryPolicy[taskType],
		CreatedAt:  time.Now(),
	}
}

func (t *Task) GetID() string         { return t.ID }
func (t *Task) GetType() TaskType     { return t.Type }
func (t *Task) GetSourceName() string { return t.SourceName }
func (t *Task) GetSourceURL() string  { return t.SourceURL }
func (t *Task) GetRetryCount() int    { return t.RetryCount }
func (t *Task) GetMaxRetries() int    { return t.MaxRetries }

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// RetryDelay doubles with every retry already taken, starting at one second.
func (t *Task) RetryDelay() time.Duration {
	if t.RetryCount < 1 {
		return time.Second
	}
	delay := time.Second << uint(t.RetryCount-1)
	if delay <= 0 || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

// LogAttrs identifies the task in log lines.
func (t *Task) LogAttrs() []any {
	attrs := []any{"type", string(t.Type), "id", t.ID, "source", t.SourceName}
	if t.StartedAt != nil {
		attrs = append(attrs, "queued", t.StartedAt.Sub(t.CreatedAt))
	}
	return attrs
}
