package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the operator API to manage background loads.
// Example usage:
//
//	scheduler := NewScheduler(configCache, deps)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewLoadDirectoryTask(name, sourceConfig, deps))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
