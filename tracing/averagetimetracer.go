package tracing

import (
	"sync"
	"time"
)

// AverageTimeTracer collects the mean duration of the tasks that pass its
// filter. Overlapping tasks are each counted in full.
type AverageTimeTracer struct {
	filter TaskFilter

	lock          sync.Mutex
	averageTime   time.Duration
	inflightTasks map[string]Task
	taskCount     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer. A nil filter
// accepts every task.
func NewAverageTimeTracer(filter TaskFilter) *AverageTimeTracer {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &AverageTimeTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
	}
}

// AverageTime returns the mean time of the finished tasks.
func (t *AverageTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.averageTime
}

// TotalCount returns the number of finished tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time.
func (t *AverageTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *AverageTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask folds the task time into the average.
func (t *AverageTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	taskTime := task.EndTime.Sub(original.StartTime)
	t.averageTime = time.Duration(
		(float64(t.averageTime)*float64(t.taskCount) + float64(taskTime)) /
			float64(t.taskCount+1))
	delete(t.inflightTasks, task.ID)
	t.taskCount++
}
