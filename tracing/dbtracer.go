package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/elevsim/datarecording"
)

// RideTable is the table DBTracer writes finished rides into.
const RideTable = "ride"

// RideEntry is one row of the ride table. Times are seconds since the
// tracer was created.
type RideEntry struct {
	ID        string
	Elevator  string
	Floor     int
	StartTime float64
	EndTime   float64
	Duration  float64
	Steps     int
}

// DBTracer stores finished rides with a DataRecorder.
type DBTracer struct {
	lock     sync.Mutex
	backend  datarecording.DataRecorder
	origin   time.Time
	inflight map[string]Task
}

// NewDBTracer creates a DBTracer and the ride table. Stored times are
// relative to origin.
func NewDBTracer(
	backend datarecording.DataRecorder,
	origin time.Time,
) *DBTracer {
	backend.CreateTable(RideTable, RideEntry{})

	return &DBTracer{
		backend:  backend,
		origin:   origin,
		inflight: make(map[string]Task),
	}
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	startingTaskMustBeValid(task)

	t.lock.Lock()
	t.inflight[task.ID] = task
	t.lock.Unlock()
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task where must be set")
	}
}

// StepTask records the steps of a task.
func (t *DBTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	original.Steps = task.Steps
	t.inflight[task.ID] = original
}

// EndTask writes the task. Tasks that were never started are ignored.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	original, ok := t.inflight[task.ID]
	delete(t.inflight, task.ID)
	t.lock.Unlock()

	if !ok {
		return
	}

	steps := len(original.Steps)
	if len(task.Steps) > steps {
		steps = len(task.Steps)
	}

	start := original.StartTime.Sub(t.origin).Seconds()
	end := task.EndTime.Sub(t.origin).Seconds()

	t.backend.InsertData(RideTable, RideEntry{
		ID:        original.ID,
		Elevator:  original.Where,
		Floor:     original.Floor,
		StartTime: start,
		EndTime:   end,
		Duration:  end - start,
		Steps:     steps,
	})
}

// Flush writes buffered rides.
func (t *DBTracer) Flush() {
	t.backend.Flush()
}
