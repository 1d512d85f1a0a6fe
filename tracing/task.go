package tracing

import "time"

// KindRide is the kind of the tasks created for floor requests.
const KindRide = "ride"

// A TaskStep marks something that happened while a task was in flight.
type TaskStep struct {
	Time time.Time `json:"time"`
	What string    `json:"what"`
}

// A Task is a traced unit of work. For rides, Where is the elevator that
// accepted the request and Floor is the requested floor.
type Task struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	What      string     `json:"what"`
	Where     string     `json:"where"`
	Floor     int        `json:"floor"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Steps     []TaskStep `json:"steps"`
}

// Duration returns how long the task took. It is zero for a task that has
// not ended.
func (t Task) Duration() time.Duration {
	if t.EndTime.IsZero() {
		return 0
	}

	return t.EndTime.Sub(t.StartTime)
}

// TaskFilter is a function that can filter interesting tasks. If this
// function returns true, the task is considered useful.
type TaskFilter func(t Task) bool
