// Package tracing follows each floor request from the moment an elevator
// accepts it until the door opens at that floor.
package tracing

import "time"

// A Tracer can collect task traces.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}

// TimeTeller tells the current time.
type TimeTeller interface {
	CurrentTime() time.Time
}

type wallClock struct{}

func (wallClock) CurrentTime() time.Time {
	return time.Now()
}
