package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

type progressBarView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) view() progressBarView {
	b.Lock()
	defer b.Unlock()

	return progressBarView{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// IncrementTotal raises the number of expected elements.
func (b *ProgressBar) IncrementTotal(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Total += amount
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		amount = b.InProgress
	}

	b.InProgress -= amount
	b.Finished += amount
}

// ProgressHook moves a progress bar as elevators accept and serve floors.
// A floor counts as in progress from the moment an elevator accepts it
// until its door opens there.
type ProgressHook struct {
	bar *ProgressBar
}

// NewProgressHook creates a hook that drives bar.
func NewProgressHook(bar *ProgressBar) *ProgressHook {
	return &ProgressHook{bar: bar}
}

// Func implements hooking.Hook.
func (h *ProgressHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case elevator.HookPosRequestEnqueued:
		if added, _ := ctx.Detail.(bool); added {
			h.bar.IncrementInProgress(1)
		}
	case elevator.HookPosRequestServed:
		h.bar.MoveInProgressToFinished(1)
	}
}
