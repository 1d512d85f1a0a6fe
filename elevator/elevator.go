// Package elevator models a single elevator unit: its request queue, its
// Idle/Moving/DoorOpen state machine and the control loop that drives it.
package elevator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/hooking"
)

// An Elevator is one car. It is mutated concurrently by the controller
// (requests and fault signals) and by its own loop (motion and doors).
type Elevator struct {
	*hooking.HookableBase

	id     int
	name   string
	timing config.TimingConfig
	queue  *RequestQueue

	floor     atomic.Int64
	direction atomic.Int32
	status    atomic.Int32
	state     atomic.Int32

	runLock sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

// ID returns the fleet index of the elevator.
func (e *Elevator) ID() int { return e.id }

// Name returns the name of the elevator.
func (e *Elevator) Name() string { return e.name }

// Floor returns the current floor.
func (e *Elevator) Floor() int { return int(e.floor.Load()) }

// Direction returns the current travel direction.
func (e *Elevator) Direction() Direction { return Direction(e.direction.Load()) }

// Status returns the current operating status.
func (e *Elevator) Status() Status { return Status(e.status.Load()) }

// State returns the current state of the motion state machine.
func (e *Elevator) State() State { return State(e.state.Load()) }

// Queue returns the request queue of the elevator.
func (e *Elevator) Queue() *RequestQueue { return e.queue }

// Pending returns the number of floors still to be served.
func (e *Elevator) Pending() int { return e.queue.Len() }

// Running reports whether the control loop is alive.
func (e *Elevator) Running() bool { return e.running.Load() }

// Snapshot returns a copy of the observable fields.
func (e *Elevator) Snapshot() Snapshot {
	return Snapshot{
		ID:        e.id,
		Name:      e.name,
		Floor:     e.Floor(),
		Direction: e.Direction().String(),
		Status:    e.Status().String(),
		State:     e.State().String(),
		Up:        e.queue.Up(),
		Down:      e.queue.Down(),
		Running:   e.Running(),
	}
}

// AddRequest enqueues a stop at floor. Requests are accepted in every
// status, including Malfunction, and are served once the elevator runs
// again. It returns false if the floor was already pending.
func (e *Elevator) AddRequest(floor int) bool {
	added := e.queue.Add(floor, e.Floor())
	e.invoke(HookPosRequestEnqueued, floor, added)

	return added
}

// Malfunction suspends the elevator. Pending requests are kept.
func (e *Elevator) Malfunction() {
	prev := Status(e.status.Swap(int32(StatusMalfunction)))
	if prev == StatusMalfunction {
		return
	}

	e.invoke(HookPosMalfunction, e.Floor(), prev)
}

// Recover ends a malfunction and restarts the state machine from Idle. It
// does nothing if the elevator is not malfunctioning.
func (e *Elevator) Recover() {
	if !e.status.CompareAndSwap(int32(StatusMalfunction), int32(StatusIdle)) {
		return
	}

	e.direction.Store(int32(DirIdle))
	e.state.Store(int32(StateIdle))
	e.invoke(HookPosRecover, e.Floor(), nil)
}

// Tick runs one step of the state machine and reports whether the elevator
// made progress. A malfunctioning elevator never makes progress.
func (e *Elevator) Tick(ctx context.Context) bool {
	if e.Status() == StatusMalfunction {
		return false
	}

	switch e.State() {
	case StateIdle:
		return e.depart()
	case StateMoving:
		return e.move(ctx)
	case StateDoorOpen:
		return e.serveFloor(ctx)
	default:
		panic("unknown elevator state")
	}
}

// decide picks what an idle elevator at floor does next. Up is preferred
// whenever both directions have work.
func decide(q *RequestQueue, floor int) (State, Direction) {
	if !q.HasAny() {
		return StateIdle, DirIdle
	}

	if q.StopHere(floor) {
		return StateDoorOpen, DirIdle
	}

	q.Rebalance(floor)

	if q.HasUp() {
		return StateMoving, DirUp
	}

	return StateMoving, DirDown
}

func (e *Elevator) depart() bool {
	floor := e.Floor()

	next, dir := decide(e.queue, floor)
	switch next {
	case StateIdle:
		return false
	case StateDoorOpen:
		e.state.Store(int32(StateDoorOpen))
	case StateMoving:
		e.direction.Store(int32(dir))
		e.state.Store(int32(StateMoving))
		e.invoke(HookPosDeparture, floor, dir)
	}

	return true
}

func (e *Elevator) move(ctx context.Context) bool {
	if !e.updateStatus(StatusMoving) {
		return false
	}

	dir := e.Direction()
	floor := int(e.floor.Add(int64(dir.step())))
	e.invoke(HookPosFloorReached, floor, dir)

	if !e.wait(ctx, e.timing.Move()) {
		return false
	}

	if e.queue.StopHere(floor) {
		e.state.Store(int32(StateDoorOpen))
	}

	return true
}

func (e *Elevator) serveFloor(ctx context.Context) bool {
	if !e.updateStatus(StatusDoorOpen) {
		return false
	}

	floor := e.Floor()
	e.invoke(HookPosDoorOpen, floor, nil)

	if e.queue.Clear(floor) {
		e.invoke(HookPosRequestServed, floor, nil)
	}

	completed := e.wait(ctx, e.timing.Door())

	e.invoke(HookPosDoorClose, floor, nil)
	e.direction.Store(int32(DirIdle))
	e.updateStatus(StatusIdle)
	e.state.Store(int32(StateIdle))

	return completed
}

// updateStatus sets the status unless the elevator is malfunctioning, in
// which case only Recover may change it.
func (e *Elevator) updateStatus(s Status) bool {
	for {
		cur := e.status.Load()
		if Status(cur) == StatusMalfunction {
			return false
		}

		if e.status.CompareAndSwap(cur, int32(s)) {
			return true
		}
	}
}

// wait blocks for d or until ctx is done. It returns false if ctx ended
// first.
func (e *Elevator) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Start launches the control loop. The loop runs until Stop is called or
// ctx is cancelled. Starting an elevator twice has no effect.
func (e *Elevator) Start(ctx context.Context) {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	if e.done != nil {
		return
	}

	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	e.running.Store(true)

	go e.run(ctx, e.done)
}

func (e *Elevator) run(ctx context.Context, done chan struct{}) {
	defer func() {
		e.running.Store(false)
		e.invoke(HookPosLoopStopped, e.Floor(), nil)
		close(done)
	}()

	poll := e.timing.PollInterval()

	for {
		if ctx.Err() != nil {
			return
		}

		if e.Status() != StatusMalfunction {
			e.Tick(ctx)
		}

		if !e.wait(ctx, poll) {
			return
		}
	}
}

// Stop terminates the control loop and waits for it to exit, interrupting
// any move or door delay in progress. It is safe to call more than once.
func (e *Elevator) Stop() {
	e.runLock.Lock()
	cancel, done := e.cancel, e.done
	e.runLock.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (e *Elevator) invoke(pos *hooking.HookPos, floor int, detail any) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   floor,
		Detail: detail,
	})
}
