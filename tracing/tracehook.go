package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
	"github.com/sarchlab/elevsim/idgen"
)

// NamedHookable is a hookable object with a name.
type NamedHookable interface {
	hooking.Hookable
	Name() string
	Hooks() []hooking.Hook
}

// CollectTrace lets the tracer collect rides from a single domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.tracer == tracer {
			panic(fmt.Sprintf("domain %s already has this tracer",
				domain.Name()))
		}
	}

	domain.AcceptHook(NewTraceHook(tracer, idgen.NewParallel(), nil))
}

// NewTraceHook creates a hook that turns elevator events into ride tasks.
// One hook can be shared by every elevator of a controller. A nil
// timeTeller uses the wall clock.
func NewTraceHook(
	tracer Tracer,
	ids idgen.Generator,
	timeTeller TimeTeller,
) hooking.Hook {
	if timeTeller == nil {
		timeTeller = wallClock{}
	}

	return &traceHook{
		tracer:     tracer,
		ids:        ids,
		timeTeller: timeTeller,
		inflight:   make(map[rideKey]Task),
	}
}

type rideKey struct {
	where string
	floor int
}

type traceHook struct {
	tracer     Tracer
	ids        idgen.Generator
	timeTeller TimeTeller

	lock     sync.Mutex
	inflight map[rideKey]Task
}

type named interface {
	Name() string
}

// Func maps elevator hook positions to task events.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	d, ok := ctx.Domain.(named)
	if !ok {
		return
	}

	floor, ok := ctx.Item.(int)
	if !ok {
		return
	}

	switch ctx.Pos {
	case elevator.HookPosRequestEnqueued:
		if added, _ := ctx.Detail.(bool); added {
			h.startRide(d.Name(), floor)
		}
	case elevator.HookPosRequestServed:
		h.endRide(d.Name(), floor)
	case elevator.HookPosMalfunction:
		h.stepRides(d.Name(), fmt.Sprintf("malfunction at floor %d", floor))
	case elevator.HookPosRecover:
		h.stepRides(d.Name(), fmt.Sprintf("recover at floor %d", floor))
	}
}

func (h *traceHook) startRide(where string, floor int) {
	task := Task{
		ID:        h.ids.Generate(),
		Kind:      KindRide,
		What:      fmt.Sprintf("floor %d", floor),
		Where:     where,
		Floor:     floor,
		StartTime: h.timeTeller.CurrentTime(),
	}

	h.lock.Lock()
	h.inflight[rideKey{where, floor}] = task
	h.lock.Unlock()

	h.tracer.StartTask(task)
}

func (h *traceHook) endRide(where string, floor int) {
	key := rideKey{where, floor}

	h.lock.Lock()
	task, ok := h.inflight[key]
	delete(h.inflight, key)
	h.lock.Unlock()

	if !ok {
		return
	}

	task.EndTime = h.timeTeller.CurrentTime()
	h.tracer.EndTask(task)
}

func (h *traceHook) stepRides(where, what string) {
	step := TaskStep{Time: h.timeTeller.CurrentTime(), What: what}

	var stepped []Task

	h.lock.Lock()
	for key, task := range h.inflight {
		if key.where != where {
			continue
		}

		task.Steps = append(task.Steps, step)
		h.inflight[key] = task
		stepped = append(stepped, task)
	}
	h.lock.Unlock()

	for _, task := range stepped {
		h.tracer.StepTask(task)
	}
}
