// Package eventlog writes elevator and controller events as log lines.
package eventlog

import (
	"io"
	"log"

	"github.com/sarchlab/elevsim/controller"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
)

type named interface {
	Name() string
}

// LogHook prints one line per event. It is safe to share between the
// controller and all elevators.
type LogHook struct {
	*log.Logger

	verbose bool
}

// NewLogHook creates a LogHook writing to w. Floor-by-floor movement is
// only printed when verbose is set.
func NewLogHook(w io.Writer, verbose bool) *LogHook {
	return &LogHook{
		Logger:  log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		verbose: verbose,
	}
}

// Func implements hooking.Hook.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	where := "?"
	if n, ok := ctx.Domain.(named); ok {
		where = n.Name()
	}

	switch ctx.Pos {
	case controller.HookPosRequestDispatched:
		h.Printf("%s: request %d dispatched to elevator %d",
			where, ctx.Item, ctx.Detail)
	case controller.HookPosRequestRejected:
		h.Printf("%s: request %d rejected: %v", where, ctx.Item, ctx.Detail)
	case elevator.HookPosRequestEnqueued:
		if ctx.Detail == true {
			h.Printf("%s: request %d accepted", where, ctx.Item)
		}
	case elevator.HookPosDeparture:
		h.Printf("%s: leaving floor %d going %v", where, ctx.Item, ctx.Detail)
	case elevator.HookPosFloorReached:
		if h.verbose {
			h.Printf("%s: floor %d", where, ctx.Item)
		}
	case elevator.HookPosDoorOpen:
		h.Printf("%s: door open at %d", where, ctx.Item)
	case elevator.HookPosDoorClose:
		h.Printf("%s: door close at %d", where, ctx.Item)
	case elevator.HookPosMalfunction:
		h.Printf("%s: MALFUNCTION at floor %d", where, ctx.Item)
	case elevator.HookPosRecover:
		h.Printf("%s: recovered at floor %d", where, ctx.Item)
	case elevator.HookPosLoopStopped:
		h.Printf("%s: stopped at floor %d", where, ctx.Item)
	}
}
