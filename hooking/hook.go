// Package hooking is how elevators and the controller report what they do.
// Loggers, ride tracers and progress bars attach a Hook; the elevator loop
// fires it at fixed positions such as "door open" or "malfunction" without
// knowing who listens.
package hooking

// HookPos names one reporting site, for example an elevator reaching a
// floor. Positions are compared by pointer, so each site declares its own
// package-level HookPos.
type HookPos struct {
	Name string
}

// HookCtx describes a single event.
type HookCtx struct {
	// Domain is the elevator or controller that fired the hook.
	Domain Hookable

	// Pos is the site that fired.
	Pos *HookPos

	// Item is the floor the event is about.
	Item any

	// Detail depends on Pos: a direction, a previous status, an error or
	// the ID of the elevator a request went to. Nil at most sites.
	Detail any
}

// Hookable is implemented by elevators and the controller.
type Hookable interface {
	// AcceptHook attaches a hook. All hooks are attached before the
	// elevator loops start and stay attached for the life of the fleet.
	AcceptHook(hook Hook)

	// NumHooks returns how many hooks are attached.
	NumHooks() int

	// InvokeHook reports an event to every attached hook in the order they
	// were attached.
	InvokeHook(ctx HookCtx)
}

// Hook observes events. Each elevator fires from its own goroutine and one
// hook is usually shared by the whole fleet, so implementations must be
// safe for concurrent use.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc lets a plain function observe events.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps the hook list of an elevator or controller. Embedders
// pass themselves as HookCtx.Domain when firing.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase returns a HookableBase with no hooks attached.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// NumHooks returns how many hooks are attached.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// AcceptHook attaches a hook. Attaching the same hook value twice would
// report every event twice and panics instead. HookFunc values cannot be
// compared and are always accepted.
func (h *HookableBase) AcceptHook(hook Hook) {
	if h.isAttached(hook) {
		panic("hook attached twice")
	}

	h.hooks = append(h.hooks, hook)
}

func (h *HookableBase) isAttached(hook Hook) bool {
	if _, ok := hook.(HookFunc); ok {
		return false
	}

	for _, attached := range h.hooks {
		if _, ok := attached.(HookFunc); ok {
			continue
		}

		if attached == hook {
			return true
		}
	}

	return false
}

// InvokeHook reports ctx to every attached hook.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
