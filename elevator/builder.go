package elevator

import (
	"fmt"
	"slices"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/hooking"
)

// Builder creates elevators.
type Builder struct {
	parentName   string
	timing       config.TimingConfig
	initialFloor int
	hooks        []hooking.Hook
}

// MakeBuilder returns a builder with zero move and door delays, starting on
// floor 0.
func MakeBuilder() Builder {
	return Builder{}
}

// WithParentName sets the name prefix, giving names like
// "Building.Elevator[0]".
func (b Builder) WithParentName(name string) Builder {
	b.parentName = name
	return b
}

// WithTiming sets the move, door and poll delays.
func (b Builder) WithTiming(t config.TimingConfig) Builder {
	b.timing = t
	return b
}

// WithInitialFloor sets the floor the elevator starts on.
func (b Builder) WithInitialFloor(f int) Builder {
	b.initialFloor = f
	return b
}

// WithHook adds a hook to every elevator built.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(slices.Clone(b.hooks), h)
	return b
}

// Build creates an elevator with the given fleet index. The elevator is
// Idle and its loop is not started.
func (b Builder) Build(id int) *Elevator {
	name := fmt.Sprintf("Elevator[%d]", id)
	if b.parentName != "" {
		name = b.parentName + "." + name
	}

	e := &Elevator{
		HookableBase: hooking.NewHookableBase(),
		id:           id,
		name:         name,
		timing:       b.timing,
		queue:        NewRequestQueue(),
	}
	e.floor.Store(int64(b.initialFloor))

	for _, h := range b.hooks {
		e.AcceptHook(h)
	}

	return e
}
