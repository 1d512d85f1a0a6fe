package controller

import (
	"context"
	"fmt"
	"slices"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/dispatch"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
)

// Builder creates controllers.
type Builder struct {
	name     string
	count    int
	strategy dispatch.Strategy
	building config.BuildingConfig
	timing   config.TimingConfig
	hooks    []hooking.Hook
}

// MakeBuilder returns a builder for a single-elevator, single-floor building
// dispatched by NearestUnit.
func MakeBuilder() Builder {
	return Builder{
		name:     "Building",
		count:    1,
		strategy: dispatch.NearestUnit{},
	}
}

// WithName sets the controller name, which prefixes elevator names.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithCount sets the number of elevators.
func (b Builder) WithCount(n int) Builder {
	b.count = n
	return b
}

// WithStrategy sets the dispatch strategy.
func (b Builder) WithStrategy(s dispatch.Strategy) Builder {
	b.strategy = s
	return b
}

// WithBuilding sets the floor range.
func (b Builder) WithBuilding(c config.BuildingConfig) Builder {
	b.building = c
	return b
}

// WithTiming sets the elevator delays.
func (b Builder) WithTiming(t config.TimingConfig) Builder {
	b.timing = t
	return b
}

// WithHook attaches a hook to the controller and every elevator.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(slices.Clone(b.hooks), h)
	return b
}

// Build creates the controller and starts one loop per elevator. Elevators
// start on the lowest floor of the building.
func (b Builder) Build() (*Controller, error) {
	if b.count <= 0 {
		return nil, fmt.Errorf("%w: elevator count must be positive, got %d",
			ErrInvalidConfiguration, b.count)
	}

	if b.strategy == nil {
		return nil, fmt.Errorf("%w: no dispatch strategy",
			ErrInvalidConfiguration)
	}

	c := &Controller{
		HookableBase: hooking.NewHookableBase(),
		name:         b.name,
		building:     b.building,
		timing:       b.timing,
		strategy:     b.strategy,
	}

	eb := elevator.MakeBuilder().
		WithParentName(b.name).
		WithTiming(b.timing).
		WithInitialFloor(b.building.MinFloor())

	for _, h := range b.hooks {
		c.AcceptHook(h)
		eb = eb.WithHook(h)
	}

	for i := 0; i < b.count; i++ {
		e := eb.Build(i)
		c.elevators = append(c.elevators, e)
		c.units = append(c.units, e)
	}

	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())

	for _, e := range c.elevators {
		e.Start(ctx)
	}

	return c, nil
}
