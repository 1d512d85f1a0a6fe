// Package controller owns a fleet of elevators and is the entry point for
// floor requests and fault signals.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/elevsim/config"
	"github.com/sarchlab/elevsim/dispatch"
	"github.com/sarchlab/elevsim/elevator"
	"github.com/sarchlab/elevsim/hooking"
)

// Errors returned by the controller. Use errors.Is to match them.
var (
	ErrInvalidConfiguration = config.ErrInvalidConfiguration
	ErrInvalidFloor         = config.ErrInvalidFloor
	ErrNoEligibleUnit       = dispatch.ErrNoEligibleUnit
	ErrUnknownElevator      = errors.New("unknown elevator")
)

var (
	// HookPosRequestDispatched fires after a request is handed to an
	// elevator. Item is the floor, Detail the elevator ID.
	HookPosRequestDispatched = &hooking.HookPos{Name: "RequestDispatched"}

	// HookPosRequestRejected fires when a request fails. Item is the floor,
	// Detail the error.
	HookPosRequestRejected = &hooking.HookPos{Name: "RequestRejected"}
)

// Controller routes requests to a fixed fleet of elevators.
type Controller struct {
	*hooking.HookableBase

	name      string
	building  config.BuildingConfig
	timing    config.TimingConfig
	strategy  dispatch.Strategy
	elevators []*elevator.Elevator
	units     []dispatch.Unit

	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// New creates a controller with count elevators and starts their loops.
// The hooks are attached to the controller and to every elevator.
func New(
	count int,
	strategy dispatch.Strategy,
	building config.BuildingConfig,
	timing config.TimingConfig,
	hooks ...hooking.Hook,
) (*Controller, error) {
	b := MakeBuilder().
		WithCount(count).
		WithStrategy(strategy).
		WithBuilding(building).
		WithTiming(timing)

	for _, h := range hooks {
		b = b.WithHook(h)
	}

	return b.Build()
}

// Name returns the name of the controller.
func (c *Controller) Name() string { return c.name }

// Building returns the building configuration.
func (c *Controller) Building() config.BuildingConfig { return c.building }

// Timing returns the timing configuration shared by all elevators.
func (c *Controller) Timing() config.TimingConfig { return c.timing }

// Strategy returns the dispatch strategy.
func (c *Controller) Strategy() dispatch.Strategy { return c.strategy }

// NumElevators returns the fleet size.
func (c *Controller) NumElevators() int { return len(c.elevators) }

// Request validates floor, asks the strategy for an elevator and enqueues
// the floor on it. On success the floor is pending on that elevator when
// Request returns.
func (c *Controller) Request(floor int) error {
	if err := c.building.ValidateFloor(floor); err != nil {
		c.invoke(HookPosRequestRejected, floor, err)
		return err
	}

	unit, err := c.strategy.Select(floor, c.units)
	if err == nil && unit == nil {
		err = ErrNoEligibleUnit
	}

	if err != nil {
		err = fmt.Errorf("request for floor %d: %w", floor, err)
		c.invoke(HookPosRequestRejected, floor, err)

		return err
	}

	e, err := c.Elevator(unit.ID())
	if err != nil {
		err = fmt.Errorf("strategy selected a unit outside the fleet: %w", err)
		c.invoke(HookPosRequestRejected, floor, err)

		return err
	}

	e.AddRequest(floor)
	c.invoke(HookPosRequestDispatched, floor, e.ID())

	return nil
}

// Malfunction suspends elevator id.
func (c *Controller) Malfunction(id int) error {
	e, err := c.Elevator(id)
	if err != nil {
		return err
	}

	e.Malfunction()

	return nil
}

// Recover resumes elevator id. Recovering a working elevator is a no-op.
func (c *Controller) Recover(id int) error {
	e, err := c.Elevator(id)
	if err != nil {
		return err
	}

	e.Recover()

	return nil
}

// Shutdown stops every elevator loop and waits for them to exit. Calling it
// again has no effect.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.cancel()

		for _, e := range c.elevators {
			e.Stop()
		}
	})
}

// Elevator returns the elevator with the given fleet index.
func (c *Controller) Elevator(id int) (*elevator.Elevator, error) {
	if id < 0 || id >= len(c.elevators) {
		return nil, fmt.Errorf("%w: id %d, fleet size %d",
			ErrUnknownElevator, id, len(c.elevators))
	}

	return c.elevators[id], nil
}

// Elevators returns the fleet in index order.
func (c *Controller) Elevators() []*elevator.Elevator {
	out := make([]*elevator.Elevator, len(c.elevators))
	copy(out, c.elevators)

	return out
}

// Snapshots returns a snapshot of every elevator.
func (c *Controller) Snapshots() []elevator.Snapshot {
	out := make([]elevator.Snapshot, 0, len(c.elevators))
	for _, e := range c.elevators {
		out = append(out, e.Snapshot())
	}

	return out
}

// Pending returns the number of floors pending across the fleet.
func (c *Controller) Pending() int {
	n := 0
	for _, e := range c.elevators {
		n += e.Pending()
	}

	return n
}

// Drain blocks until every working elevator is idle with nothing pending,
// or until ctx is done. Malfunctioning elevators are not waited for.
func (c *Controller) Drain(ctx context.Context) error {
	ticker := time.NewTicker(c.timing.PollInterval())
	defer ticker.Stop()

	for {
		if c.settled() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Controller) settled() bool {
	for _, e := range c.elevators {
		if e.Status() == elevator.StatusMalfunction {
			continue
		}

		if e.Pending() > 0 ||
			e.State() != elevator.StateIdle ||
			e.Status() != elevator.StatusIdle {
			return false
		}
	}

	return true
}

func (c *Controller) invoke(pos *hooking.HookPos, floor int, detail any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   floor,
		Detail: detail,
	})
}
