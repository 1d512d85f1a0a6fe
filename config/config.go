// Package config holds the immutable building and timing parameters of a
// simulation.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is returned when a building, timing or fleet
// parameter cannot describe a working system.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrInvalidFloor is returned for a floor outside the building.
var ErrInvalidFloor = errors.New("invalid floor")

// DefaultPoll is the idle wait between two steps of an elevator loop.
const DefaultPoll = 50 * time.Millisecond

// BuildingConfig defines the range of floors that can be requested.
type BuildingConfig struct {
	minFloor int
	maxFloor int
}

// NewBuildingConfig creates a BuildingConfig covering [minFloor, maxFloor].
func NewBuildingConfig(minFloor, maxFloor int) (BuildingConfig, error) {
	if minFloor > maxFloor {
		return BuildingConfig{}, fmt.Errorf(
			"%w: min floor %d above max floor %d",
			ErrInvalidConfiguration, minFloor, maxFloor)
	}

	return BuildingConfig{minFloor: minFloor, maxFloor: maxFloor}, nil
}

// MinFloor returns the lowest floor.
func (b BuildingConfig) MinFloor() int { return b.minFloor }

// MaxFloor returns the highest floor.
func (b BuildingConfig) MaxFloor() int { return b.maxFloor }

// NumFloors returns the number of floors served.
func (b BuildingConfig) NumFloors() int {
	return b.maxFloor - b.minFloor + 1
}

// Contains reports whether f is a floor of the building.
func (b BuildingConfig) Contains(f int) bool {
	return f >= b.minFloor && f <= b.maxFloor
}

// ValidateFloor returns ErrInvalidFloor if f is outside the building.
func (b BuildingConfig) ValidateFloor(f int) error {
	if !b.Contains(f) {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidFloor, f, b.minFloor, b.maxFloor)
	}

	return nil
}

// TimingConfig holds the logical delays of the motion loop. The zero value
// has no move or door delay and polls every DefaultPoll.
type TimingConfig struct {
	move time.Duration
	door time.Duration
	poll time.Duration
}

// NewTimingConfig creates a TimingConfig from millisecond values.
func NewTimingConfig(moveMs, doorMs int) (TimingConfig, error) {
	if moveMs < 0 || doorMs < 0 {
		return TimingConfig{}, fmt.Errorf(
			"%w: negative timing (move %d ms, door %d ms)",
			ErrInvalidConfiguration, moveMs, doorMs)
	}

	return TimingConfig{
		move: time.Duration(moveMs) * time.Millisecond,
		door: time.Duration(doorMs) * time.Millisecond,
		poll: DefaultPoll,
	}, nil
}

// WithPoll returns a copy of t that polls every pollMs milliseconds.
func (t TimingConfig) WithPoll(pollMs int) (TimingConfig, error) {
	if pollMs <= 0 {
		return t, fmt.Errorf("%w: poll interval must be positive, got %d ms",
			ErrInvalidConfiguration, pollMs)
	}

	t.poll = time.Duration(pollMs) * time.Millisecond

	return t, nil
}

// Move returns the time spent travelling one floor.
func (t TimingConfig) Move() time.Duration { return t.move }

// Door returns how long the door stays open at a stop.
func (t TimingConfig) Door() time.Duration { return t.door }

// PollInterval returns the wait between two loop iterations, falling back
// to DefaultPoll when unset.
func (t TimingConfig) PollInterval() time.Duration {
	if t.poll <= 0 {
		return DefaultPoll
	}

	return t.poll
}
