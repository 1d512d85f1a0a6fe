// Package dispatch decides which elevator serves a new floor request.
package dispatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/elevsim/elevator"
)

// ErrNoEligibleUnit is returned when no elevator can take a request, either
// because the fleet is empty or because every unit is malfunctioning.
var ErrNoEligibleUnit = errors.New("no eligible elevator")

// Unit is the read-only view of an elevator that strategies work on.
type Unit interface {
	ID() int
	Floor() int
	Status() elevator.Status
	Pending() int
}

// A Strategy selects the unit that serves a request for target. It must not
// block or mutate the units.
type Strategy interface {
	Select(target int, fleet []Unit) (Unit, error)
}

func eligible(u Unit) bool {
	return u.Status() != elevator.StatusMalfunction
}

func distance(u Unit, target int) int {
	d := u.Floor() - target
	if d < 0 {
		return -d
	}

	return d
}

// NearestUnit picks the closest working unit. Ties go to the unit that
// comes first in the fleet.
type NearestUnit struct{}

// Select implements Strategy.
func (NearestUnit) Select(target int, fleet []Unit) (Unit, error) {
	var (
		best     Unit
		bestDist int
	)

	for _, u := range fleet {
		if !eligible(u) {
			continue
		}

		d := distance(u, target)
		if best == nil || d < bestDist {
			best = u
			bestDist = d
		}
	}

	if best == nil {
		return nil, ErrNoEligibleUnit
	}

	return best, nil
}

// LeastLoaded picks the working unit with the fewest pending floors,
// breaking ties by distance and then by fleet order.
type LeastLoaded struct{}

// Select implements Strategy.
func (LeastLoaded) Select(target int, fleet []Unit) (Unit, error) {
	var (
		best        Unit
		bestPending int
		bestDist    int
	)

	for _, u := range fleet {
		if !eligible(u) {
			continue
		}

		pending := u.Pending()
		d := distance(u, target)

		if best == nil ||
			pending < bestPending ||
			(pending == bestPending && d < bestDist) {
			best = u
			bestPending = pending
			bestDist = d
		}
	}

	if best == nil {
		return nil, ErrNoEligibleUnit
	}

	return best, nil
}

var strategies = map[string]Strategy{
	"nearest":      NearestUnit{},
	"least-loaded": LeastLoaded{},
}

// ByName returns the strategy registered under name.
func ByName(name string) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown dispatch strategy %q, available: %v",
			name, Names())
	}

	return s, nil
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
