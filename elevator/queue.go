package elevator

import (
	"slices"
	"sync"
)

// floorSet is a sorted set of floors. When descending is set, iteration
// order is from the highest floor down.
type floorSet struct {
	floors     []int
	descending bool
}

func (s *floorSet) less(a, b int) int {
	if s.descending {
		return b - a
	}

	return a - b
}

func (s *floorSet) find(f int) (int, bool) {
	return slices.BinarySearchFunc(s.floors, f, s.less)
}

func (s *floorSet) add(f int) bool {
	i, found := s.find(f)
	if found {
		return false
	}

	s.floors = slices.Insert(s.floors, i, f)

	return true
}

func (s *floorSet) remove(f int) bool {
	i, found := s.find(f)
	if !found {
		return false
	}

	s.floors = slices.Delete(s.floors, i, i+1)

	return true
}

func (s *floorSet) contains(f int) bool {
	_, found := s.find(f)
	return found
}

func (s *floorSet) snapshot() []int {
	return slices.Clone(s.floors)
}

// RequestQueue keeps the floors an elevator still has to stop at, split
// into an ascending up-set and a descending down-set. A floor is pending at
// most once across both sets. All methods are safe for concurrent use.
type RequestQueue struct {
	lock sync.Mutex
	up   floorSet
	down floorSet
}

// NewRequestQueue creates an empty queue.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{
		down: floorSet{descending: true},
	}
}

// Add enqueues floor into the up-set if it is above currentFloor and into
// the down-set otherwise. It returns false if the floor was already pending.
func (q *RequestQueue) Add(floor, currentFloor int) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.up.contains(floor) || q.down.contains(floor) {
		return false
	}

	if floor > currentFloor {
		return q.up.add(floor)
	}

	return q.down.add(floor)
}

// HasAny reports whether any floor is pending.
func (q *RequestQueue) HasAny() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.up.floors) > 0 || len(q.down.floors) > 0
}

// HasUp reports whether the up-set is non-empty.
func (q *RequestQueue) HasUp() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.up.floors) > 0
}

// HasDown reports whether the down-set is non-empty.
func (q *RequestQueue) HasDown() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.down.floors) > 0
}

// StopHere reports whether currentFloor is pending in either set.
func (q *RequestQueue) StopHere(currentFloor int) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.up.contains(currentFloor) || q.down.contains(currentFloor)
}

// Clear removes currentFloor from both sets. It reports whether the floor
// was pending.
func (q *RequestQueue) Clear(currentFloor int) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	removedUp := q.up.remove(currentFloor)
	removedDown := q.down.remove(currentFloor)

	return removedUp || removedDown
}

// Rebalance re-files pending floors against currentFloor, so that the
// up-set only holds floors above it and the down-set the rest. Floors stay
// pending; only their direction bucket changes.
func (q *RequestQueue) Rebalance(currentFloor int) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for _, f := range q.up.snapshot() {
		if f <= currentFloor {
			q.up.remove(f)
			q.down.add(f)
		}
	}

	for _, f := range q.down.snapshot() {
		if f > currentFloor {
			q.down.remove(f)
			q.up.add(f)
		}
	}
}

// Up returns the up-set in ascending order.
func (q *RequestQueue) Up() []int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.up.snapshot()
}

// Down returns the down-set in descending order.
func (q *RequestQueue) Down() []int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.down.snapshot()
}

// Len returns the number of pending floors.
func (q *RequestQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.up.floors) + len(q.down.floors)
}
