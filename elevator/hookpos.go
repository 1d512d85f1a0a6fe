package elevator

import "github.com/sarchlab/elevsim/hooking"

// Hook positions fired by an Elevator. Item is always the floor the event
// concerns.
var (
	// HookPosRequestEnqueued fires on AddRequest. Detail is true if the
	// floor was not pending before.
	HookPosRequestEnqueued = &hooking.HookPos{Name: "RequestEnqueued"}

	// HookPosDeparture fires when the elevator leaves Idle. Detail is the
	// chosen Direction.
	HookPosDeparture = &hooking.HookPos{Name: "Departure"}

	HookPosFloorReached  = &hooking.HookPos{Name: "FloorReached"}
	HookPosDoorOpen      = &hooking.HookPos{Name: "DoorOpen"}
	HookPosRequestServed = &hooking.HookPos{Name: "RequestServed"}
	HookPosDoorClose     = &hooking.HookPos{Name: "DoorClose"}
	HookPosMalfunction   = &hooking.HookPos{Name: "Malfunction"}
	HookPosRecover       = &hooking.HookPos{Name: "Recover"}
	HookPosLoopStopped   = &hooking.HookPos{Name: "LoopStopped"}
)
