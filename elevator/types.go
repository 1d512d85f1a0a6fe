package elevator

// Direction is the travel direction of an elevator.
type Direction int32

// Directions.
const (
	DirIdle Direction = iota
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirIdle:
		return "Idle"
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// step returns the floor delta of one move in direction d.
func (d Direction) step() int {
	switch d {
	case DirUp:
		return 1
	case DirDown:
		return -1
	default:
		return 0
	}
}

// Status is the externally visible operating status of an elevator.
type Status int32

// Statuses. StatusMalfunction suspends the state machine until Recover.
const (
	StatusIdle Status = iota
	StatusMoving
	StatusDoorOpen
	StatusMalfunction
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusMoving:
		return "Moving"
	case StatusDoorOpen:
		return "DoorOpen"
	case StatusMalfunction:
		return "Malfunction"
	default:
		return "Unknown"
	}
}

// State is the position of the elevator in its Idle, Moving, DoorOpen cycle.
type State int32

// States.
const (
	StateIdle State = iota
	StateMoving
	StateDoorOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateMoving:
		return "Moving"
	case StateDoorOpen:
		return "DoorOpen"
	default:
		return "Unknown"
	}
}

// Snapshot is a point-in-time copy of an elevator's observable fields.
type Snapshot struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	Status    string `json:"status"`
	State     string `json:"state"`
	Up        []int  `json:"up"`
	Down      []int  `json:"down"`
	Running   bool   `json:"running"`
}
