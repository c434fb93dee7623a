package types

import "math/rand/v2"

type MotorDirection int

const (
	MD_Up   MotorDirection = 1
	MD_Down MotorDirection = -1
	MD_Stop MotorDirection = 0
)

// Side of the landing a call was placed from.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Undefined"
	}
}

type ElevBehaviour int

const (
	Idle ElevBehaviour = iota
	Ascending
	Descending
	DoorsOpen
)

func (b ElevBehaviour) String() string {
	switch b {
	case Idle:
		return "Idle"
	case Ascending:
		return "Ascending"
	case Descending:
		return "Descending"
	case DoorsOpen:
		return "DoorsOpen"
	default:
		return "Undefined"
	}
}

// BehaviourFor maps a travel direction to the moving behaviour.
func BehaviourFor(dir MotorDirection) ElevBehaviour {
	switch dir {
	case MD_Up:
		return Ascending
	case MD_Down:
		return Descending
	default:
		return Idle
	}
}

// Rand is the draw source used by generators and boarding. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// SharedRand draws from the process-wide math/rand/v2 source, which is safe for concurrent use.
type SharedRand struct{}

func (SharedRand) IntN(n int) int {
	return rand.IntN(n)
}
