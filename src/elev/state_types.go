// State types are defined in elev package to make method receivers possible in elev_state.go.
package elev

import (
	"log/slog"
	"sync"

	"liftsim/src/config"
	"liftsim/src/types"
)

// ElevState represents the state of the elevator. Floors are 1-based.
type ElevState struct {
	ElevatorID  int
	StreetID    int
	HouseID     int
	FloorCount  int
	Capacity    int
	Passengers  int
	DoorOpen    bool
	Powered     bool
	Floor       int
	TargetFloor *int
	Queue       []int // FIFO of requested floors, duplicates kept
	Behaviour   types.ElevBehaviour
	Position    float64 // 0 at the ground floor, 100 at the top floor
}

// Params are the construction-time attributes of one elevator.
type Params struct {
	ElevatorID  int
	StreetID    int
	HouseID     int
	FloorCount  int
	Capacity    int
	BoardingMax int
	Timing      config.Timing
}

// Elevator owns its state and serializes access to it. The queue processor (Run) is the only
// goroutine that moves the car; commands and queries may come from anywhere.
type Elevator struct {
	mu          sync.Mutex
	state       ElevState
	timing      config.Timing
	boardingMax int
	observer    types.ElevObserver
	rng         types.Rand
	logger      *slog.Logger
}
