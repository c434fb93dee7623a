// Package building holds the per-floor call flags of one elevator's house.
package building

import (
	"fmt"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"liftsim/src/types"
)

// BuildingState is the data of one house. Floors are 1-based at the API, 0-based in the slices.
type BuildingState struct {
	StreetID   int
	HouseID    int
	Address    string
	FloorCount int
	Occupants  int
	LeftCalls  []bool
	RightCalls []bool
}

// Building serializes access to its call flags.
type Building struct {
	mu    sync.Mutex
	state BuildingState
}

func New(streetID, houseID, floorCount, occupants int) (*Building, error) {
	if floorCount < 2 {
		return nil, fmt.Errorf("building %d/%d with %d floors: %w", streetID, houseID, floorCount, types.ErrInvalidFloorCount)
	}
	return &Building{
		state: BuildingState{
			StreetID:   streetID,
			HouseID:    houseID,
			FloorCount: floorCount,
			Occupants:  occupants,
			LeftCalls:  make([]bool, floorCount),
			RightCalls: make([]bool, floorCount),
		},
	}, nil
}

func (b *Building) FloorCount() int {
	return b.state.FloorCount
}

func (b *Building) SetAddress(address string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Address = address
}

func (b *Building) checkFloor(floor int) error {
	if floor < 1 || floor > b.state.FloorCount {
		return fmt.Errorf("floor %d of %d: %w", floor, b.state.FloorCount, types.ErrFloorOutOfRange)
	}
	return nil
}

// TryCall sets the call on side at floor unless either side is already set there.
// The check and the set happen under one lock, so a floor never holds two calls from it.
func (b *Building) TryCall(floor int, side types.Side) (bool, error) {
	if err := b.checkFloor(floor); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := floor - 1
	if b.state.LeftCalls[i] || b.state.RightCalls[i] {
		return false, nil
	}
	b.calls(side)[i] = true
	return true, nil
}

// SetCall writes one flag unconditionally.
func (b *Building) SetCall(floor int, side types.Side, active bool) error {
	if err := b.checkFloor(floor); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls(side)[floor-1] = active
	return nil
}

// ClearFloor clears both call flags at floor.
func (b *Building) ClearFloor(floor int) error {
	if err := b.checkFloor(floor); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.LeftCalls[floor-1] = false
	b.state.RightCalls[floor-1] = false
	return nil
}

// Reset clears every call flag.
func (b *Building) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.LeftCalls = make([]bool, b.state.FloorCount)
	b.state.RightCalls = make([]bool, b.state.FloorCount)
}

func (b *Building) HasCall(floor int) bool {
	if b.checkFloor(floor) != nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.LeftCalls[floor-1] || b.state.RightCalls[floor-1]
}

// Snapshot returns a deep copy of the building state.
func (b *Building) Snapshot() BuildingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	var snap BuildingState
	if err := deepcopy.Copy(&snap, &b.state); err != nil {
		panic(err)
	}
	return snap
}

func (b *Building) calls(side types.Side) []bool {
	if side == types.Left {
		return b.state.LeftCalls
	}
	return b.state.RightCalls
}
