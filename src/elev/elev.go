package elev

import (
	"fmt"
	"log/slog"

	"liftsim/src/types"
)

// New builds a powered, idle elevator at the ground floor with closed doors.
// A nil observer discards events; a nil rng uses the shared source.
func New(p Params, observer types.ElevObserver, rng types.Rand) (*Elevator, error) {
	if p.FloorCount < 2 {
		return nil, fmt.Errorf("elevator %d with %d floors: %w", p.ElevatorID, p.FloorCount, types.ErrInvalidFloorCount)
	}
	if p.Timing.SubSteps < 1 {
		return nil, fmt.Errorf("elevator %d: sub steps must be positive", p.ElevatorID)
	}
	if observer == nil {
		observer = types.NopObserver{}
	}
	if rng == nil {
		rng = types.SharedRand{}
	}
	boardingMax := p.BoardingMax
	if boardingMax < 1 {
		boardingMax = 1
	}

	elevator := &Elevator{
		state: ElevState{
			ElevatorID: p.ElevatorID,
			StreetID:   p.StreetID,
			HouseID:    p.HouseID,
			FloorCount: p.FloorCount,
			Capacity:   p.Capacity,
			Powered:    true,
			Floor:      1,
			Behaviour:  types.Idle,
		},
		timing:      p.Timing,
		boardingMax: boardingMax,
		observer:    observer,
		rng:         rng,
		logger:      slog.Default().With("elevatorID", p.ElevatorID),
	}
	elevator.logger.Debug("Elevator initialized", "floors", p.FloorCount, "capacity", p.Capacity)
	return elevator, nil
}
