// Contains the queue processor: the movement and door state machine of one elevator.
package elev

import (
	"context"

	"liftsim/src/timer"
	"liftsim/src/types"
)

// Run drains the request queue until ctx is cancelled. Each request is a full trip: travel to
// the target, dwell, return to the ground floor, dwell again. Cancellation stops the trip at
// the next wait and is returned as ctx.Err(); nothing is rolled back.
func (e *Elevator) Run(ctx context.Context) error {
	e.logger.Debug("Queue processor started", "floor", e.Floor())
	for {
		target, ok := e.nextRequest()
		if !ok {
			if err := timer.Wait(ctx, e.timing.Idle); err != nil {
				e.logger.Debug("Queue processor stopped", "reason", err)
				return err
			}
			continue
		}
		if err := e.serve(ctx, target); err != nil {
			e.logger.Debug("Queue processor stopped mid-trip", "target", target, "floor", e.Floor(), "reason", err)
			return err
		}
	}
}

func (e *Elevator) serve(ctx context.Context, target int) error {
	id := e.state.ElevatorID
	start := e.Floor()
	e.logger.Info("Serving request", "target", target, "floor", start)
	e.ReportPosition()

	// Arrival pending at the departure floor.
	e.observer.OnArrival(id, start)

	if target != start {
		if err := e.travel(ctx, target); err != nil {
			return err
		}
		if err := e.dwell(ctx, true); err != nil {
			return err
		}
		if err := e.travel(ctx, 1); err != nil {
			return err
		}
	}

	if err := e.dwell(ctx, false); err != nil {
		return err
	}
	e.setPassengers(0)
	e.logger.Debug("Request served", "target", target, "floor", e.Floor())
	return nil
}

// travel moves one floor at a time until the car is at floor.
func (e *Elevator) travel(ctx context.Context, floor int) error {
	for {
		current := e.Floor()
		switch {
		case current < floor:
			if err := e.step(ctx, types.MD_Up); err != nil {
				return err
			}
		case current > floor:
			if err := e.step(ctx, types.MD_Down); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// step moves one floor in dir, emitting the interpolated position once per sub step.
func (e *Elevator) step(ctx context.Context, dir types.MotorDirection) error {
	e.setBehaviour(types.BehaviourFor(dir))
	delta := float64(dir) * e.stepSize() / float64(e.timing.SubSteps)
	for range e.timing.SubSteps {
		e.observer.OnPosition(e.state.ElevatorID, e.advance(delta))
		if err := timer.Wait(ctx, e.timing.SubStep); err != nil {
			return err
		}
	}
	e.moveToFloor(e.Floor() + int(dir))
	return nil
}

// dwell opens the doors for the dwell time, then closes them and re-reports position and
// arrival for the current floor. Passengers board only on the outbound stop.
func (e *Elevator) dwell(ctx context.Context, board bool) error {
	e.setDoor(true)
	if err := timer.Wait(ctx, e.timing.Dwell); err != nil {
		return err
	}
	if board {
		boarded := 1 + e.rng.IntN(e.boardingMax)
		e.setPassengers(boarded)
		e.logger.Debug("Passengers boarded", "count", boarded, "floor", e.Floor())
	}
	e.setDoor(false)
	e.ReportPosition()
	e.observer.OnArrival(e.state.ElevatorID, e.Floor())
	return nil
}
