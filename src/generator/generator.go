// Package generator produces random floor calls for one elevator's building.
package generator

import (
	"context"
	"log/slog"
	"time"

	"liftsim/src/building"
	"liftsim/src/elev"
	"liftsim/src/timer"
	"liftsim/src/types"
)

// Generator places at most one call per tick. A draw in [1, 100] at or below Threshold
// places a call on a random floor: odd draws on the left side, even draws on the right.
type Generator struct {
	Threshold int
	Period    time.Duration

	elevator *elev.Elevator
	building *building.Building
	observer types.Observer
	rng      types.Rand
	logger   *slog.Logger
}

func New(elevator *elev.Elevator, b *building.Building, threshold int, period time.Duration, observer types.Observer, rng types.Rand) *Generator {
	if observer == nil {
		observer = types.NopObserver{}
	}
	if rng == nil {
		rng = types.SharedRand{}
	}
	return &Generator{
		Threshold: threshold,
		Period:    period,
		elevator:  elevator,
		building:  b,
		observer:  observer,
		rng:       rng,
		logger:    slog.Default().With("elevatorID", elevator.ID()),
	}
}

// Run ticks until ctx is cancelled and returns ctx.Err().
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Debug("Call generator started", "threshold", g.Threshold)
	for {
		g.Step()
		if err := timer.Wait(ctx, g.Period); err != nil {
			g.logger.Debug("Call generator stopped", "reason", err)
			return err
		}
	}
}

// Step performs one tick and reports the floor of the call it placed, if any.
func (g *Generator) Step() (int, bool) {
	draw := g.rng.IntN(100) + 1
	if draw > g.Threshold {
		return 0, false
	}
	floor := g.rng.IntN(g.building.FloorCount()) + 1
	side := types.Right
	if draw%2 == 1 {
		side = types.Left
	}

	placed, err := g.building.TryCall(floor, side)
	if err != nil {
		g.logger.Error("Call rejected", "floor", floor, "error", err)
		return 0, false
	}
	if !placed {
		return 0, false
	}
	if err := g.elevator.Enqueue(floor); err != nil {
		g.logger.Error("Floor request rejected", "floor", floor, "error", err)
		_ = g.building.SetCall(floor, side, false)
		return 0, false
	}
	g.logger.Debug("Call placed", "floor", floor, "side", side, "draw", draw)
	g.observer.OnCallsChanged(g.elevator.ID())
	return floor, true
}
