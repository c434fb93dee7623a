package fleet

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"liftsim/src/generator"
	"liftsim/src/timer"
	"liftsim/src/types"
	"liftsim/src/utils"
)

// taskPair is the generator and queue processor of one elevator, sharing one cancel scope.
type taskPair struct {
	runID  uuid.UUID
	cancel context.CancelFunc
	group  *errgroup.Group
}

// stop cancels both tasks and blocks until both have returned.
func (p *taskPair) stop(id int) {
	p.cancel()
	if err := p.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Task pair failed", "elevatorID", id, "runID", p.runID, "error", err)
	}
}

// Start launches a task pair for every elevator and the supervisory tick loop.
// Cancelling ctx has the same effect as Stop.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return types.ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.discardRequests()
	for id := 1; id <= len(s.elevators); id++ {
		s.launchPair(runCtx, id)
	}
	go s.loop(runCtx, s.done)
	slog.Info("Simulation started", "elevators", len(s.elevators))
	return nil
}

// Stop cancels every active task pair and returns once all of them have terminated.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	cancel()
	<-done
}

// Toggle starts a stopped simulation or stops a running one.
func (s *Supervisor) Toggle(ctx context.Context) error {
	if s.Running() {
		s.Stop()
		return nil
	}
	return s.Start(ctx)
}

// Wait blocks until the current run has shut down. It returns ErrNotRunning if none is active.
func (s *Supervisor) Wait() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return types.ErrNotRunning
	}
	done := s.done
	s.mu.Unlock()
	<-done
	return nil
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for range timer.Ticker(ctx, s.timing.Tick) {
		s.tick(ctx)
	}
	s.shutdown()
}

// tick applies the stop and restart requests received since the previous tick. Stops are
// resolved before restarts, each in reverse arrival order.
func (s *Supervisor) tick(ctx context.Context) {
	stopped, runAgain := s.drain()
	for i := len(stopped) - 1; i >= 0; i-- {
		s.stopPair(stopped[i])
	}
	if len(runAgain) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(runAgain) - 1; i >= 0; i-- {
		s.launchPair(ctx, runAgain[i])
	}
}

// launchPair starts the generator and queue processor of elevator id. Must hold s.mu.
func (s *Supervisor) launchPair(ctx context.Context, id int) {
	if _, ok := s.pairs[id]; ok {
		slog.Debug("Restart ignored, task pair still active", "elevatorID", id)
		return
	}
	elevator, b := s.elevators[id-1], s.buildings[id-1]
	if !elevator.Powered() {
		slog.Debug("Launch skipped, elevator powered off", "elevatorID", id)
		return
	}
	rng := rand.New(rand.NewPCG(s.seeds.Uint64(), s.seeds.Uint64()))
	gen := generator.New(elevator, b, s.cfg.CallThreshold, s.timing.Tick, s.adapter, rng)

	pairCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(pairCtx)
	group.Go(func() error { return gen.Run(groupCtx) })
	group.Go(func() error { return elevator.Run(groupCtx) })

	pair := &taskPair{runID: uuid.New(), cancel: cancel, group: group}
	s.pairs[id] = pair
	slog.Debug("Task pair launched", "elevatorID", id, "runID", pair.runID)
}

// stopPair terminates the task pair of elevator id, waits for it, then resets the
// elevator's queue and its building's calls.
func (s *Supervisor) stopPair(id int) {
	s.mu.Lock()
	pair, ok := s.pairs[id]
	delete(s.pairs, id)
	s.mu.Unlock()
	if !ok {
		slog.Debug("Stop ignored, no active task pair", "elevatorID", id)
		return
	}

	pair.stop(id)
	s.elevators[id-1].Abandon()
	calls := s.buildings[id-1].Snapshot()
	s.buildings[id-1].Reset()
	s.adapter.OnCallsChanged(id)
	slog.Info("Elevator stopped", "elevatorID", id, "runID", pair.runID,
		"clearedCalls", utils.CountCalls(calls.LeftCalls, calls.RightCalls))
}

func (s *Supervisor) shutdown() {
	s.mu.Lock()
	pairs := s.pairs
	s.pairs = make(map[int]*taskPair)
	s.mu.Unlock()

	for id, pair := range pairs {
		pair.stop(id)
		s.elevators[id-1].Park()
	}
	s.discardRequests()

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.mu.Unlock()
	slog.Info("Simulation stopped", "elevators", len(pairs))
}

// discardRequests drops stop and restart requests that no tick of the current run will apply.
func (s *Supervisor) discardRequests() {
	if stopped, runAgain := s.drain(); len(stopped)+len(runAgain) > 0 {
		slog.Debug("Discarded pending requests", "stopped", stopped, "runAgain", runAgain)
	}
}
