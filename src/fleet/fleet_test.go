package fleet

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"liftsim/src/config"
	"liftsim/src/types"
	"liftsim/src/utils"
)

func testConfig(n int) config.Config {
	cfg := config.Default()
	cfg.Elevators = n
	cfg.CallThreshold = 0
	cfg.TimeUnit = time.Millisecond
	cfg.SubStepUnits = 0.2
	cfg.Seed = 42
	return cfg
}

type doorCounter struct {
	types.NopObserver
	mu      sync.Mutex
	doors   map[int]int
	refresh map[int]int
}

func newDoorCounter() *doorCounter {
	return &doorCounter{doors: map[int]int{}, refresh: map[int]int{}}
}

func (c *doorCounter) OnDoorChange(elevatorID int, _ bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doors[elevatorID]++
}

func (c *doorCounter) OnCallsChanged(elevatorID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh[elevatorID]++
}

func (c *doorCounter) doorEvents(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doors[id]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func startFleet(t *testing.T, n int, adapter types.Observer) *Supervisor {
	t.Helper()
	s, err := New(testConfig(n), adapter)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func tripDone(s *Supervisor, id int) func() bool {
	return func() bool {
		snap, _ := s.Elevator(id)
		return snap.TargetFloor == nil && len(snap.Queue) == 0 && snap.Floor == 1
	}
}

func TestNewBuildsFleet(t *testing.T) {
	cfg := testConfig(8)
	cfg.FloorsMax = 5
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, expected 8", s.Len())
	}
	for id := 1; id <= 8; id++ {
		e, _ := s.Elevator(id)
		b, _ := s.Building(id)
		if e.ElevatorID != id {
			t.Errorf("elevator %d has id %d", id, e.ElevatorID)
		}
		if e.StreetID != (id+3)/2+1 || e.HouseID != id%4+1 {
			t.Errorf("elevator %d at street %d house %d", id, e.StreetID, e.HouseID)
		}
		if b.StreetID != e.StreetID || b.HouseID != e.HouseID || b.FloorCount != e.FloorCount {
			t.Errorf("building %d does not match its elevator", id)
		}
		if b.FloorCount < 3 || b.FloorCount > 5 {
			t.Errorf("building %d has %d floors, expected [3, 5]", id, b.FloorCount)
		}
		if e.Capacity%50 != 0 || e.Capacity < 300 || e.Capacity > 700 {
			t.Errorf("elevator %d capacity = %d", id, e.Capacity)
		}
		if b.Occupants < 100 || b.Occupants > 999 {
			t.Errorf("building %d occupants = %d", id, b.Occupants)
		}
		if !strings.Contains(b.Address, "street") {
			t.Errorf("building %d address = %q", id, b.Address)
		}
	}
	if _, err := s.Elevator(9); !errors.Is(err, types.ErrUnknownElevator) {
		t.Errorf("Elevator(9) = %v, expected ErrUnknownElevator", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(2)
	cfg.FloorsMin = 1
	if _, err := New(cfg, nil); !errors.Is(err, types.ErrInvalidFloorCount) {
		t.Errorf("New() = %v, expected ErrInvalidFloorCount", err)
	}
}

func TestStartStop(t *testing.T) {
	s := startFleet(t, 3, nil)
	if !s.Running() {
		t.Fatal("Running() = false after Start")
	}
	for id := 1; id <= 3; id++ {
		if !s.Active(id) {
			t.Errorf("Active(%d) = false after Start", id)
		}
	}
	if err := s.Start(context.Background()); !errors.Is(err, types.ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, expected ErrAlreadyRunning", err)
	}

	s.Stop()
	if s.Running() {
		t.Error("Running() = true after Stop")
	}
	for id := 1; id <= 3; id++ {
		if s.Active(id) {
			t.Errorf("Active(%d) = true after Stop", id)
		}
	}
	if err := s.Wait(); !errors.Is(err, types.ErrNotRunning) {
		t.Errorf("Wait() = %v after Stop, expected ErrNotRunning", err)
	}

	if err := s.Toggle(context.Background()); err != nil || !s.Running() {
		t.Errorf("Toggle() = %v, Running() = %v, expected a fresh run", err, s.Running())
	}
	if err := s.Toggle(context.Background()); err != nil || s.Running() {
		t.Errorf("Toggle() = %v, Running() = %v, expected stopped", err, s.Running())
	}
}

func TestParentContextCancelStops(t *testing.T) {
	s, err := New(testConfig(2), nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	cancel()
	waitFor(t, "shutdown", func() bool { return !s.Running() })
	if s.Active(1) || s.Active(2) {
		t.Error("task pairs still active after parent cancel")
	}
}

func TestTripClearsCallsAndReturnsToGround(t *testing.T) {
	doors := newDoorCounter()
	s := startFleet(t, 2, doors)
	_ = s.buildings[0].SetCall(3, types.Right, true)
	_ = s.buildings[0].SetCall(3, types.Left, true)

	if err := s.CallElevator(1, 3); err != nil {
		t.Fatalf("CallElevator(1, 3) = %v", err)
	}
	waitFor(t, "trip", func() bool { return doors.doorEvents(1) == 4 && tripDone(s, 1)() })

	b, _ := s.Building(1)
	if b.LeftCalls[2] || b.RightCalls[2] {
		t.Errorf("floor 3 calls = %v/%v after arrival, expected cleared", b.LeftCalls[2], b.RightCalls[2])
	}
	e, _ := s.Elevator(1)
	if e.Floor != 1 || e.DoorOpen {
		t.Errorf("elevator 1 at floor %d door %v, expected floor 1, closed", e.Floor, e.DoorOpen)
	}
	if doors.doorEvents(2) != 0 {
		t.Errorf("elevator 2 had %d door events, expected none", doors.doorEvents(2))
	}
}

func TestRequestStopResetsBuilding(t *testing.T) {
	doors := newDoorCounter()
	s := startFleet(t, 3, doors)
	_ = s.buildings[1].SetCall(2, types.Left, true)
	_ = s.buildings[1].SetCall(3, types.Right, true)
	_ = s.buildings[0].SetCall(2, types.Left, true)

	if err := s.RequestStop(2); err != nil {
		t.Fatalf("RequestStop(2) = %v", err)
	}
	waitFor(t, "elevator 2 to stop", func() bool { return !s.Active(2) })
	waitFor(t, "refresh", func() bool {
		doors.mu.Lock()
		defer doors.mu.Unlock()
		return doors.refresh[2] == 1
	})

	b, _ := s.Building(2)
	for i := range b.LeftCalls {
		if b.LeftCalls[i] || b.RightCalls[i] {
			t.Errorf("building 2 floor %d still has a call after stop", i+1)
		}
	}
	if !s.Active(1) || !s.Active(3) {
		t.Error("stopping elevator 2 stopped another elevator")
	}
	if b1, _ := s.Building(1); !b1.LeftCalls[1] {
		t.Error("stopping elevator 2 cleared building 1")
	}
}

func TestRestartResumesIndependently(t *testing.T) {
	doors := newDoorCounter()
	s := startFleet(t, 3, doors)
	firstRun, _ := s.RunID(2)

	_ = s.CallElevator(1, 3)
	_ = s.RequestStop(2)
	waitFor(t, "elevator 2 to stop", func() bool { return !s.Active(2) })
	_ = s.RequestRestart(2)
	waitFor(t, "elevator 2 to restart", func() bool { return s.Active(2) })

	secondRun, ok := s.RunID(2)
	if !ok || secondRun == firstRun {
		t.Errorf("RunID(2) = %v, %v after restart, expected a new run id", secondRun, ok)
	}

	_ = s.CallElevator(2, 2)
	waitFor(t, "elevator 2 trip", func() bool { return doors.doorEvents(2) == 4 && tripDone(s, 2)() })
	waitFor(t, "elevator 1 trip", func() bool { return doors.doorEvents(1) == 4 && tripDone(s, 1)() })
	if doors.doorEvents(3) != 0 {
		t.Errorf("elevator 3 had %d door events, expected none", doors.doorEvents(3))
	}
}

func TestStopAndRestartInOneTick(t *testing.T) {
	s, err := New(testConfig(2), nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	ctx := context.Background()
	s.mu.Lock()
	s.launchPair(ctx, 1)
	s.mu.Unlock()
	defer s.shutdown()
	firstRun, _ := s.RunID(1)

	_ = s.RequestStop(1)
	_ = s.RequestRestart(1)
	s.tick(ctx)

	run, ok := s.RunID(1)
	if !ok || run == firstRun {
		t.Errorf("RunID(1) = %v, %v after one tick, expected a relaunched pair", run, ok)
	}
	if stopped, runAgain := s.drain(); len(stopped) != 0 || len(runAgain) != 0 {
		t.Errorf("mailbox not empty after tick: %v %v", stopped, runAgain)
	}
}

func TestRestartOfActiveElevatorIsIgnored(t *testing.T) {
	s := startFleet(t, 1, nil)
	run, _ := s.RunID(1)
	_ = s.RequestRestart(1)
	time.Sleep(20 * time.Millisecond)
	if again, ok := s.RunID(1); !ok || again != run {
		t.Errorf("RunID(1) = %v, %v, expected the first run %v", again, ok, run)
	}
}

func TestTogglePowerStopsAndRestarts(t *testing.T) {
	s := startFleet(t, 2, nil)
	if err := s.TogglePower(1); err != nil {
		t.Fatalf("TogglePower(1) = %v", err)
	}
	waitFor(t, "power off stop", func() bool { return !s.Active(1) })
	if e, _ := s.Elevator(1); e.Powered {
		t.Error("elevator 1 still powered")
	}

	if err := s.TogglePower(1); err != nil {
		t.Fatalf("TogglePower(1) = %v", err)
	}
	waitFor(t, "power on restart", func() bool { return s.Active(1) })
	if !s.Active(2) {
		t.Error("elevator 2 affected by elevator 1 power toggle")
	}
}

func TestRequestValidation(t *testing.T) {
	s, err := New(testConfig(1), nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.RequestStop(0); !errors.Is(err, types.ErrUnknownElevator) {
		t.Errorf("RequestStop(0) = %v, expected ErrUnknownElevator", err)
	}
	if err := s.RequestRestart(2); !errors.Is(err, types.ErrUnknownElevator) {
		t.Errorf("RequestRestart(2) = %v, expected ErrUnknownElevator", err)
	}
	if err := s.TogglePower(5); !errors.Is(err, types.ErrUnknownElevator) {
		t.Errorf("TogglePower(5) = %v, expected ErrUnknownElevator", err)
	}

	var last error
	for range cap(s.mailbox) + 1 {
		last = s.RequestStop(1)
	}
	if !errors.Is(last, types.ErrMailboxFull) {
		t.Errorf("RequestStop() on a full mailbox = %v, expected ErrMailboxFull", last)
	}
}

func TestGeneratedCallsReachTheQueue(t *testing.T) {
	cfg := testConfig(1)
	cfg.CallThreshold = 100
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer s.Stop()

	waitFor(t, "a generated request", func() bool {
		e, _ := s.Elevator(1)
		return e.TargetFloor != nil || len(e.Queue) > 0
	})
}

func TestStartSkipsUnpoweredElevator(t *testing.T) {
	cfg := testConfig(2)
	cfg.CallThreshold = 100
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := s.TogglePower(1); err != nil {
		t.Fatalf("TogglePower(1) = %v", err)
	}
	waitFor(t, "power off stop", func() bool { return !s.Active(1) })
	s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer s.Stop()
	if err := s.RequestRestart(1); err != nil {
		t.Fatalf("RequestRestart(1) = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if s.Active(1) {
		t.Error("Active(1) = true for a powered-off elevator")
	}
	if !s.Active(2) {
		t.Error("Active(2) = false, expected elevator 2 relaunched")
	}
	e, _ := s.Elevator(1)
	if len(e.Queue) != 0 || e.TargetFloor != nil {
		t.Errorf("elevator 1 queue = %v, target = %v, expected both empty", e.Queue, e.TargetFloor)
	}
	b, _ := s.Building(1)
	if n := utils.CountCalls(b.LeftCalls, b.RightCalls); n != 0 {
		t.Errorf("building 1 has %d calls, expected none", n)
	}
}

func TestTogglePowerRestoresPowerOnFullMailbox(t *testing.T) {
	s, err := New(testConfig(1), nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	for s.RequestRestart(1) == nil {
	}
	if err := s.TogglePower(1); !errors.Is(err, types.ErrMailboxFull) {
		t.Fatalf("TogglePower(1) = %v, expected ErrMailboxFull", err)
	}
	if e, _ := s.Elevator(1); !e.Powered {
		t.Error("elevator 1 powered off although no stop was posted")
	}
}

func TestStartDiscardsRequestsPostedWhileStopped(t *testing.T) {
	s, err := New(testConfig(2), nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.RequestStop(1); err != nil {
		t.Fatalf("RequestStop(1) = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer s.Stop()
	time.Sleep(20 * time.Millisecond)
	if !s.Active(1) {
		t.Error("Active(1) = false, a stop posted before Start was applied")
	}
}

func TestStopParksElevatorMidTrip(t *testing.T) {
	cfg := testConfig(1)
	cfg.TimeUnit = 5 * time.Millisecond
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	e, _ := s.Elevator(1)
	_ = s.CallElevator(1, e.FloorCount)
	_ = s.CallElevator(1, 2)
	waitFor(t, "trip to start", func() bool {
		e, _ := s.Elevator(1)
		return e.TargetFloor != nil
	})
	s.Stop()

	e, _ = s.Elevator(1)
	if e.TargetFloor != nil {
		t.Errorf("TargetFloor = %d after Stop, expected nil", *e.TargetFloor)
	}
	if e.Behaviour != types.Idle {
		t.Errorf("Behaviour = %v after Stop, expected Idle", e.Behaviour)
	}
	if !slices.Equal(e.Queue, []int{2}) {
		t.Errorf("Queue = %v after Stop, expected [2] kept for the next run", e.Queue)
	}
}
