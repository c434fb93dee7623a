package elev

import (
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"

	"liftsim/src/types"
)

// Snapshot returns a deep copy of the elevator state. The queue and target are never shared.
func (e *Elevator) Snapshot() ElevState {
	e.mu.Lock()
	defer e.mu.Unlock()
	var snap ElevState
	if err := deepcopy.Copy(&snap, &e.state); err != nil {
		panic(err)
	}
	return snap
}

func (e *Elevator) ID() int {
	return e.state.ElevatorID
}

func (e *Elevator) FloorCount() int {
	return e.state.FloorCount
}

func (e *Elevator) Capacity() int {
	return e.state.Capacity
}

func (e *Elevator) Floor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Floor
}

// TargetFloor reports the floor being served, ok is false between requests.
func (e *Elevator) TargetFloor() (floor int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.TargetFloor == nil {
		return 0, false
	}
	return *e.state.TargetFloor, true
}

func (e *Elevator) Queue() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.state.Queue)
}

func (e *Elevator) Powered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Powered
}

func (e *Elevator) DoorOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.DoorOpen
}

func (e *Elevator) Passengers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Passengers
}

func (e *Elevator) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Position
}

func (e *Elevator) Behaviour() types.ElevBehaviour {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Behaviour
}

// Enqueue appends a floor request. Out-of-range floors are rejected here so the state machine
// never sees them.
func (e *Elevator) Enqueue(floor int) error {
	if floor < 1 || floor > e.state.FloorCount {
		return fmt.Errorf("elevator %d: floor %d of %d: %w", e.state.ElevatorID, floor, e.state.FloorCount, types.ErrFloorOutOfRange)
	}
	e.mu.Lock()
	e.state.Queue = append(e.state.Queue, floor)
	e.mu.Unlock()
	e.logger.Debug("Floor request queued", "floor", floor)
	return nil
}

// TogglePower flips the power state and returns the new value.
func (e *Elevator) TogglePower() bool {
	e.mu.Lock()
	e.state.Powered = !e.state.Powered
	powered := e.state.Powered
	e.mu.Unlock()
	e.logger.Info("Power toggled", "powered", powered)
	return powered
}

// ToggleDoor flips the door state, notifies the observer and returns the new value.
func (e *Elevator) ToggleDoor() bool {
	e.mu.Lock()
	e.state.DoorOpen = !e.state.DoorOpen
	open := e.state.DoorOpen
	e.mu.Unlock()
	e.logger.Info("Door toggled", "open", open)
	e.observer.OnDoorChange(e.state.ElevatorID, open)
	return open
}

// ReportPosition re-emits the current position without changing it.
func (e *Elevator) ReportPosition() {
	e.observer.OnPosition(e.state.ElevatorID, e.Position())
}

// Abandon drops pending requests and the current target. Only call it while no queue
// processor is running for this elevator; floor and door state are left as they are.
func (e *Elevator) Abandon() {
	e.mu.Lock()
	dropped := len(e.state.Queue)
	e.state.Queue = nil
	e.state.TargetFloor = nil
	e.state.Behaviour = types.Idle
	e.mu.Unlock()
	e.logger.Debug("Queue abandoned", "dropped", dropped)
}

// Park clears the current target and leaves the rest of the queue for a later Run. Only call
// it while no queue processor is running for this elevator.
func (e *Elevator) Park() {
	e.mu.Lock()
	e.state.TargetFloor = nil
	e.state.Behaviour = types.Idle
	pending := len(e.state.Queue)
	e.mu.Unlock()
	e.logger.Debug("Elevator parked", "pending", pending)
}

// nextRequest pops the head of the queue as the new target. When the elevator is unpowered or
// the queue is empty the target is cleared instead.
func (e *Elevator) nextRequest() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.Powered || len(e.state.Queue) == 0 {
		e.state.TargetFloor = nil
		e.state.Behaviour = types.Idle
		return 0, false
	}
	target := e.state.Queue[0]
	e.state.Queue = e.state.Queue[1:]
	e.state.TargetFloor = &target
	return target, true
}

func (e *Elevator) setBehaviour(b types.ElevBehaviour) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Behaviour = b
}

func (e *Elevator) setDoor(open bool) {
	e.mu.Lock()
	e.state.DoorOpen = open
	if open {
		e.state.Behaviour = types.DoorsOpen
	} else {
		e.state.Behaviour = types.Idle
	}
	e.mu.Unlock()
	e.observer.OnDoorChange(e.state.ElevatorID, open)
}

func (e *Elevator) setPassengers(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Passengers = n
}

// advance moves the position by delta, clamped to [0, 100], and returns the new value.
func (e *Elevator) advance(delta float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Position = min(max(e.state.Position+delta, 0), 100)
	return e.state.Position
}

func (e *Elevator) moveToFloor(floor int) {
	e.mu.Lock()
	e.state.Floor = floor
	e.state.Position = e.floorPosition(floor)
	e.mu.Unlock()
	e.logger.Debug("Floor reached", "floor", floor)
}

// stepSize is the position distance between two adjacent floors.
func (e *Elevator) stepSize() float64 {
	return 100 / float64(e.state.FloorCount-1)
}

func (e *Elevator) floorPosition(floor int) float64 {
	return float64(floor-1) * e.stepSize()
}
