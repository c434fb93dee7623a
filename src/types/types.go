package types

import "errors"

var (
	ErrInvalidFloorCount = errors.New("floor count must be at least 2")
	ErrFloorOutOfRange   = errors.New("floor out of range")
	ErrUnknownElevator   = errors.New("unknown elevator id")
	ErrAlreadyRunning    = errors.New("simulation already running")
	ErrNotRunning        = errors.New("simulation not running")
	ErrMailboxFull       = errors.New("supervisor command mailbox full")
)

// ElevObserver receives the events a single elevator emits. One subscriber per elevator,
// injected at construction.
type ElevObserver interface {
	OnPosition(elevatorID int, position float64)
	OnArrival(elevatorID int, floor int)
	OnDoorChange(elevatorID int, open bool)
}

// Observer is the full presentation adapter contract.
type Observer interface {
	ElevObserver
	OnCallsChanged(elevatorID int)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) OnPosition(int, float64) {}
func (NopObserver) OnArrival(int, int)      {}
func (NopObserver) OnDoorChange(int, bool)  {}
func (NopObserver) OnCallsChanged(int)      {}
