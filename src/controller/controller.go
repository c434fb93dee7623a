// Package controller routes commands to the addressed elevator by id.
package controller

import (
	"fmt"

	"liftsim/src/elev"
	"liftsim/src/types"
)

type Controller struct {
	elevators []*elev.Elevator // index = elevatorID - 1
}

func New(elevators []*elev.Elevator) *Controller {
	return &Controller{elevators: elevators}
}

// Elevator looks up an elevator by its 1-based id.
func (c *Controller) Elevator(id int) (*elev.Elevator, error) {
	if id < 1 || id > len(c.elevators) {
		return nil, fmt.Errorf("elevator %d of %d: %w", id, len(c.elevators), types.ErrUnknownElevator)
	}
	return c.elevators[id-1], nil
}

func (c *Controller) Len() int {
	return len(c.elevators)
}

// CallElevator queues a request for floor on elevator id.
func (c *Controller) CallElevator(id, floor int) error {
	elevator, err := c.Elevator(id)
	if err != nil {
		return err
	}
	return elevator.Enqueue(floor)
}

// TogglePower flips the power of elevator id and returns the new state.
func (c *Controller) TogglePower(id int) (bool, error) {
	elevator, err := c.Elevator(id)
	if err != nil {
		return false, err
	}
	return elevator.TogglePower(), nil
}

// ToggleDoor flips the doors of elevator id and returns the new state.
func (c *Controller) ToggleDoor(id int) (bool, error) {
	elevator, err := c.Elevator(id)
	if err != nil {
		return false, err
	}
	return elevator.ToggleDoor(), nil
}
