// Package console is a terminal front end for the fleet: it receives elevator events, prints
// a status table and turns typed commands into supervisor calls.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"liftsim/src/building"
	"liftsim/src/elev"
	"liftsim/src/types"
	"liftsim/src/utils"
)

var ErrQuit = errors.New("quit requested")

// Fleet is the part of the supervisor the console drives.
type Fleet interface {
	Len() int
	Elevator(id int) (elev.ElevState, error)
	Building(id int) (building.BuildingState, error)
	Running() bool
	Active(id int) bool
	Toggle(ctx context.Context) error
	RequestStop(id int) error
	RequestRestart(id int) error
	TogglePower(id int) error
	ToggleDoor(id int) (bool, error)
	CallElevator(id, floor int) error
}

// Console implements types.Observer. Fleet must be attached before commands are executed.
type Console struct {
	out   io.Writer
	fleet Fleet

	mu        sync.Mutex
	positions map[int]float64
	refreshes map[int]int
}

func New(out io.Writer) *Console {
	return &Console{
		out:       out,
		positions: make(map[int]float64),
		refreshes: make(map[int]int),
	}
}

func (c *Console) Attach(fleet Fleet) {
	c.fleet = fleet
}

func (c *Console) OnPosition(elevatorID int, position float64) {
	c.mu.Lock()
	c.positions[elevatorID] = position
	c.mu.Unlock()
}

func (c *Console) OnArrival(elevatorID int, floor int) {
	slog.Debug("Arrival", "elevatorID", elevatorID, "floor", floor)
}

func (c *Console) OnDoorChange(elevatorID int, open bool) {
	if open {
		slog.Debug("Doors open", "elevatorID", elevatorID)
	} else {
		slog.Debug("Doors closed", "elevatorID", elevatorID)
	}
}

func (c *Console) OnCallsChanged(elevatorID int) {
	c.mu.Lock()
	c.refreshes[elevatorID]++
	c.mu.Unlock()
}

// LastPosition returns the last position reported for elevatorID.
func (c *Console) LastPosition(elevatorID int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positions[elevatorID]
}

// PrintStatus writes one line per elevator.
func (c *Console) PrintStatus() {
	running := "stopped"
	if c.fleet.Running() {
		running = "running"
	}
	fmt.Fprintf(c.out, "Simulation %s\n", running)
	fmt.Fprintf(c.out, "%-4s %-28s %-5s %-6s %-5s %-8s %-6s %-9s %-6s %s\n",
		"ID", "Address", "Floor", "Target", "Door", "Power", "Task", "Load", "Pos", "Calls")
	for id := 1; id <= c.fleet.Len(); id++ {
		e, err := c.fleet.Elevator(id)
		if err != nil {
			continue
		}
		b, _ := c.fleet.Building(id)
		fmt.Fprintf(c.out, "%-4d %-28s %-5d %-6s %-5s %-8s %-6s %-9s %-6.1f %s %v\n",
			id, b.Address, e.Floor, elev.FormatTarget(e), onOff(e.DoorOpen, "open", "shut"),
			onOff(e.Powered, "on", "off"), onOff(c.fleet.Active(id), "live", "-"),
			fmt.Sprintf("%d/%d", e.Passengers, e.Capacity), c.LastPosition(id), FormatCalls(b), e.Queue)
	}
}

// FormatCalls renders a building's calls bottom floor first: L, R or . per side.
func FormatCalls(b building.BuildingState) string {
	cells := make([][2]byte, b.FloorCount)
	utils.ForEachCall(b.LeftCalls, b.RightCalls, func(floor int, side types.Side, active bool) {
		mark := byte('.')
		if active && side == types.Left {
			mark = 'L'
		} else if active {
			mark = 'R'
		}
		cells[floor-1][side] = mark
	})
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.Write(cell[:])
	}
	return sb.String()
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}

// Exec runs one typed command:
//
//	t            start or stop the simulation
//	p <id>       toggle power (stops or restarts the elevator's tasks)
//	d <id>       toggle doors
//	s <id>       stop the elevator's tasks
//	r <id>       restart the elevator's tasks
//	c <id> <f>   call elevator id to floor f
//	l            print status
//	q            quit
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args := make([]int, 0, len(fields)-1)
	for _, field := range fields[1:] {
		n, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("argument %q: %w", field, err)
		}
		args = append(args, n)
	}

	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("command %q takes %d arguments, got %d", fields[0], n, len(args))
		}
		return nil
	}

	switch fields[0] {
	case "q":
		return ErrQuit
	case "l":
		c.PrintStatus()
		return nil
	case "t":
		return c.fleet.Toggle(ctx)
	case "p":
		if err := need(1); err != nil {
			return err
		}
		return c.fleet.TogglePower(args[0])
	case "d":
		if err := need(1); err != nil {
			return err
		}
		_, err := c.fleet.ToggleDoor(args[0])
		return err
	case "s":
		if err := need(1); err != nil {
			return err
		}
		return c.fleet.RequestStop(args[0])
	case "r":
		if err := need(1); err != nil {
			return err
		}
		return c.fleet.RequestRestart(args[0])
	case "c":
		if err := need(2); err != nil {
			return err
		}
		return c.fleet.CallElevator(args[0], args[1])
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}
