// Package fleet owns the elevator/building pairs and supervises one generator and one queue
// processor per elevator.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xyproto/randomstring"

	"liftsim/src/building"
	"liftsim/src/config"
	"liftsim/src/controller"
	"liftsim/src/elev"
	"liftsim/src/types"
)

const streetNameLen = 8

// Supervisor runs the fleet. Index i of elevators and buildings belongs to elevator id i+1.
type Supervisor struct {
	cfg       config.Config
	timing    config.Timing
	elevators []*elev.Elevator
	buildings []*building.Building
	ctrl      *controller.Controller
	adapter   types.Observer
	mailbox   chan command

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	pairs   map[int]*taskPair
	seeds   *rand.Rand
}

// New validates cfg and builds the fleet. adapter receives every event; nil discards them.
func New(cfg config.Config, adapter types.Observer) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if adapter == nil {
		adapter = types.NopObserver{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	seeds := rand.New(rand.NewPCG(seed, seed>>1|1))

	s := &Supervisor{
		cfg:     cfg,
		timing:  cfg.Timing(),
		adapter: adapter,
		mailbox: make(chan command, max(4*cfg.Elevators, 16)),
		pairs:   make(map[int]*taskPair),
		seeds:   seeds,
	}

	streets := make(map[int]string)
	for id := 1; id <= cfg.Elevators; id++ {
		streetID := (id+3)/2 + 1
		houseID := id%4 + 1
		floors := cfg.FloorsMin + seeds.IntN(cfg.FloorsMax-cfg.FloorsMin+1)
		occupants := config.OccupantsMin + seeds.IntN(config.OccupantsMax-config.OccupantsMin+1)
		capacity := (config.CapacityMinUnits + seeds.IntN(config.CapacityMaxUnits-config.CapacityMinUnits+1)) * config.CapacityUnit

		b, err := building.New(streetID, houseID, floors, occupants)
		if err != nil {
			return nil, err
		}
		if _, ok := streets[streetID]; !ok {
			streets[streetID] = randomstring.EnglishFrequencyString(streetNameLen) + " street"
		}
		b.SetAddress(fmt.Sprintf("%s %d", streets[streetID], houseID))

		e, err := elev.New(elev.Params{
			ElevatorID:  id,
			StreetID:    streetID,
			HouseID:     houseID,
			FloorCount:  floors,
			Capacity:    capacity,
			BoardingMax: cfg.BoardingMax,
			Timing:      s.timing,
		}, binding{building: b, adapter: adapter}, rand.New(rand.NewPCG(seeds.Uint64(), seeds.Uint64())))
		if err != nil {
			return nil, err
		}
		s.buildings = append(s.buildings, b)
		s.elevators = append(s.elevators, e)
	}
	s.ctrl = controller.New(s.elevators)
	slog.Info("Fleet initialized", "elevators", cfg.Elevators, "seed", seed)
	return s, nil
}

func (s *Supervisor) Len() int {
	return len(s.elevators)
}

func (s *Supervisor) Controller() *controller.Controller {
	return s.ctrl
}

func (s *Supervisor) checkID(id int) error {
	if id < 1 || id > len(s.elevators) {
		return fmt.Errorf("elevator %d of %d: %w", id, len(s.elevators), types.ErrUnknownElevator)
	}
	return nil
}

// Elevator returns a snapshot of elevator id.
func (s *Supervisor) Elevator(id int) (elev.ElevState, error) {
	if err := s.checkID(id); err != nil {
		return elev.ElevState{}, err
	}
	return s.elevators[id-1].Snapshot(), nil
}

// Building returns a snapshot of the building served by elevator id.
func (s *Supervisor) Building(id int) (building.BuildingState, error) {
	if err := s.checkID(id); err != nil {
		return building.BuildingState{}, err
	}
	return s.buildings[id-1].Snapshot(), nil
}

func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Active reports whether elevator id currently has a live task pair.
func (s *Supervisor) Active(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pairs[id]
	return ok
}

// RunID returns the id of the task pair currently serving elevator id.
func (s *Supervisor) RunID(id int) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.pairs[id]
	if !ok {
		return uuid.Nil, false
	}
	return pair.runID, true
}

// CallElevator queues a floor request for elevator id.
func (s *Supervisor) CallElevator(id, floor int) error {
	return s.ctrl.CallElevator(id, floor)
}

// ToggleDoor flips the doors of elevator id.
func (s *Supervisor) ToggleDoor(id int) (bool, error) {
	return s.ctrl.ToggleDoor(id)
}

// TogglePower flips the power of elevator id and asks the supervisor to stop its task pair
// when powered off or restart it when powered on. If the request cannot be posted the power
// is flipped back.
func (s *Supervisor) TogglePower(id int) error {
	powered, err := s.ctrl.TogglePower(id)
	if err != nil {
		return err
	}
	if powered {
		err = s.RequestRestart(id)
	} else {
		err = s.RequestStop(id)
	}
	if err != nil {
		// Nothing was posted, so restore the previous power state.
		_, _ = s.ctrl.TogglePower(id)
		return err
	}
	return nil
}

// binding is the observer each elevator is built with: arrivals clear the building's calls at
// that floor before the adapter hears about them.
type binding struct {
	building *building.Building
	adapter  types.Observer
}

func (b binding) OnPosition(elevatorID int, position float64) {
	b.adapter.OnPosition(elevatorID, position)
}

func (b binding) OnArrival(elevatorID int, floor int) {
	if err := b.building.ClearFloor(floor); err != nil {
		slog.Error("Clearing calls failed", "elevatorID", elevatorID, "floor", floor, "error", err)
	}
	b.adapter.OnArrival(elevatorID, floor)
}

func (b binding) OnDoorChange(elevatorID int, open bool) {
	b.adapter.OnDoorChange(elevatorID, open)
}
