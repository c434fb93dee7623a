package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"liftsim/src/building"
	"liftsim/src/config"
	"liftsim/src/fleet"
	"liftsim/src/types"
)

func newConsole(t *testing.T) (*Console, *fleet.Supervisor, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Elevators = 2
	cfg.CallThreshold = 0
	cfg.TimeUnit = time.Millisecond
	cfg.Seed = 7
	out := &bytes.Buffer{}
	c := New(out)
	s, err := fleet.New(cfg, c)
	if err != nil {
		t.Fatalf("fleet.New() = %v", err)
	}
	c.Attach(s)
	return c, s, out
}

func TestFormatCalls(t *testing.T) {
	b := building.BuildingState{
		FloorCount: 3,
		LeftCalls:  []bool{true, false, false},
		RightCalls: []bool{false, false, true},
	}
	if got := FormatCalls(b); got != "L.|..|.R" {
		t.Errorf("FormatCalls() = %q, expected %q", got, "L.|..|.R")
	}
}

func TestExecCommands(t *testing.T) {
	c, s, _ := newConsole(t)
	ctx := context.Background()

	if err := c.Exec(ctx, "c 1 3"); err != nil {
		t.Fatalf("Exec(c 1 3) = %v", err)
	}
	if e, _ := s.Elevator(1); len(e.Queue) != 1 || e.Queue[0] != 3 {
		t.Errorf("elevator 1 queue = %v, expected [3]", e.Queue)
	}
	if err := c.Exec(ctx, "d 2"); err != nil {
		t.Fatalf("Exec(d 2) = %v", err)
	}
	if e, _ := s.Elevator(2); !e.DoorOpen {
		t.Error("elevator 2 doors closed after d 2")
	}

	if err := c.Exec(ctx, "t"); err != nil || !s.Running() {
		t.Fatalf("Exec(t) = %v, Running() = %v", err, s.Running())
	}
	if err := c.Exec(ctx, "t"); err != nil || s.Running() {
		t.Fatalf("Exec(t) = %v, Running() = %v, expected stopped", err, s.Running())
	}

	if err := c.Exec(ctx, "q"); !errors.Is(err, ErrQuit) {
		t.Errorf("Exec(q) = %v, expected ErrQuit", err)
	}
	if err := c.Exec(ctx, ""); err != nil {
		t.Errorf("Exec(\"\") = %v", err)
	}
}

func TestExecErrors(t *testing.T) {
	c, _, _ := newConsole(t)
	ctx := context.Background()
	tests := []struct {
		line string
		want error
	}{
		{"c 9 1", types.ErrUnknownElevator},
		{"c 1 9", types.ErrFloorOutOfRange},
		{"p 0", types.ErrUnknownElevator},
	}
	for _, tt := range tests {
		if err := c.Exec(ctx, tt.line); !errors.Is(err, tt.want) {
			t.Errorf("Exec(%q) = %v, expected %v", tt.line, err, tt.want)
		}
	}
	for _, line := range []string{"x", "p", "c 1", "s one"} {
		if err := c.Exec(ctx, line); err == nil {
			t.Errorf("Exec(%q) = nil, expected an error", line)
		}
	}
}

func TestPrintStatus(t *testing.T) {
	c, _, out := newConsole(t)
	c.OnPosition(1, 50)
	c.PrintStatus()
	text := out.String()
	if !strings.Contains(text, "Simulation stopped") {
		t.Errorf("status missing run state:\n%s", text)
	}
	if lines := strings.Count(text, "\n"); lines != 4 {
		t.Errorf("status has %d lines, expected 4:\n%s", lines, text)
	}
	if !strings.Contains(text, "50.0") {
		t.Errorf("status missing reported position:\n%s", text)
	}
}
