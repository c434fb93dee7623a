package fleet

import "liftsim/src/types"

type cmdKind int

const (
	cmdStop cmdKind = iota
	cmdRestart
)

// command is a stop or restart request waiting for the next supervisor tick.
type command struct {
	kind cmdKind
	id   int
}

// RequestStop asks the supervisor to stop elevator id on its next tick.
// Safe to call at any time, also while no simulation is running.
func (s *Supervisor) RequestStop(id int) error {
	return s.post(command{kind: cmdStop, id: id})
}

// RequestRestart asks the supervisor to relaunch elevator id on its next tick.
func (s *Supervisor) RequestRestart(id int) error {
	return s.post(command{kind: cmdRestart, id: id})
}

func (s *Supervisor) post(cmd command) error {
	if err := s.checkID(cmd.id); err != nil {
		return err
	}
	select {
	case s.mailbox <- cmd:
		return nil
	default:
		return types.ErrMailboxFull
	}
}

// drain empties the mailbox, returning the requested ids in arrival order.
func (s *Supervisor) drain() (stopped, runAgain []int) {
	for {
		select {
		case cmd := <-s.mailbox:
			switch cmd.kind {
			case cmdStop:
				stopped = append(stopped, cmd.id)
			case cmdRestart:
				runAgain = append(runAgain, cmd.id)
			}
		default:
			return stopped, runAgain
		}
	}
}
