package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eiannone/keyboard"

	"liftsim/src/timer"
)

// Keys reads commands from the terminal until ctx is cancelled or q is entered.
// Runes are echoed and collected into a line that Exec runs on Enter.
func (c *Console) Keys(ctx context.Context) error {
	keysEvents, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer keyboard.Close()

	fmt.Fprintln(c.out, "commands: t | p <id> | d <id> | s <id> | r <id> | c <id> <floor> | l | q")
	var line []rune
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-keysEvents:
			if event.Err != nil {
				return fmt.Errorf("read key: %w", event.Err)
			}
			switch event.Key {
			case keyboard.KeyCtrlC, keyboard.KeyEsc:
				return ErrQuit
			case keyboard.KeyEnter:
				fmt.Fprintln(c.out)
				err := c.Exec(ctx, string(line))
				line = line[:0]
				if errors.Is(err, ErrQuit) {
					return err
				}
				if err != nil {
					slog.Warn("Command failed", "error", err)
				}
			case keyboard.KeyBackspace, keyboard.KeyBackspace2:
				if len(line) > 0 {
					line = line[:len(line)-1]
					fmt.Fprint(c.out, "\b \b")
				}
			case keyboard.KeySpace:
				line = append(line, ' ')
				fmt.Fprint(c.out, " ")
			default:
				if event.Rune != 0 {
					line = append(line, event.Rune)
					fmt.Fprintf(c.out, "%c", event.Rune)
				}
			}
		}
	}
}

// Report prints the status table every period until ctx is cancelled.
func (c *Console) Report(ctx context.Context, period time.Duration) {
	for range timer.Ticker(ctx, period) {
		c.PrintStatus()
	}
}
