// Package input provides a tiny cross-platform abstraction over the pointer
// operations the control service needs. The native implementation lives in
// input_robotgo.go and requires cgo; builds without cgo get stubs that return
// ErrUnsupported.
package input

import (
	"errors"
	"fmt"
	"time"

	t "sweeperctl/internal/types"
)

// ErrUnsupported is returned when the binary was built without native input support.
var ErrUnsupported = errors.New("input: native pointer control not available in this build")

type Button string

// ButtonLeft is the primary button used for clicks.
const ButtonLeft Button = "left"

// Robot drives the host pointer. It holds no state besides the click hold
// duration, so one Robot is shared process-wide.
type Robot struct {
	hold time.Duration
}

// New returns a Robot that keeps the primary button pressed for hold between
// the press and release events of a click.
func New(hold time.Duration) *Robot {
	return &Robot{hold: hold}
}

// MoveTo moves the cursor to absolute screen coordinates (x,y).
func (r *Robot) MoveTo(x, y int) error {
	if err := moveMouse(x, y); err != nil {
		return fmt.Errorf("move pointer to (%d,%d): %w", x, y, err)
	}
	return nil
}

// Location returns the current cursor position.
func (r *Robot) Location() (t.Location, error) {
	x, y, err := mouseLocation()
	if err != nil {
		return t.Location{}, fmt.Errorf("read pointer location: %w", err)
	}
	return t.Location{X: x, Y: y}, nil
}

// Click presses and releases the primary button where the pointer currently is.
func (r *Robot) Click() error {
	if err := toggle(ButtonLeft, "down"); err != nil {
		return fmt.Errorf("press %s button: %w", ButtonLeft, err)
	}
	if r.hold > 0 {
		time.Sleep(r.hold)
	}
	if err := toggle(ButtonLeft, "up"); err != nil {
		return fmt.Errorf("release %s button: %w", ButtonLeft, err)
	}
	return nil
}
