//go:build cgo

package input

import (
	"github.com/go-vgo/robotgo"
)

func moveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func mouseLocation() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

func toggle(btn Button, dir string) error {
	return robotgo.Toggle(string(btn), dir)
}
