//go:build !cgo

package input

// Pure-Go shims when building without cgo.

func moveMouse(x, y int) error            { return ErrUnsupported }
func mouseLocation() (int, int, error)    { return 0, 0, ErrUnsupported }
func toggle(btn Button, dir string) error { return ErrUnsupported }
