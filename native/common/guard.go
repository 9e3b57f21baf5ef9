package common

import (
	"errors"
	"fmt"
	"strings"
)

var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a module flow has been halted by an administrator.
// Flow names are dotted, e.g. "stablestake.deposit".
type PauseView interface {
	IsPaused(module string) bool
}

// Guard returns ErrModulePaused, annotated with the module name, when the flow
// is paused. A nil view or empty module never blocks.
func Guard(p PauseView, module string) error {
	module = strings.TrimSpace(module)
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%w: %s", ErrModulePaused, module)
	}
	return nil
}
