package token

import (
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// PauseGate is the global switch that halts transfer-affecting operations.
// Only the administrator may flip it.
type PauseGate struct {
	access *AccessControl
	paused bool
}

func newPauseGate(access *AccessControl) *PauseGate {
	return &PauseGate{access: access}
}

// Paused reports whether transfers are halted.
func (g *PauseGate) Paused() bool {
	return g.paused
}

func (g *PauseGate) pause(caller id.AccountID) (event.Paused, error) {
	if err := g.access.authorize(caller); err != nil {
		return event.Paused{}, err
	}
	if g.paused {
		return event.Paused{}, ErrAlreadyPaused
	}
	g.paused = true
	return event.Paused{Account: caller}, nil
}

func (g *PauseGate) unpause(caller id.AccountID) (event.Unpaused, error) {
	if err := g.access.authorize(caller); err != nil {
		return event.Unpaused{}, err
	}
	if !g.paused {
		return event.Unpaused{}, ErrNotPaused
	}
	g.paused = false
	return event.Unpaused{Account: caller}, nil
}

// guard fails with ErrTransfersPaused while the gate is engaged.
func (g *PauseGate) guard() error {
	if g.paused {
		return ErrTransfersPaused
	}
	return nil
}
