// Package controllers holds built-in reference controllers: a failproof
// controller guaranteed never to fail, and a small demo nominal/emergency
// pair used by the default config and by pkg/manager's tests. Real
// locomotion controllers belong in separate plugin packages registered
// through pkg/registry; these exist so the manager has something safe to
// fall back to and something runnable to demo against.
package controllers

import (
	"time"

	"github.com/matthewgan/rocoma/pkg/capability"
)

// Failproof is the distinguished controller every manager falls back to
// when nothing else can run. Its Advance holds the command cell at
// whatever it last held (a freeze), rather than computing anything that
// could itself fail. Initialise/Advance/Reset/Stop all return nil
// unconditionally, per spec §4.2's "must succeed unconditionally".
type Failproof struct {
	name    string
	state   capability.CellRef
	command capability.CellRef
}

// NewFailproof constructs a Failproof controller. plugin class: "failproof".
func NewFailproof() *Failproof {
	return &Failproof{name: "failproof"}
}

func (f *Failproof) Name() string { return f.name }

func (f *Failproof) Create(state, command capability.CellRef) {
	f.state = state
	f.command = command
}

func (f *Failproof) SetParameterPath(string) {}

func (f *Failproof) Initialise(time.Duration) error { return nil }

// Advance deliberately does nothing: holding the last command is the
// safest available action when nothing else can be trusted to run.
func (f *Failproof) Advance() error { return nil }

func (f *Failproof) Reset() error { return nil }

func (f *Failproof) Stop() error { return nil }
