package controllers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/matthewgan/rocoma/pkg/capability"
)

// ErrInjected is returned by Demo.Advance/Initialise when failure injection
// is armed, standing in for whatever real fault a locomotion controller
// might hit mid-tick.
var ErrInjected = errors.New("controllers: injected failure")

// Demo is a minimal nominal/emergency controller used by the default config
// and by pkg/manager's tests: it doesn't walk or stand anything, it just
// counts ticks and optionally fails on command, so tests can drive the
// manager's escalation paths deterministically without a real robot model.
type Demo struct {
	name      string
	state     capability.CellRef
	command   capability.CellRef
	dt        time.Duration
	paramPath string

	ticks       atomic.Int64
	failInit    atomic.Bool
	failAdvance atomic.Bool
	initCalls   atomic.Int64
	initDelay   atomic.Int64 // nanoseconds
}

// NewDemo constructs a demo controller with the given declared name.
func NewDemo(name string) *Demo {
	return &Demo{name: name}
}

func (d *Demo) Name() string { return d.name }

func (d *Demo) Create(state, command capability.CellRef) {
	d.state = state
	d.command = command
}

func (d *Demo) SetParameterPath(path string) { d.paramPath = path }

func (d *Demo) Initialise(dt time.Duration) error {
	d.initCalls.Add(1)
	if delay := d.initDelay.Load(); delay > 0 {
		time.Sleep(time.Duration(delay))
	}
	if d.failInit.Load() {
		return fmt.Errorf("%w: initialise %s", ErrInjected, d.name)
	}
	d.dt = dt
	return nil
}

func (d *Demo) Advance() error {
	if d.failAdvance.Load() {
		return fmt.Errorf("%w: advance %s", ErrInjected, d.name)
	}
	d.ticks.Add(1)
	if d.command != nil {
		d.command.WriteExclusive(func(any) {})
	}
	return nil
}

func (d *Demo) Reset() error {
	d.ticks.Store(0)
	return nil
}

func (d *Demo) Stop() error { return nil }

// ArmInitFailure makes the next Initialise call (and every one after it,
// until disarmed) return ErrInjected. Test-only knob.
func (d *Demo) ArmInitFailure(fail bool) { d.failInit.Store(fail) }

// ArmAdvanceFailure makes every subsequent Advance call return ErrInjected
// until disarmed. Test-only knob.
func (d *Demo) ArmAdvanceFailure(fail bool) { d.failAdvance.Store(fail) }

// SetInitDelay makes Initialise block for d before returning, so tests can
// exercise the manager while a switch is still in flight. Test-only knob.
func (d *Demo) SetInitDelay(delay time.Duration) { d.initDelay.Store(int64(delay)) }

// TickCount reports how many successful Advance calls this controller has
// served since the last Reset. Test-only accessor.
func (d *Demo) TickCount() int64 { return d.ticks.Load() }

// InitCallCount reports how many times Initialise has been called,
// regardless of outcome. Test-only accessor.
func (d *Demo) InitCallCount() int64 { return d.initCalls.Load() }
