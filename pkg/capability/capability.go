// Package capability defines the uniform contract every locomotion
// controller — nominal, emergency, or failproof — must satisfy, following
// the same interface-segregation style as the teacher's pkg/robot
// (HeadController, AntennaController, ...): small, composable interfaces
// rather than one god object.
package capability

import "time"

// Role tags a controller instance with the part it plays in the
// failure-escalation chain. It is not a capability, just metadata the
// manager and registry use for bookkeeping.
type Role int

const (
	RoleNominal Role = iota
	RoleEmergency
	RoleFailproof
)

func (r Role) String() string {
	switch r {
	case RoleNominal:
		return "nominal"
	case RoleEmergency:
		return "emergency"
	case RoleFailproof:
		return "failproof"
	default:
		return "unknown"
	}
}

// Status is a handle's lifecycle state.
type Status int

const (
	StatusUnconstructed Status = iota
	StatusConstructed
	StatusInitialised
	StatusRunning
	StatusStopped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnconstructed:
		return "unconstructed"
	case StatusConstructed:
		return "constructed"
	case StatusInitialised:
		return "initialised"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller is the capability every locomotion controller implements.
// create/set_parameter_path/initialise/advance/reset/stop from spec §4.2.
type Controller interface {
	// Name returns the controller's declared, read-only name.
	Name() string

	// Create binds the shared state/command cells. Side-effect only.
	Create(state, command CellRef)

	// SetParameterPath declares where the controller may load tuning data;
	// the controller loads it during Initialise, not here.
	SetParameterPath(path string)

	// Initialise prepares the controller to run at fixed tick dt. Idempotent
	// if already initialised. Must not fail for a failproof controller.
	Initialise(dt time.Duration) error

	// Advance computes one control step: reads state under a shared lock,
	// writes command under an exclusive lock.
	Advance() error

	// Reset returns to a clean post-Initialise state without destroying the
	// instance.
	Reset() error

	// Stop releases transient resources, returning to Initialised or
	// Stopped. Must succeed.
	Stop() error
}

// PreStopHook is an optional synchronous callback invoked on the previous
// active controller immediately before the atomic active-pointer swap.
// Controllers that don't need one simply don't implement it.
type PreStopHook interface {
	PreStopHook()
}

// CellRef is the narrow view of pkg/cell.Cell that capability.Controller
// implementations depend on, so this package doesn't need to import cell
// and every controller package doesn't need to know about the manager's
// storage details beyond "a lockable reference". It's satisfied by
// *cell.Cell.
type CellRef interface {
	ReadShared(fn func(value any))
	WriteExclusive(fn func(value any))
	Get() any
}
