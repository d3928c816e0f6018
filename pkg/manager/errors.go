package manager

import "errors"

// Error taxonomy from spec §7. These are caught and reclassified at the
// manager boundary; controller code itself must not propagate unstructured
// failures past Advance/Initialise, matching the teacher's
// pkg/emotions/errors.go sentinel-error style.
var (
	// ErrFailproofMissing is SetupError.FailproofMissing: fatal, must
	// terminate the process before any tick runs.
	ErrFailproofMissing = errors.New("manager: failproof controller missing")

	// ErrPluginLoad is SetupError.PluginLoad: non-fatal, the offending
	// controller is skipped (and, if an emergency pair member, downgrades
	// that pair to failproof fallback).
	ErrPluginLoad = errors.New("manager: plugin load failed")

	// ErrInitialiseFail is RuntimeError.InitialiseFail.
	ErrInitialiseFail = errors.New("manager: controller initialise failed")

	// ErrAdvanceFail is RuntimeError.AdvanceFail.
	ErrAdvanceFail = errors.New("manager: controller advance failed")

	// ErrSwitchWhileLatched is ProtocolError.SwitchWhileLatched.
	ErrSwitchWhileLatched = errors.New("manager: switch rejected, emergency stop latched")

	// ErrSwitchDuringSwitch is ProtocolError.SwitchDuringSwitch.
	ErrSwitchDuringSwitch = errors.New("manager: switch rejected, another switch in progress")

	// ErrUnknownController is ProtocolError.UnknownController.
	ErrUnknownController = errors.New("manager: unknown controller name")

	// ErrNotLatched is returned by ClearEmergencyStop when the manager
	// isn't currently latched.
	ErrNotLatched = errors.New("manager: clear_emergency_stop while not latched")
)
