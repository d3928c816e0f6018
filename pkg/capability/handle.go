package capability

import (
	"fmt"
	"sync"
	"time"
)

// Handle owns one controller instance and tracks its lifecycle status,
// mirroring spec §3's ControllerHandle. All status transitions go through
// Handle's methods so the manager never has to reach into a controller's
// internals to know whether it's safe to call Advance.
type Handle struct {
	mu         sync.Mutex
	name       string
	role       Role
	controller Controller
	status     Status
	dt         time.Duration
	paramPath  string
}

// NewHandle wraps a freshly constructed controller instance. The handle
// starts Unconstructed until Bind is called.
func NewHandle(name string, role Role, controller Controller) *Handle {
	return &Handle{
		name:       name,
		role:       role,
		controller: controller,
		status:     StatusUnconstructed,
	}
}

func (h *Handle) Name() string { return h.name }
func (h *Handle) Role() Role   { return h.role }

func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Controller returns the wrapped capability instance, for callers (like
// pre_stop_hook dispatch) that need the concrete controller rather than
// handle-mediated access.
func (h *Handle) Controller() Controller {
	return h.controller
}

// Bind injects the shared state/command cells and moves the handle to
// Constructed. It is the Go analogue of the plugin's create() call.
func (h *Handle) Bind(state, command CellRef) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controller.Create(state, command)
	if h.status == StatusUnconstructed {
		h.status = StatusConstructed
	}
}

// SetParameterPath records where this controller should load tuning data
// from, forwarding to the underlying controller.
func (h *Handle) SetParameterPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paramPath = path
	h.controller.SetParameterPath(path)
}

// Initialise is idempotent: calling it on an already-Initialised (or
// Running) handle is a no-op success, per spec §4.2. A Stopped or Failed
// handle is initialised again through the controller.
func (h *Handle) Initialise(dt time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status == StatusInitialised || h.status == StatusRunning {
		return nil
	}
	if err := h.controller.Initialise(dt); err != nil {
		h.status = StatusFailed
		return fmt.Errorf("initialise %q: %w", h.name, err)
	}
	h.dt = dt
	h.status = StatusInitialised
	return nil
}

// Activate marks the handle Running. Callers must have already ensured it
// is Initialised (or Reset, which re-enters Initialised) — the manager
// calls this each time it makes the handle active, just before storing it
// in the active pointer.
func (h *Handle) Activate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusRunning
}

// Advance computes one control step. The caller (the tick worker) must
// only call this while the handle is the manager's active handle.
func (h *Handle) Advance() error {
	if err := h.controller.Advance(); err != nil {
		h.mu.Lock()
		h.status = StatusFailed
		h.mu.Unlock()
		return fmt.Errorf("advance %q: %w", h.name, err)
	}
	return nil
}

// Reset returns the controller to a clean post-Initialise state, used when
// re-entering a previously stopped controller.
func (h *Handle) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.controller.Reset(); err != nil {
		h.status = StatusFailed
		return fmt.Errorf("reset %q: %w", h.name, err)
	}
	h.status = StatusInitialised
	return nil
}

// Stop releases transient resources. Must succeed per spec §4.2; a
// controller that fails to stop cleanly is logged by the caller but the
// handle still transitions to Stopped, since nothing downstream can retry
// a stop.
func (h *Handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.controller.Stop()
	h.status = StatusStopped
	if err != nil {
		return fmt.Errorf("stop %q: %w", h.name, err)
	}
	return nil
}

// RunPreStopHook invokes the controller's optional pre_stop_hook, if it
// implements one. Called synchronously, immediately before the active
// pointer swap, per spec §4.2/§4.4.
func (h *Handle) RunPreStopHook() {
	if hook, ok := h.controller.(PreStopHook); ok {
		hook.PreStopHook()
	}
}
