package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewgan/rocoma/pkg/capability"
	"github.com/matthewgan/rocoma/pkg/cell"
	"github.com/matthewgan/rocoma/pkg/controllers"
	"github.com/matthewgan/rocoma/pkg/notify"
	"github.com/matthewgan/rocoma/pkg/registry"
)

const testDt = 5 * time.Millisecond

func newHandle(name string, role capability.Role, ctrl capability.Controller) *capability.Handle {
	h := capability.NewHandle(name, role, ctrl)
	h.Bind(cell.New(nil), cell.New(nil))
	return h
}

// harness bundles a manager with direct access to its demo controllers, so
// tests can arm failures without going through pkg/registry or YAML config.
type harness struct {
	mgr       *Manager
	bus       *notify.Bus
	failproof *controllers.Failproof
	walk      *controllers.Demo
	stand     *controllers.Demo
	cancel    context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fp := controllers.NewFailproof()
	fpHandle := newHandle("failproof", capability.RoleFailproof, fp)

	bus := notify.New()
	mgr, err := New(testDt, fpHandle, bus, nil)
	require.NoError(t, err)

	walk := controllers.NewDemo("WALK")
	stand := controllers.NewDemo("STAND")
	rec := &registry.Record{
		Name:      "WALK",
		Nominal:   newHandle("WALK", capability.RoleNominal, walk),
		Emergency: newHandle("STAND", capability.RoleEmergency, stand),
	}
	require.NoError(t, mgr.AddRecord(rec))

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	return &harness{mgr: mgr, bus: bus, failproof: fp, walk: walk, stand: stand, cancel: cancel}
}

func (h *harness) close() {
	h.mgr.Stop()
	h.cancel()
}

func TestManager_InitialState(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	assert.Equal(t, "failproof", h.mgr.ActiveController())
	assert.Equal(t, PhaseIdle, h.mgr.Phase())
	assert.False(t, h.mgr.EstopLatched())
}

// Switching to an unknown name fails without touching the active handle.
func TestManager_SwitchUnknownController(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	outcome := h.mgr.SwitchController("nope")
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Equal(t, "failproof", h.mgr.ActiveController())
}

// Switching to the already-active controller reports Running, not Switched.
func TestManager_SwitchToAlreadyActive(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	outcome := h.mgr.SwitchController("failproof")
	assert.Equal(t, OutcomeRunning, outcome)
}

// P3: a successful switch is atomic from the tick worker's perspective —
// once SwitchController returns, the new controller is active and the old
// one never advances again.
func TestManager_SwitchSucceeds(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	outcome := h.mgr.SwitchController("WALK")
	require.Equal(t, OutcomeSwitched, outcome)
	assert.Equal(t, "WALK", h.mgr.ActiveController())

	h.mgr.AdvanceTick()
	assert.Equal(t, int64(1), h.walk.TickCount())
}

// A failed Initialise on the target escalates to its paired emergency
// controller rather than leaving the old controller active.
func TestManager_SwitchInitFailEscalatesToEmergency(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	h.walk.ArmInitFailure(true)
	outcome := h.mgr.SwitchController("WALK")

	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, "STAND", h.mgr.ActiveController())
	assert.True(t, h.mgr.EstopLatched())
}

// When a pair has no emergency controller, an Initialise failure falls
// back straight to failproof.
func TestManager_SwitchInitFailWithoutEmergencyFallsBackToFailproof(t *testing.T) {
	fp := controllers.NewFailproof()
	fpHandle := newHandle("failproof", capability.RoleFailproof, fp)
	bus := notify.New()
	mgr, err := New(testDt, fpHandle, bus, nil)
	require.NoError(t, err)

	solo := controllers.NewDemo("SOLO")
	solo.ArmInitFailure(true)
	require.NoError(t, mgr.AddRecord(&registry.Record{Name: "SOLO", Nominal: newHandle("SOLO", capability.RoleNominal, solo)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	outcome := mgr.SwitchController("SOLO")
	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, "failproof", mgr.ActiveController())
}

// P6: calling EmergencyStop repeatedly while already latched is a no-op
// that doesn't re-escalate or change the active controller.
func TestManager_EmergencyStopIdempotent(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	first := h.mgr.EmergencyStop(OperatorEmergencyStop)
	require.True(t, first.Success)
	active := h.mgr.ActiveController()

	for i := 0; i < 3; i++ {
		res := h.mgr.EmergencyStop(OperatorEmergencyStop)
		assert.True(t, res.Success)
		assert.Equal(t, active, h.mgr.ActiveController())
	}
}

// A switch request arriving while another switch is still in flight is
// rejected immediately, not queued.
func TestManager_SwitchDuringSwitchRejected(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	h.walk.SetInitDelay(50 * time.Millisecond)

	outcomes := make(chan Outcome, 2)
	go func() { outcomes <- h.mgr.SwitchController("WALK") }()
	time.Sleep(10 * time.Millisecond) // let the first switch enter PhaseSwitching

	second := h.mgr.SwitchController("STAND")
	assert.Equal(t, OutcomeError, second)

	first := <-outcomes
	assert.Equal(t, OutcomeSwitched, first)
}

// Scenario: an Advance failure on the active controller triggers a failure
// emergency stop that escalates to its paired emergency controller.
func TestManager_AdvanceFailureTriggersEscalation(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	require.Equal(t, OutcomeSwitched, h.mgr.SwitchController("WALK"))
	h.walk.ArmAdvanceFailure(true)

	h.mgr.AdvanceTick()

	assert.Equal(t, "STAND", h.mgr.ActiveController())
	assert.True(t, h.mgr.EstopLatched())
}

// Scenario: clearing a latch and switching back to the nominal controller
// in one call, the Go analogue of switchControllerAfterEmergencyStop.
func TestManager_SwitchControllerAfterEmergencyStop(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	require.Equal(t, OutcomeSwitched, h.mgr.SwitchController("WALK"))
	require.True(t, h.mgr.EmergencyStop(OperatorEmergencyStop).Success)
	require.Equal(t, "STAND", h.mgr.ActiveController())

	clearResult, outcome := h.mgr.SwitchControllerAfterEmergencyStop("WALK")
	require.True(t, clearResult.Success)
	assert.Equal(t, OutcomeSwitched, outcome)
	assert.Equal(t, "WALK", h.mgr.ActiveController())
	assert.False(t, h.mgr.EstopLatched())
}

// ClearEmergencyStop on a manager that isn't latched reports failure.
func TestManager_ClearEmergencyStopWhileNotLatched(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	res := h.mgr.ClearEmergencyStop()
	assert.False(t, res.Success)
}

// The notification bus sees emergency_state before controller_changed when
// an emergency stop escalates, matching the literal ordering a subscriber
// watching both topics expects.
func TestManager_EmergencyStopNotificationOrdering(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	_, events, unsubscribe := h.bus.Subscribe(16)
	defer unsubscribe()

	// Drain whatever retained values were replayed on subscribe.
	drainRetained(t, events)

	require.Equal(t, OutcomeSwitched, h.mgr.SwitchController("WALK"))
	drainRetained(t, events) // the controller_changed from the switch above

	require.True(t, h.mgr.EmergencyStop(OperatorEmergencyStop).Success)

	var topics []string
	for len(topics) < 2 {
		select {
		case ev := <-events:
			topics = append(topics, ev.Topic)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for emergency stop notifications")
		}
	}
	assert.Equal(t, []string{TopicEmergencyState, TopicControllerChanged}, topics)
}

func drainRetained(t *testing.T, events <-chan notify.Event) {
	t.Helper()
	for {
		select {
		case <-events:
		case <-time.After(20 * time.Millisecond):
			return
		}
	}
}

func TestManager_AvailableControllersIncludesFailproof(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	names := h.mgr.AvailableControllers()
	assert.Contains(t, names, "failproof")
	assert.Contains(t, names, "WALK")
}

// Order must be deterministic: failproof first, then registration order,
// per spec §8 scenario 1's literal ["FP","WALK","STAND"].
func TestManager_AvailableControllersOrderIsDeterministic(t *testing.T) {
	h := newHarness(t)
	defer h.close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, []string{"failproof", "WALK", "STAND"}, h.mgr.AvailableControllers())
	}
}
