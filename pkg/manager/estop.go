package manager

import "github.com/matthewgan/rocoma/pkg/capability"

// EmergencyStop runs the emergency-stop protocol (spec §4.4): escalate the
// active controller to its paired emergency controller, or straight to
// failproof if there is none, then latch. It blocks until the active
// pointer has been swapped to the fallback, per spec §5's ordering
// guarantee — any tick beginning after the return advances the fallback.
//
// Idempotent: calling this while already latched is a no-op success
// (P6), regardless of which reason triggered the original latch.
func (m *Manager) EmergencyStop(reason EstopReason) EstopResult {
	resp := make(chan EstopResult, 1)
	m.cmds <- func() { m.handleEmergencyStop(reason, resp) }
	return <-resp
}

func (m *Manager) handleEmergencyStop(reason EstopReason, resp chan EstopResult) {
	if m.estopLatched {
		resp <- EstopResult{Success: true, Message: "already stopped: active=" + m.active.Load().Name()}
		return
	}

	cur := m.active.Load()
	next := m.fallbackFor(cur)
	m.phase = PhaseEmergencyStopping

	go func() {
		err := next.Initialise(m.dt)
		if err != nil && next != m.failproof {
			m.log.Warn("emergency controller initialise failed, falling back to failproof", "controller", next.Name(), "error", err)
			next = m.failproof
			_ = next.Initialise(m.dt) // failproof must not fail, per spec §4.2
		}
		m.cmds <- func() { m.finishEmergencyStop(next, resp) }
	}()
}

// finishEmergencyStop completes the swap and latches. resp may be nil when
// called from the init-fail escalation path in switch.go, which replies to
// its own caller with OutcomeError once this returns.
func (m *Manager) finishEmergencyStop(next *capability.Handle, resp chan EstopResult) {
	m.swapActive(next)
	m.phase = PhaseIdle

	wasLatched := m.estopLatched
	m.estopLatched = true
	if !wasLatched {
		m.bus.Publish(TopicEmergencyState, EmergencyStatePayload{IsOK: false})
		m.bus.Publish(TopicControllerChanged, ControllerChangedPayload{Name: next.Name()})
	}
	m.publishManagerState()

	if resp != nil {
		resp <- EstopResult{Success: true, Message: "active=" + next.Name()}
	}
}

// ClearEmergencyStop unlatches the manager, allowing non-failproof switches
// again. Returns an error if the manager isn't currently latched.
func (m *Manager) ClearEmergencyStop() EstopResult {
	resp := make(chan EstopResult, 1)
	m.cmds <- func() { m.handleClearEmergencyStop(resp) }
	return <-resp
}

func (m *Manager) handleClearEmergencyStop(resp chan EstopResult) {
	if !m.estopLatched {
		resp <- EstopResult{Success: false, Message: ErrNotLatched.Error()}
		return
	}
	m.estopLatched = false
	m.bus.Publish(TopicClearedEmergencyState, ClearedEmergencyStatePayload{Cleared: true})
	m.publishManagerState()
	resp <- EstopResult{Success: true, Message: "cleared"}
}

// SwitchControllerAfterEmergencyStop clears the latch and, if it clears
// successfully, immediately attempts to switch to name — the Go analogue
// of the source's combined switchControllerAfterEmergencyStop. It runs as
// two separate actor round-trips from the caller's goroutine, never from
// inside the actor loop itself, so there's no risk of it deadlocking
// against the single-consumer cmds channel.
func (m *Manager) SwitchControllerAfterEmergencyStop(name string) (EstopResult, Outcome) {
	clearResult := m.ClearEmergencyStop()
	if !clearResult.Success {
		return clearResult, OutcomeError
	}
	return clearResult, m.SwitchController(name)
}
