package manager

import (
	"fmt"

	"github.com/matthewgan/rocoma/pkg/capability"
	"github.com/matthewgan/rocoma/pkg/registry"
)

// SwitchController drives the switching state machine (spec §4.4's
// transition table). It blocks until the outcome is known: for a
// successful switch that means the target is Initialised and is the
// active handle, so the very next tick advances it (spec §5's ordering
// guarantee).
func (m *Manager) SwitchController(name string) Outcome {
	resp := make(chan Outcome, 1)
	m.cmds <- func() { m.handleSwitch(name, resp) }
	return <-resp
}

func (m *Manager) handleSwitch(name string, resp chan Outcome) {
	if m.phase == PhaseSwitching || m.phase == PhaseEmergencyStopping {
		// ProtocolError.SwitchDuringSwitch: rejected immediately, not queued.
		m.log.Warn("switch rejected", "error", fmt.Errorf("%w: requested=%s phase=%s", ErrSwitchDuringSwitch, name, m.phase))
		resp <- OutcomeError
		return
	}
	if name == m.active.Load().Name() {
		resp <- OutcomeRunning
		return
	}
	rec, ok := m.records[name]
	if !ok {
		// ProtocolError.UnknownController
		m.log.Warn("switch rejected", "error", fmt.Errorf("%w: %s", ErrUnknownController, name))
		resp <- OutcomeNotFound
		return
	}
	if m.estopLatched {
		// ProtocolError.SwitchWhileLatched
		m.log.Warn("switch rejected", "error", fmt.Errorf("%w: requested=%s", ErrSwitchWhileLatched, name))
		resp <- OutcomeError
		return
	}

	m.phase = PhaseSwitching
	target := rec.Nominal
	go func() {
		err := target.Initialise(m.dt)
		m.cmds <- func() { m.finishSwitch(rec, target, err, resp) }
	}()
}

func (m *Manager) finishSwitch(rec *registry.Record, target *capability.Handle, err error, resp chan Outcome) {
	if m.phase != PhaseSwitching {
		// An emergency stop pre-empted this switch while the target was
		// initialising; the fallback it selected stays active.
		m.log.Warn("switch pre-empted by emergency stop", "controller", target.Name(), "phase", m.phase)
		resp <- OutcomeError
		return
	}
	if err == nil {
		m.swapActive(target)
		m.phase = PhaseIdle
		m.bus.Publish(TopicControllerChanged, ControllerChangedPayload{Name: target.Name()})
		m.publishManagerState()
		resp <- OutcomeSwitched
		return
	}

	m.log.Warn("controller initialise failed, escalating", "controller", target.Name(), "error", fmt.Errorf("%w: %w", ErrInitialiseFail, err))

	var next *capability.Handle
	if rec.HasEmergency() {
		next = rec.Emergency
	} else {
		next = m.failproof
	}
	m.phase = PhaseEmergencyStopping
	go func() {
		ierr := next.Initialise(m.dt)
		if ierr != nil && next != m.failproof {
			m.log.Warn("emergency controller initialise failed, falling back to failproof", "controller", next.Name(), "error", ierr)
			next = m.failproof
		}
		// resp is sent from inside this closure, after finishEmergencyStop has
		// actually run on the actor, so SwitchController never returns before
		// the escalation it triggered has landed on the active pointer.
		m.cmds <- func() {
			m.finishEmergencyStop(next, nil)
			resp <- OutcomeError
		}
	}()
}

// swapActive performs the atomic active-pointer swap described in spec
// §4.4: pre_stop_hook on the outgoing controller, reset on the incoming
// one, the swap itself, then stop on the outgoing one outside the critical
// section (here: in a background goroutine, since it must succeed but
// isn't on the hot path).
func (m *Manager) swapActive(next *capability.Handle) {
	cur := m.active.Load()
	cur.RunPreStopHook()
	if err := next.Reset(); err != nil {
		m.log.Error("reset failed on controller entering active", "controller", next.Name(), "error", err)
	}
	next.Activate()
	m.active.Store(next)

	if cur == next {
		return
	}
	go func() {
		if err := cur.Stop(); err != nil {
			m.log.Warn("stop failed on controller leaving active", "controller", cur.Name(), "error", err)
		}
	}()
}
