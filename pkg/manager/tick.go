package manager

import (
	"context"
	"fmt"
	"time"
)

// StartTicks launches the periodic control thread (T-tick in spec §5),
// invoking AdvanceTick at 1/dt Hz until ctx is cancelled. This is the same
// ticker-driven loop shape as the teacher's movement.Manager.Run/tick —
// snapshot-then-advance-then-heartbeat — with the teacher's fmt.Printf
// heartbeats replaced by structured slog calls, since a safety-critical
// arbiter logs through internal/log rather than printing emoji to stdout.
func (m *Manager) StartTicks(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.dt)
		defer ticker.Stop()
		var tickCount uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.AdvanceTick()
				tickCount++
				if tickCount%500 == 0 {
					m.log.Debug("tick heartbeat", "ticks", tickCount, "active", m.ActiveController())
				}
			}
		}
	}()
}

// AdvanceTick acquires a lock-free snapshot of the active handle and calls
// its Advance. A failure synthesises a FailureEmergencyStop, distinct from
// an operator-initiated stop (spec §4.4/§7).
//
// AdvanceTick deliberately blocks until any resulting escalation has
// swapped the active pointer, so it never advances a controller it already
// knows has failed on the following tick.
func (m *Manager) AdvanceTick() {
	active := m.active.Load()
	if active == nil {
		return
	}
	if err := active.Advance(); err != nil {
		m.log.Error("advance failed, synthesising emergency stop", "controller", active.Name(), "error", fmt.Errorf("%w: %w", ErrAdvanceFail, err))
		m.EmergencyStop(FailureEmergencyStop)
	}
}
