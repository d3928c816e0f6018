// Package setup wires a parsed config.Config into a running pkg/manager
// instance: resolving each controller_pairs entry through pkg/registry,
// binding cells, and applying the downgrade/fatal rules from SPEC_FULL.md
// §4.3/§7. It exists so cmd/rocoma stays a thin flag-parsing shell, the
// same split the teacher keeps between cmd/eva/main.go and pkg/eva.
package setup

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/matthewgan/rocoma/internal/config"
	"github.com/matthewgan/rocoma/pkg/capability"
	"github.com/matthewgan/rocoma/pkg/cell"
	"github.com/matthewgan/rocoma/pkg/manager"
	"github.com/matthewgan/rocoma/pkg/notify"
	"github.com/matthewgan/rocoma/pkg/registry"
)

// Build constructs a manager and registers every controller pair from cfg
// against it. The registry must already have factories registered for
// every plugin_name the config references (see controllers.Register). bus is
// handed to plugin classes registered with needsTransport as their
// FactoryParams.Transport, so is_ros: true pairs can resolve.
func Build(cfg *config.Config, reg *registry.Registry, bus *notify.Bus, log *slog.Logger) (*manager.Manager, error) {
	dt := time.Duration(cfg.TimeStep * float64(time.Second))

	failproofCtrl, err := reg.Resolve(capability.RoleFailproof, cfg.FailproofController, registry.FactoryParams{
		Name:                    cfg.FailproofController,
		ExpectedStateTypeName:   cfg.StateTypeName,
		ExpectedCommandTypeName: cfg.CommandTypeName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	failproofHandle := bindHandle(cfg.FailproofController, capability.RoleFailproof, failproofCtrl, "")

	m, err := manager.New(dt, failproofHandle, bus, log)
	if err != nil {
		return nil, err
	}

	for _, pair := range cfg.ControllerPairs {
		rec, ok := resolvePair(reg, pair, cfg, bus, log)
		if !ok {
			continue
		}
		if err := m.AddRecord(rec); err != nil {
			log.Warn("setup: dropping duplicate controller", "name", rec.Name, "error", err)
			continue
		}
	}
	return m, nil
}

func resolvePair(reg *registry.Registry, pair config.ControllerPair, cfg *config.Config, bus *notify.Bus, log *slog.Logger) (*registry.Record, bool) {
	nominalCtrl, err := reg.Resolve(capability.RoleNominal, pair.Controller.PluginName, registry.FactoryParams{
		Name:                    pair.Controller.Name,
		ParameterPath:           pair.Controller.ParameterPath,
		Transport:               transportFor(pair.Controller.IsROS, bus),
		ExpectedStateTypeName:   cfg.StateTypeName,
		ExpectedCommandTypeName: cfg.CommandTypeName,
	})
	if err != nil {
		log.Warn("setup: nominal plugin load failed, dropping controller",
			"name", pair.Controller.Name, "error", fmt.Errorf("%w: %w", manager.ErrPluginLoad, err))
		return nil, false
	}
	nominalHandle := bindHandle(pair.Controller.Name, capability.RoleNominal, nominalCtrl, pair.Controller.ParameterPath)

	rec := &registry.Record{
		Name:          pair.Controller.Name,
		PluginClass:   pair.Controller.PluginName,
		ParameterPath: pair.Controller.ParameterPath,
		RosFlavoured:  pair.Controller.IsROS,
		Nominal:       nominalHandle,
	}

	if pair.HasEmergency() {
		emergencyCtrl, err := reg.Resolve(capability.RoleEmergency, pair.EmergencyController.PluginName, registry.FactoryParams{
			Name:                    pair.EmergencyController.Name,
			ParameterPath:           pair.EmergencyController.ParameterPath,
			Transport:               transportFor(pair.EmergencyController.IsROS, bus),
			ExpectedStateTypeName:   cfg.StateTypeName,
			ExpectedCommandTypeName: cfg.CommandTypeName,
		})
		if err != nil {
			log.Warn("setup: emergency plugin load failed, downgrading pair to failproof fallback",
				"name", pair.Controller.Name, "emergency", pair.EmergencyController.Name,
				"error", fmt.Errorf("%w: %w", manager.ErrPluginLoad, err))
		} else {
			rec.Emergency = bindHandle(pair.EmergencyController.Name, capability.RoleEmergency, emergencyCtrl, pair.EmergencyController.ParameterPath)
		}
	}
	return rec, true
}

// transportFor returns the transport handle a plugin class should be
// resolved with: the shared bus for ROS-flavoured refs (spec §4.3), nil
// otherwise so agnostic classes stay untouched.
func transportFor(isROS bool, bus *notify.Bus) registry.Transport {
	if !isROS {
		return nil
	}
	return bus
}

func bindHandle(name string, role capability.Role, ctrl capability.Controller, paramPath string) *capability.Handle {
	h := capability.NewHandle(name, role, ctrl)
	state := cell.New(nil)
	command := cell.New(nil)
	h.Bind(state, command)
	if paramPath != "" {
		h.SetParameterPath(paramPath)
	}
	return h
}
