// Package config loads the controller-manager's parameter store: a YAML
// file under the top-level controller_manager key, per SPEC_FULL.md §6.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ControllerRef names one plugin instance within a controller_pairs entry.
type ControllerRef struct {
	PluginName       string `yaml:"plugin_name"`
	Name             string `yaml:"name"`
	IsROS            bool   `yaml:"is_ros"`
	ParameterPackage string `yaml:"parameter_package"`
	ParameterPath    string `yaml:"parameter_path"`
}

// ControllerPair is one nominal/emergency entry under controller_pairs. If
// Emergency.Name is empty the pair has no paired emergency controller and
// downgrades to failproof fallback (spec §4.3/§6).
type ControllerPair struct {
	Controller          ControllerRef `yaml:"controller"`
	EmergencyController ControllerRef `yaml:"emergency_controller"`
}

// Config is the controller_manager parameter-store document.
type Config struct {
	FailproofController string           `yaml:"failproof_controller"`
	TimeStep            float64          `yaml:"time_step"`
	IsRealRobot         bool             `yaml:"is_real_robot"`
	ControllerPairs     []ControllerPair `yaml:"controller_pairs"`

	// StateTypeName and CommandTypeName are the type names every plugin
	// class resolved against this parameter store must declare, per the
	// controller plugin contract (spec §6). Leave either blank to accept
	// any plugin class regardless of its declared types.
	StateTypeName   string `yaml:"state_type_name"`
	CommandTypeName string `yaml:"command_type_name"`
}

type document struct {
	ControllerManager Config `yaml:"controller_manager"`
}

// Load reads and parses the parameter store at path. A malformed
// controller_pairs entry is skipped with a logged warning rather than
// failing Load outright (spec §6); the fatal conditions Load itself
// checks are FailproofController being unset, since nothing can run
// without it (SetupError.FailproofMissing, spec §7), and TimeStep not
// being positive.
func Load(path string, log *slog.Logger) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg := doc.ControllerManager

	if cfg.FailproofController == "" {
		return nil, fmt.Errorf("config: %q: failproof_controller is required", path)
	}
	if cfg.TimeStep <= 0 {
		return nil, fmt.Errorf("config: %q: time_step must be positive", path)
	}

	pairs := make([]ControllerPair, 0, len(cfg.ControllerPairs))
	for i, p := range cfg.ControllerPairs {
		if p.Controller.Name == "" || p.Controller.PluginName == "" {
			log.Warn("config: skipping malformed controller_pairs entry", "index", i)
			continue
		}
		pairs = append(pairs, p)
	}
	cfg.ControllerPairs = pairs

	return &cfg, nil
}

// HasEmergency reports whether this pair declares a paired emergency
// controller.
func (p ControllerPair) HasEmergency() bool {
	return p.EmergencyController.Name != ""
}
