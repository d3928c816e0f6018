package setup

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/matthewgan/rocoma/internal/config"
	"github.com/matthewgan/rocoma/pkg/controllers"
	"github.com/matthewgan/rocoma/pkg/notify"
	"github.com/matthewgan/rocoma/pkg/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func baseConfig() *config.Config {
	return &config.Config{
		FailproofController: "failproof",
		TimeStep:            0.01,
		StateTypeName:       "DemoState",
		CommandTypeName:     "DemoCommand",
	}
}

func TestBuild_ResolvesRosPairWithSharedBus(t *testing.T) {
	reg := registry.New()
	controllers.Register(reg)

	cfg := baseConfig()
	cfg.ControllerPairs = []config.ControllerPair{{
		Controller:          config.ControllerRef{PluginName: "demo_walk_ros", Name: "WALK_ROS", IsROS: true},
		EmergencyController: config.ControllerRef{PluginName: "demo_stand_ros", Name: "STAND_ROS", IsROS: true},
	}}

	bus := notify.New()
	m, err := Build(cfg, reg, bus, discardLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	names := m.AvailableControllers()
	if len(names) != 3 || names[0] != "failproof" || names[1] != "WALK_ROS" || names[2] != "STAND_ROS" {
		t.Fatalf("AvailableControllers = %v, want [failproof WALK_ROS STAND_ROS]", names)
	}
}

func TestBuild_TypeMismatchDropsController(t *testing.T) {
	reg := registry.New()
	controllers.Register(reg)

	cfg := baseConfig()
	cfg.StateTypeName = "SomethingElse"
	cfg.ControllerPairs = []config.ControllerPair{{
		Controller: config.ControllerRef{PluginName: "demo_walk", Name: "WALK"},
	}}

	bus := notify.New()
	m, err := Build(cfg, reg, bus, discardLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	names := m.AvailableControllers()
	if len(names) != 1 || names[0] != "failproof" {
		t.Fatalf("AvailableControllers = %v, want only [failproof]", names)
	}
}

func TestBuild_MissingFailproofIsFatal(t *testing.T) {
	reg := registry.New()
	controllers.Register(reg)

	cfg := baseConfig()
	cfg.FailproofController = "nonexistent"

	bus := notify.New()
	_, err := Build(cfg, reg, bus, discardLogger())
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected registry.ErrNotFound wrapped, got %v", err)
	}
}

func TestBuild_EmergencyLoadFailureDowngradesToFailproofFallback(t *testing.T) {
	reg := registry.New()
	controllers.Register(reg)

	cfg := baseConfig()
	cfg.ControllerPairs = []config.ControllerPair{{
		Controller:          config.ControllerRef{PluginName: "demo_walk", Name: "WALK"},
		EmergencyController: config.ControllerRef{PluginName: "nonexistent_class", Name: "STAND"},
	}}

	bus := notify.New()
	m, err := Build(cfg, reg, bus, discardLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	names := m.AvailableControllers()
	if len(names) != 2 || names[1] != "WALK" {
		t.Fatalf("AvailableControllers = %v, want [failproof WALK]", names)
	}
}
