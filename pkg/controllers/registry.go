package controllers

import (
	"fmt"

	"github.com/matthewgan/rocoma/pkg/capability"
	"github.com/matthewgan/rocoma/pkg/notify"
	"github.com/matthewgan/rocoma/pkg/registry"
)

// Register adds the built-in failproof and demo plugin classes to reg,
// under the plugin_name values the default config expects: "failproof",
// "demo_walk", "demo_stand", plus their transport-aware siblings
// "demo_walk_ros"/"demo_stand_ros" for is_ros: true pairs. All of them
// declare "DemoState"/"DemoCommand" as their state/command types, matching
// the default parameter store (internal/config).
func Register(reg *registry.Registry) {
	reg.Register(capability.RoleFailproof, "failproof", false, "", "", func(registry.FactoryParams) (capability.Controller, error) {
		return NewFailproof(), nil
	})
	reg.Register(capability.RoleNominal, "demo_walk", false, "DemoState", "DemoCommand", func(p registry.FactoryParams) (capability.Controller, error) {
		return NewDemo(p.Name), nil
	})
	reg.Register(capability.RoleEmergency, "demo_stand", false, "DemoState", "DemoCommand", func(p registry.FactoryParams) (capability.Controller, error) {
		return NewDemo(p.Name), nil
	})

	reg.Register(capability.RoleNominal, "demo_walk_ros", true, "DemoState", "DemoCommand", func(p registry.FactoryParams) (capability.Controller, error) {
		bus, ok := p.Transport.(*notify.Bus)
		if !ok {
			return nil, fmt.Errorf("controllers: demo_walk_ros requires a *notify.Bus transport, got %T", p.Transport)
		}
		return NewDemoROS(p.Name, bus), nil
	})
	reg.Register(capability.RoleEmergency, "demo_stand_ros", true, "DemoState", "DemoCommand", func(p registry.FactoryParams) (capability.Controller, error) {
		bus, ok := p.Transport.(*notify.Bus)
		if !ok {
			return nil, fmt.Errorf("controllers: demo_stand_ros requires a *notify.Bus transport, got %T", p.Transport)
		}
		return NewDemoROS(p.Name, bus), nil
	})
}
