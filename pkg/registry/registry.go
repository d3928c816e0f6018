// Package registry resolves a plugin class name to a freshly constructed
// controller instance. It follows the same shape as the teacher's
// pkg/emotions.Registry (a mutex-guarded map with Register/Get/List), but
// keyed by (role, class) pairs and holding factories instead of already-
// loaded values, since controllers are constructed fresh per record rather
// than shared.
//
// Per the REDESIGN FLAG in spec §9, the five original class-loader
// registries (failproof / emergency-agnostic / emergency-ros /
// nominal-agnostic / nominal-ros) are unified into this single registry,
// parameterized by a needsTransport capability bit instead of five
// separate maps.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/matthewgan/rocoma/pkg/capability"
)

// ErrNotFound is returned by Resolve when no factory is registered for the
// requested (role, class) pair.
var ErrNotFound = errors.New("registry: plugin class not found")

// ErrTransportRequired is returned when a class needing transport is
// resolved without one.
var ErrTransportRequired = errors.New("registry: plugin class requires a transport handle")

// ErrTypeMismatch is returned when a plugin class's declared state/command
// type names don't match the ones the caller configured at construction,
// per the controller plugin contract (spec §6): a plugin declares
// { role, class_name, factory, state_type_name, command_type_name }, and a
// plugin whose declared types don't match those configured is rejected.
var ErrTypeMismatch = errors.New("registry: plugin class type name mismatch")

// Transport is the external-surface handle that transport-aware
// controllers may consume, per spec §4.3 ("transport-aware controllers
// additionally consume a handle to the external surface"). The registry
// treats it opaquely; it's up to the concrete factory to use it.
type Transport any

// FactoryParams are the construction-time inputs available to a factory.
type FactoryParams struct {
	Name          string
	ParameterPath string
	Transport     Transport // nil unless the class was registered with needsTransport

	// ExpectedStateTypeName and ExpectedCommandTypeName are the type names
	// configured for this controller slot (from the parameter store). If
	// non-empty, they must match the plugin class's declared
	// stateTypeName/commandTypeName or Resolve rejects the class.
	ExpectedStateTypeName   string
	ExpectedCommandTypeName string
}

// Factory constructs a fresh, unmanaged controller instance.
type Factory func(params FactoryParams) (capability.Controller, error)

type key struct {
	role  capability.Role
	class string
}

type entry struct {
	factory         Factory
	needsTransport  bool
	stateTypeName   string
	commandTypeName string
}

// Registry maps plugin_class_name -> factory, read-only after setup.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[key]entry)}
}

// Register adds a factory for the given role and plugin class name.
// needsTransport marks classes whose factory requires FactoryParams.Transport
// to be non-nil. stateTypeName and commandTypeName are the plugin's declared
// types (spec §6); leave either blank if the class doesn't care and accepts
// whatever the configured slot expects.
func (r *Registry) Register(role capability.Role, class string, needsTransport bool, stateTypeName, commandTypeName string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key{role, class}] = entry{
		factory:         factory,
		needsTransport:  needsTransport,
		stateTypeName:   stateTypeName,
		commandTypeName: commandTypeName,
	}
}

// Resolve constructs a new controller instance of plugin class `class` for
// the given role. Returns ErrNotFound if no such class is registered,
// ErrTransportRequired if the class needs a transport handle that wasn't
// supplied, or ErrTypeMismatch if the class's declared state/command type
// names don't match params.ExpectedStateTypeName/ExpectedCommandTypeName.
func (r *Registry) Resolve(role capability.Role, class string, params FactoryParams) (capability.Controller, error) {
	r.mu.RLock()
	e, ok := r.entries[key{role, class}]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: role=%s class=%q", ErrNotFound, role, class)
	}
	if e.needsTransport && params.Transport == nil {
		return nil, fmt.Errorf("%w: role=%s class=%q", ErrTransportRequired, role, class)
	}
	if mismatch := typeMismatch(params.ExpectedStateTypeName, e.stateTypeName, params.ExpectedCommandTypeName, e.commandTypeName); mismatch != "" {
		return nil, fmt.Errorf("%w: role=%s class=%q: %s", ErrTypeMismatch, role, class, mismatch)
	}
	ctrl, err := e.factory(params)
	if err != nil {
		return nil, fmt.Errorf("construct role=%s class=%q: %w", role, class, err)
	}
	return ctrl, nil
}

// typeMismatch compares configured type names against a plugin's declared
// ones, ignoring either side that's left blank (meaning "don't care").
func typeMismatch(expectedState, declaredState, expectedCommand, declaredCommand string) string {
	if expectedState != "" && declaredState != "" && expectedState != declaredState {
		return fmt.Sprintf("state_type_name: configured %q, plugin declares %q", expectedState, declaredState)
	}
	if expectedCommand != "" && declaredCommand != "" && expectedCommand != declaredCommand {
		return fmt.Sprintf("command_type_name: configured %q, plugin declares %q", expectedCommand, declaredCommand)
	}
	return ""
}

// Classes lists the plugin class names registered for a role, sorted.
func (r *Registry) Classes(role capability.Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for k := range r.entries {
		if k.role == role {
			names = append(names, k.class)
		}
	}
	sort.Strings(names)
	return names
}
