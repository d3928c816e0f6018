package registry

import "github.com/matthewgan/rocoma/pkg/capability"

// Record is a ControllerRecord per spec §3: the immutable (after setup)
// description of one configured controller slot, pairing a nominal handle
// with an optional emergency handle.
type Record struct {
	Name          string
	PluginClass   string
	ParameterPath string
	RosFlavoured  bool
	Nominal       *capability.Handle
	Emergency     *capability.Handle // nil if this pair was downgraded
}

// HasEmergency reports whether this record has a paired emergency
// controller to escalate to before falling back to failproof.
func (r *Record) HasEmergency() bool {
	return r.Emergency != nil
}
