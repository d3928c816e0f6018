package controllers

import (
	"time"

	"github.com/matthewgan/rocoma/pkg/notify"
)

// TopicROSBridgeReady is published once by DemoROS.Initialise, so tests and
// observers can confirm a transport-aware controller actually received and
// used the transport handle the registry resolved it with.
const TopicROSBridgeReady = "controllers.ros_bridge_ready"

// ROSBridgeReadyPayload is the payload for TopicROSBridgeReady.
type ROSBridgeReadyPayload struct {
	Controller string
}

// DemoROS is the transport-aware sibling of Demo: same tick/failure-
// injection behaviour, but it consumes a *notify.Bus handle the way a real
// ROS-flavoured controller would consume a node handle or topic bridge,
// exercising the registry's needsTransport path (spec §4.3).
type DemoROS struct {
	*Demo
	bus *notify.Bus
}

// NewDemoROS constructs a transport-aware demo controller. bus must be
// non-nil; the registry only calls this factory when a transport was
// supplied.
func NewDemoROS(name string, bus *notify.Bus) *DemoROS {
	return &DemoROS{Demo: NewDemo(name), bus: bus}
}

// Initialise delegates to Demo.Initialise and, on success, announces over
// the transport that the bridge is up.
func (d *DemoROS) Initialise(dt time.Duration) error {
	if err := d.Demo.Initialise(dt); err != nil {
		return err
	}
	d.bus.Publish(TopicROSBridgeReady, ROSBridgeReadyPayload{Controller: d.Name()})
	return nil
}
