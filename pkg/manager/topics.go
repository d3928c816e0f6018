package manager

// Notification topics published on the manager's notify.Bus, per spec §4.5.
const (
	TopicControllerChanged     = "controller_changed"
	TopicEmergencyState        = "emergency_state"
	TopicManagerState          = "manager_state"
	TopicClearedEmergencyState = "cleared_emergency_state"
)

// EmergencyStatePayload is the payload for TopicEmergencyState.
type EmergencyStatePayload struct {
	IsOK bool `json:"is_ok"`
}

// ClearedEmergencyStatePayload is the payload for TopicClearedEmergencyState.
type ClearedEmergencyStatePayload struct {
	Cleared bool `json:"cleared"`
}

// ManagerStatePayload is the payload for TopicManagerState.
type ManagerStatePayload struct {
	Phase string `json:"phase"`
}

// ControllerChangedPayload is the payload for TopicControllerChanged.
type ControllerChangedPayload struct {
	Name string `json:"name"`
}
