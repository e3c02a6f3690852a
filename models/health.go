package models

// Health is the snapshot served by the diagnostics /healthz endpoint.
type Health struct {
	Status            string     `json:"status"`
	AuthStatus        AuthStatus `json:"authStatus"`
	RealtimeConnected bool       `json:"realtimeConnected"`
	PendingTasks      int        `json:"pendingTasks"`
	Version           string     `json:"version"`
}
