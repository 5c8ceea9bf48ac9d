package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseStart   EventType = "phase_start"
	EventPhaseEnd     EventType = "phase_end"
	EventInstallStart EventType = "install_start"
	EventInstallEnd   EventType = "install_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// PhaseEvent marks entry into or exit from a pipeline phase.
type PhaseEvent struct {
	EventBase
	Phase   string `json:"phase"`
	Targets int    `json:"targets"`
	Failed  int    `json:"failed,omitempty"` // only meaningful on phase_end
}

// InstallEvent describes one target's trip through the install pool.
type InstallEvent struct {
	EventBase
	Target   string        `json:"target"`
	Strategy string        `json:"strategy"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      string        `json:"err,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Install hooks fire from worker goroutines; implementations must be
// safe for concurrent use.
type LifecycleHooks struct {
	OnPhaseStart   func(context.Context, *PhaseEvent)
	OnPhaseEnd     func(context.Context, *PhaseEvent)
	OnInstallStart func(context.Context, *InstallEvent)
	OnInstallEnd   func(context.Context, *InstallEvent)
}
