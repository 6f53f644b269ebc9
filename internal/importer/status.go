package importer

import "plinth/internal/mesh"

// Phase is the pipeline's externally observable state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseScanning   Phase = "scanning"
	PhaseProcessing Phase = "processing"
	PhaseFinalizing Phase = "finalizing"
	PhaseReviewing  Phase = "reviewing"
)

// Snapshot is a point-in-time copy of the session state. Records is
// populated only once the phase is reviewing.
type Snapshot struct {
	Phase       Phase
	Processed   int
	Total       int
	CurrentName string
	Errors      []ItemError
	Records     []*mesh.Record
}

// Update is one aggregated progress emission. Processed is cumulative and
// monotonically non-decreasing; Errors carries only failures new since the
// previous update.
type Update struct {
	Processed   int
	Total       int
	CurrentName string
	Errors      []ItemError
}
