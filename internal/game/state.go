// Package game is the headless host that drives content loading and battles frame by frame.
package game

// Phase is what the host is currently doing.
type Phase int

const (
	// PhaseLoading waits for the item manifest load cycle to finish.
	PhaseLoading Phase = iota
	// PhaseReady has a published manifest and no battle running.
	PhaseReady
	// PhaseCombat has a battle in progress.
	PhaseCombat
	// PhaseFailed means the load cycle failed; nothing was published.
	PhaseFailed
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseCombat:
		return "combat"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
