// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

// State is a step of an import's lifecycle.
type State int

const (
	StateCreated State = iota
	StateClassifying
	StateFetching
	StateValidating
	StateStoring
	StateResolving
	StateExtracting
	StateMerging
	StateComplete
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateCreated:     "created",
	StateClassifying: "classifying",
	StateFetching:    "fetching",
	StateValidating:  "validating",
	StateStoring:     "storing",
	StateResolving:   "resolving",
	StateExtracting:  "extracting",
	StateMerging:     "merging",
	StateComplete:    "complete",
	StateCancelled:   "cancelled",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends an import.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled || s == StateFailed
}
