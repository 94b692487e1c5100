package session

// Phase represents the current stage of a reading session.
type Phase int

const (
	PhaseSelection Phase = iota // Choosing a spread
	PhaseShuffling              // Shuffle animation running, draw pending
	PhaseDrawing                // Cards dealt face-down, being revealed
	PhaseReading                // All cards revealed; interpretation available
)

// validTransitions defines the allowed Phase transitions. Reset is handled
// separately: any phase may return to Selection.
var validTransitions = map[Phase][]Phase{
	PhaseSelection: {PhaseShuffling},
	PhaseShuffling: {PhaseDrawing},
	PhaseDrawing:   {PhaseReading},
	PhaseReading:   {},
}

// CanTransitionTo reports whether transitioning from p to next is valid.
func (p Phase) CanTransitionTo(next Phase) bool {
	if next == PhaseSelection {
		return true // reset is always allowed
	}
	for _, valid := range validTransitions[p] {
		if valid == next {
			return true
		}
	}
	return false
}

// Label returns a short uppercase label for the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseSelection:
		return "SELECTION"
	case PhaseShuffling:
		return "SHUFFLING"
	case PhaseDrawing:
		return "DRAWING"
	case PhaseReading:
		return "READING"
	default:
		return "UNKNOWN"
	}
}
