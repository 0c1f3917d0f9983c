package states

import "fmt"

// GamePhase is where a single 2048 game sits in its lifecycle
type GamePhase int

const (
	PhaseInitializing GamePhase = iota // board dealt, no move requested yet
	PhaseRunning                       // moves requested and applied
	PhaseEnding                        // outcome known, record being saved
	PhaseEnded                         // record saved
	PhaseError                         // the game could not be finished
	PhaseReset                         // board discarded, a new deal follows
)

var phaseNames = [...]string{
	PhaseInitializing: "Initializing",
	PhaseRunning:      "Running",
	PhaseEnding:       "Ending",
	PhaseEnded:        "Ended",
	PhaseError:        "Error",
	PhaseReset:        "Reset",
}

// edges lists, per phase, the phases reachable in one step. A quit leaves
// Running straight for Reset; a failed save leaves Ending for Error.
var edges = map[GamePhase][]GamePhase{
	PhaseInitializing: {PhaseRunning, PhaseError},
	PhaseRunning:      {PhaseEnding, PhaseReset, PhaseError},
	PhaseEnding:       {PhaseEnded, PhaseError},
	PhaseEnded:        {PhaseReset},
	PhaseError:        {PhaseReset},
	PhaseReset:        {PhaseInitializing},
}

func (p GamePhase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Unknown(%d)", int(p))
}

// IsTerminal reports whether the game is over, successfully or not
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanReceiveMoves reports whether the board accepts moves in p
func (p GamePhase) CanReceiveMoves() bool { return p == PhaseRunning }

// AllowedTransitions returns a copy of the phases reachable from p
func (p GamePhase) AllowedTransitions() []GamePhase {
	return append([]GamePhase{}, edges[p]...)
}

func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, next := range edges[p] {
		if next == target {
			return true
		}
	}
	return false
}

// ParsePhase is the inverse of String
func ParsePhase(name string) (GamePhase, bool) {
	for i, n := range phaseNames {
		if n == name {
			return GamePhase(i), true
		}
	}
	return PhaseInitializing, false
}
