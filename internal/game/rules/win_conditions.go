package rules

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Outcome is how a game finished
type Outcome int

const (
	// OutcomeNone means the game is still in progress
	OutcomeNone Outcome = iota
	// OutcomeWon means a 2048 tile was reached
	OutcomeWon
	// OutcomeStuck means the board is full and no direction changes it
	OutcomeStuck
	// OutcomeMoveLimit means the player's move budget ran out
	OutcomeMoveLimit
	// OutcomeQuit means the move source asked to stop
	OutcomeQuit
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:      "",
	OutcomeWon:       "won",
	OutcomeStuck:     "stuck",
	OutcomeMoveLimit: "move_limit",
	OutcomeQuit:      "quit",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// IsFinal reports whether o ends the game
func (o Outcome) IsFinal() bool { return o != OutcomeNone }

// ParseOutcome converts a stored outcome name back to an Outcome
func ParseOutcome(s string) (Outcome, bool) {
	for o, name := range outcomeNames {
		if name == s {
			return o, true
		}
	}
	return OutcomeNone, false
}

// Board is the part of the engine the checker needs
type Board interface {
	IsWon() bool
	IsStuck() bool
}

// WinConditionChecker decides whether a game has finished and why
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver returns the outcome of the game so far. A won board takes
// precedence over a stuck one, and both take precedence over the move budget.
// maxMoves of zero or less means unlimited.
func (wc *WinConditionChecker) CheckGameOver(b Board, moves, maxMoves int) Outcome {
	outcome := OutcomeNone
	switch {
	case b.IsWon():
		outcome = OutcomeWon
	case b.IsStuck():
		outcome = OutcomeStuck
	case maxMoves > 0 && moves >= maxMoves:
		outcome = OutcomeMoveLimit
	}

	wc.logger.Debug().
		Int("moves", moves).
		Int("max_moves", maxMoves).
		Str("outcome", outcome.String()).
		Msg("Game over check complete")

	return outcome
}
