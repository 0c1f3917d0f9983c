package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext is the per-game data the lifecycle hooks read and reset.
// The owner of the machine mutates it between transitions.
type GameContext struct {
	GameID string
	Player string
	Logger zerolog.Logger

	// MaxMoves of zero or less means the player has no move budget
	MaxMoves int
	Moves    int

	StartTime  time.Time
	LastMoveAt time.Time

	// Outcome is empty until the game is decided
	Outcome string
	Error   error
}

func NewGameContext(gameID, player string, maxMoves int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:   gameID,
		Player:   player,
		MaxMoves: maxMoves,
		Logger:   logger.With().Str("game_id", gameID).Logger(),
	}
}

// CountMove records one accepted move
func (gc *GameContext) CountMove() {
	gc.Moves++
	gc.LastMoveAt = time.Now()
}

// GetElapsedTime is the wall time since the game entered PhaseRunning
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	return time.Since(gc.StartTime)
}

func (gc *GameContext) MoveBudgetExhausted() bool {
	return gc.MaxMoves > 0 && gc.Moves >= gc.MaxMoves
}

func (gc *GameContext) clear() {
	gc.Moves = 0
	gc.StartTime = time.Time{}
	gc.LastMoveAt = time.Time{}
	gc.Outcome = ""
	gc.Error = nil
}
