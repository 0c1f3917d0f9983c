package game

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/game/events"
)

// Engine owns one 4x4 board and applies moves to it. It is not safe for
// concurrent use; callers that share an engine must serialise access.
type Engine struct {
	board     core.Board
	rng       *rand.Rand
	logger    zerolog.Logger
	publisher events.Publisher
	gameID    string
	player    string
}

// Move slides the board in direction d. It returns false and leaves the board
// untouched when nothing would change. Otherwise it commits the new board,
// spawns one tile and returns true.
func (e *Engine) Move(d core.Direction) (bool, error) {
	next, err := core.Slide(e.board, d)
	if err != nil {
		e.logger.Warn().Int("code", int(d)).Msg("Invalid move direction")
		e.publish(events.NewMoveRejectedEvent(e.gameID, int(d), core.ErrInvalidDirection.Error()))
		return false, err
	}

	if next == e.board {
		e.logger.Debug().Str("direction", d.String()).Msg("Move left the board unchanged")
		e.publish(events.NewMoveRejectedEvent(e.gameID, int(d), "board unchanged"))
		return false, nil
	}

	e.board = next
	e.publish(events.NewMoveAppliedEvent(e.gameID, d, next))

	// A changing move always frees at least one cell, so this cannot fail.
	if _, _, err := e.SpawnTile(); err != nil {
		return true, core.WrapMoveError(int(d), err)
	}

	e.logger.Debug().
		Str("direction", d.String()).
		Uint64("score", e.board.Sum()).
		Msg("Move applied")
	return true, nil
}

// SpawnTile places a 2 or a 4, chosen with equal probability, on an empty
// cell chosen uniformly at random.
func (e *Engine) SpawnTile() (core.Cell, uint32, error) {
	empty := e.board.EmptyCells()
	if len(empty) == 0 {
		return core.Cell{}, 0, core.ErrNoEmptyCell
	}

	cell := empty[e.rng.Intn(len(empty))]
	value := SpawnValues[e.rng.Intn(len(SpawnValues))]
	e.board[cell.Row][cell.Col] = value

	e.logger.Debug().
		Stringer("cell", cell).
		Uint32("value", value).
		Msg("Tile spawned")
	e.publish(events.NewTileSpawnedEvent(e.gameID, cell, value, e.board))

	return cell, value, nil
}

// IsWon reports whether some cell holds exactly 2048.
func (e *Engine) IsWon() bool {
	return e.board.Contains(core.WinningTile)
}

// IsStuck reports whether the board is full and no direction would change it.
// The board is never modified.
func (e *Engine) IsStuck() bool {
	if e.board.HasEmpty() {
		return false
	}
	for _, d := range core.AllDirections {
		if core.CanSlide(e.board, d) {
			return false
		}
	}
	return true
}

// IsOver reports whether the game has reached a terminal board.
func (e *Engine) IsOver() bool {
	return e.IsWon() || e.IsStuck()
}

// Reset clears the board and deals a fresh starting tile.
func (e *Engine) Reset() {
	e.board = core.Board{}
	e.deal()
}

func (e *Engine) deal() {
	for i := 0; i < InitialTiles; i++ {
		// The board is empty here, so spawning cannot fail.
		_, _, _ = e.SpawnTile()
	}
	e.publish(events.NewGameStartedEvent(e.gameID, e.player, e.board))
}

// Board returns a copy of the current grid.
func (e *Engine) Board() core.Board { return e.board }

// Score is the sum of all cells.
func (e *Engine) Score() uint64 { return e.board.Sum() }

func (e *Engine) MaxTile() uint32 { return e.board.MaxTile() }

func (e *Engine) GameID() string { return e.gameID }

func (e *Engine) publish(ev events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}
