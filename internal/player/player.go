// Package player provides the move sources that drive a game session: a
// human at the terminal and deterministic scripted bots.
package player

import (
	"context"
	"errors"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

var (
	ErrUnknownStrategy = errors.New("unknown player strategy")
	ErrNoMoveAvailable = errors.New("no move available")
)

// View is what a move source sees before choosing a move.
type View struct {
	Board core.Board
	// Moves is the number of accepted moves so far
	Moves int
	// MaxMoves is the move budget; zero or less means unlimited
	MaxMoves int
	// Available lists the directions not yet rejected on the current board,
	// in code order. It is reset to all four after every accepted move.
	Available []core.Direction
}

// MoveRequest is a move source's answer. Code is passed to the engine as-is,
// so a source may return an out-of-range code and have it rejected.
type MoveRequest struct {
	Code int
	Quit bool
}

// Move wraps a direction in a MoveRequest.
func Move(d core.Direction) MoveRequest { return MoveRequest{Code: int(d)} }

// Quit asks the session to stop without saving.
func Quit() MoveRequest { return MoveRequest{Quit: true} }

// MoveSource chooses the next move for a game.
type MoveSource interface {
	NextMove(ctx context.Context, v View) (MoveRequest, error)
}

// MoveSourceFunc adapts a function to MoveSource.
type MoveSourceFunc func(ctx context.Context, v View) (MoveRequest, error)

func (f MoveSourceFunc) NextMove(ctx context.Context, v View) (MoveRequest, error) {
	return f(ctx, v)
}
