package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNoEmptyCell      = errors.New("no empty cell")
	ErrInvalidTile      = errors.New("tile must be zero or a power of two")
	ErrInvalidShape     = errors.New("board must be 4x4")
	ErrGameOver         = errors.New("game is over")
)

// WrapMoveError annotates err with the move code that caused it.
func WrapMoveError(code int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("move %d: %w", code, err)
}
