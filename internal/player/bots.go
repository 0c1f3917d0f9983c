package player

import (
	"context"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

// FirstAvailable always plays the first direction still available. Because
// rejected directions drop out of the view, it sweeps Up, Right, Down, Left
// until one changes the board.
type FirstAvailable struct{}

func (FirstAvailable) NextMove(ctx context.Context, v View) (MoveRequest, error) {
	if err := ctx.Err(); err != nil {
		return MoveRequest{}, err
	}
	if len(v.Available) == 0 {
		return MoveRequest{}, ErrNoMoveAvailable
	}
	return Move(v.Available[0]), nil
}

// Cycle rotates through Up, Right, Down, Left, one step per call, skipping
// directions that are no longer available.
type Cycle struct {
	next core.Direction
}

func (c *Cycle) NextMove(ctx context.Context, v View) (MoveRequest, error) {
	if err := ctx.Err(); err != nil {
		return MoveRequest{}, err
	}
	for i := 0; i < core.NumDirections; i++ {
		d := (c.next + core.Direction(i)) % core.NumDirections
		if contains(v.Available, d) {
			c.next = (d + 1) % core.NumDirections
			return Move(d), nil
		}
	}
	return MoveRequest{}, ErrNoMoveAvailable
}

// Scripted replays a fixed list of requests, then quits.
type Scripted struct {
	Requests []MoveRequest
	pos      int
}

func (s *Scripted) NextMove(ctx context.Context, _ View) (MoveRequest, error) {
	if err := ctx.Err(); err != nil {
		return MoveRequest{}, err
	}
	if s.pos >= len(s.Requests) {
		return Quit(), nil
	}
	r := s.Requests[s.pos]
	s.pos++
	return r, nil
}

func contains(ds []core.Direction, d core.Direction) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}
