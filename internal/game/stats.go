package game

import "github.com/mitchelldurbincs/go2048/internal/game/core"

// Stats summarises a board for display and reporting.
type Stats struct {
	Score      uint64           `json:"score"`
	MaxTile    uint32           `json:"max_tile"`
	EmptyCells int              `json:"empty_cells"`
	TileCounts map[uint32]int   `json:"tile_counts"`
	LegalMoves []core.Direction `json:"legal_moves"`
}

// Stats computes the current board summary.
func (e *Engine) Stats() Stats {
	counts := make(map[uint32]int)
	for r := range e.board {
		for c := range e.board[r] {
			if v := e.board[r][c]; v != 0 {
				counts[v]++
			}
		}
	}

	legal := make([]core.Direction, 0, core.NumDirections)
	for _, d := range core.AllDirections {
		if core.CanSlide(e.board, d) {
			legal = append(legal, d)
		}
	}

	return Stats{
		Score:      e.board.Sum(),
		MaxTile:    e.board.MaxTile(),
		EmptyCells: len(e.board.EmptyCells()),
		TileCounts: counts,
		LegalMoves: legal,
	}
}
