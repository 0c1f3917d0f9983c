package rules

import "github.com/mitchelldurbincs/go2048/internal/game/core"

// LegalMoves returns the directions that would change the board, in code order
func LegalMoves(b core.Board) []core.Direction {
	moves := make([]core.Direction, 0, core.NumDirections)
	for _, d := range core.AllDirections {
		if core.CanSlide(b, d) {
			moves = append(moves, d)
		}
	}
	return moves
}

// ActionMask returns a boolean mask indexed by direction code.
// true = the move changes the board.
func ActionMask(b core.Board) [core.NumDirections]bool {
	var mask [core.NumDirections]bool
	for _, d := range core.AllDirections {
		mask[d] = core.CanSlide(b, d)
	}
	return mask
}

// LegalMoveCodes is LegalMoves as integer direction codes
func LegalMoveCodes(b core.Board) []int {
	moves := LegalMoves(b)
	codes := make([]int, len(moves))
	for i, d := range moves {
		codes[i] = int(d)
	}
	return codes
}
