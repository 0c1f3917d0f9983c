package testutil

import "github.com/mitchelldurbincs/go2048/internal/game/core"

// StuckBoard is full and has no equal neighbours in any direction
func StuckBoard() core.Board {
	return core.Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
}

// NearlyStuckBoard is full but the top-left pair can still merge
func NearlyStuckBoard() core.Board {
	return core.Board{
		{2, 2, 4, 8},
		{4, 8, 16, 32},
		{8, 16, 32, 64},
		{16, 32, 64, 128},
	}
}

// WonBoard holds a 2048 tile and plenty of room
func WonBoard() core.Board {
	return core.Board{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 2, 0},
		{0, 0, 0, 0},
	}
}

// AlmostWonBoard merges into 2048 on a Left or Right move
func AlmostWonBoard() core.Board {
	return core.Board{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
}

// CountDiff returns the number of cells that differ between a and b
func CountDiff(a, b core.Board) int {
	n := 0
	for r := range a {
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				n++
			}
		}
	}
	return n
}
