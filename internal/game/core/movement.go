package core

// Rotate turns the board counter-clockwise by the given number of quarter
// turns. Negative counts rotate clockwise.
func Rotate(b Board, quarterTurns int) Board {
	n := ((quarterTurns % NumDirections) + NumDirections) % NumDirections
	for ; n > 0; n-- {
		b = rotateOnce(b)
	}
	return b
}

func rotateOnce(b Board) Board {
	var out Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[Size-1-c][r] = b[r][c]
		}
	}
	return out
}

// CompactLine slides the tiles of a line toward index 0, merging equal
// neighbours pairwise. A merged tile does not merge again in the same pass,
// so [2,2,2,2] becomes [4,4,0,0].
func CompactLine(line [Size]uint32) [Size]uint32 {
	var out [Size]uint32
	n := 0
	var pending uint32
	for _, v := range line {
		if v == 0 {
			continue
		}
		if pending == 0 {
			pending = v
			continue
		}
		if pending == v {
			out[n] = pending + v
			pending = 0
		} else {
			out[n] = pending
			pending = v
		}
		n++
	}
	if pending != 0 {
		out[n] = pending
	}
	return out
}

// CompactColumns compacts every column toward row 0.
func CompactColumns(b Board) Board {
	var out Board
	for c := 0; c < Size; c++ {
		var col [Size]uint32
		for r := 0; r < Size; r++ {
			col[r] = b[r][c]
		}
		col = CompactLine(col)
		for r := 0; r < Size; r++ {
			out[r][c] = col[r]
		}
	}
	return out
}

// Slide computes the board after moving in direction d without spawning.
// The board is rotated so d points up, compacted, then rotated back.
func Slide(b Board, d Direction) (Board, error) {
	if !d.Valid() {
		return b, WrapMoveError(int(d), ErrInvalidDirection)
	}
	turns := int(d)
	return Rotate(CompactColumns(Rotate(b, turns)), NumDirections-turns), nil
}

// CanSlide reports whether moving in d would change the board.
func CanSlide(b Board, d Direction) bool {
	next, err := Slide(b, d)
	return err == nil && next != b
}
