package core

// Size is the side length of the square board.
const Size = 4

// WinningTile is the tile value that wins the game.
const WinningTile = 2048

// Board is the 4x4 grid, indexed [row][col]. A cell holds 0 when empty,
// otherwise a power of two no smaller than 2. Board is a value type; copying
// it copies the grid.
type Board [Size][Size]uint32

// NewBoard builds a board from row slices, validating shape and tile values.
func NewBoard(rows [][]uint32) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, ErrInvalidShape
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, ErrInvalidShape
		}
		for c, v := range row {
			if !IsValidTile(v) {
				return Board{}, ErrInvalidTile
			}
			b[r][c] = v
		}
	}
	return b, nil
}

// IsValidTile reports whether v may appear on a board.
func IsValidTile(v uint32) bool {
	if v == 0 {
		return true
	}
	return v >= 2 && v&(v-1) == 0
}

// Validate checks every cell against IsValidTile.
func (b Board) Validate() error {
	for r := range b {
		for c := range b[r] {
			if !IsValidTile(b[r][c]) {
				return ErrInvalidTile
			}
		}
	}
	return nil
}

func (b Board) At(c Cell) uint32 { return b[c.Row][c.Col] }

// EmptyCells returns the empty cells in row-major order.
func (b Board) EmptyCells() []Cell {
	var cells []Cell
	for r := range b {
		for c := range b[r] {
			if b[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasEmpty reports whether any cell is zero.
func (b Board) HasEmpty() bool {
	for r := range b {
		for c := range b[r] {
			if b[r][c] == 0 {
				return true
			}
		}
	}
	return false
}

func (b Board) Full() bool { return !b.HasEmpty() }

// Sum is the total of all cell values; it doubles as the game score.
func (b Board) Sum() uint64 {
	var total uint64
	for r := range b {
		for c := range b[r] {
			total += uint64(b[r][c])
		}
	}
	return total
}

func (b Board) MaxTile() uint32 {
	var top uint32
	for r := range b {
		for c := range b[r] {
			if b[r][c] > top {
				top = b[r][c]
			}
		}
	}
	return top
}

// Contains reports whether any cell equals v exactly.
func (b Board) Contains(v uint32) bool {
	for r := range b {
		for c := range b[r] {
			if b[r][c] == v {
				return true
			}
		}
	}
	return false
}

// TileCount is the number of non-empty cells.
func (b Board) TileCount() int {
	return Size*Size - len(b.EmptyCells())
}
