package core

import (
	"fmt"
	"strings"
)

// Cell addresses a single square on the board by row and column
type Cell struct {
	Row, Col int
}

// NewCell creates a new cell with the given row and column
func NewCell(row, col int) Cell {
	return Cell{Row: row, Col: col}
}

// IsValid checks if the cell lies on the board
func (c Cell) IsValid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is a move direction. Its value is also the number of
// counter-clockwise quarter turns that bring the direction to Up.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// NumDirections is the number of valid move directions
const NumDirections = 4

// AllDirections lists the directions in code order
var AllDirections = [NumDirections]Direction{Up, Right, Down, Left}

var directionNames = [NumDirections]string{"up", "right", "down", "left"}

// Valid reports whether d is one of the four move codes
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection converts a numeric move code into a Direction
func ParseDirection(code int) (Direction, error) {
	d := Direction(code)
	if !d.Valid() {
		return d, WrapMoveError(code, ErrInvalidDirection)
	}
	return d, nil
}

// DirectionFromName accepts "up", "right", "down" and "left" in any case
func DirectionFromName(name string) (Direction, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), true
		}
	}
	return 0, false
}
