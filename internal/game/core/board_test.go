package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]uint32
		wantErr error
	}{
		{"valid", [][]uint32{{2, 0, 0, 0}, {0, 4, 0, 0}, {0, 0, 2048, 0}, {0, 0, 0, 0}}, nil},
		{"too few rows", [][]uint32{{0, 0, 0, 0}}, ErrInvalidShape},
		{"short row", [][]uint32{{0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, ErrInvalidShape},
		{"one is not a tile", [][]uint32{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, ErrInvalidTile},
		{"not a power of two", [][]uint32{{6, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, ErrInvalidTile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(tt.rows)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			for r, row := range tt.rows {
				assert.Equal(t, row, b[r][:])
			}
		})
	}
}

func TestBoard_Queries(t *testing.T) {
	b := Board{
		{2, 0, 0, 4},
		{0, 8, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 16},
	}

	assert.Equal(t, uint64(30), b.Sum())
	assert.Equal(t, uint32(16), b.MaxTile())
	assert.Equal(t, 4, b.TileCount())
	assert.Len(t, b.EmptyCells(), 12)
	assert.True(t, b.HasEmpty())
	assert.False(t, b.Full())
	assert.True(t, b.Contains(8))
	assert.False(t, b.Contains(2048))
	assert.Equal(t, uint32(8), b.At(NewCell(1, 1)))
	assert.NoError(t, b.Validate())

	b[2][2] = 3
	assert.ErrorIs(t, b.Validate(), ErrInvalidTile)
}

func TestBoard_EmptyCellsOrder(t *testing.T) {
	var b Board
	for i := 0; i < Size*Size; i++ {
		b[i/Size][i%Size] = 2
	}
	b[3][1] = 0
	b[0][2] = 0
	assert.Equal(t, []Cell{{Row: 0, Col: 2}, {Row: 3, Col: 1}}, b.EmptyCells())
}

func TestDirection(t *testing.T) {
	for code, name := range []string{"up", "right", "down", "left"} {
		d, err := ParseDirection(code)
		require.NoError(t, err)
		assert.Equal(t, name, d.String())

		byName, ok := DirectionFromName(" " + name + " ")
		require.True(t, ok)
		assert.Equal(t, d, byName)
	}

	_, err := ParseDirection(4)
	require.Error(t, err)
	assert.Equal(t, "move 4: invalid direction", err.Error())

	_, ok := DirectionFromName("sideways")
	assert.False(t, ok)

	assert.Equal(t, "direction(9)", Direction(9).String())
}

func TestCell(t *testing.T) {
	c := NewCell(1, 2)
	assert.True(t, c.IsValid())
	assert.False(t, NewCell(4, 0).IsValid())
	assert.Equal(t, "(1,2)", c.String())
}

func TestWrapMoveError(t *testing.T) {
	assert.Nil(t, WrapMoveError(1, nil))
	err := WrapMoveError(2, ErrNoEmptyCell)
	assert.True(t, errors.Is(err, ErrNoEmptyCell))
	assert.Equal(t, "move 2: no empty cell", err.Error())
}

func TestTileToStringFixedWidth(t *testing.T) {
	assert.Equal(t, "    ", TileToStringFixedWidth(0, 4))
	assert.Equal(t, "   2", TileToStringFixedWidth(2, 4))
	assert.Equal(t, "2048", TileToStringFixedWidth(2048, 4))
}
