package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileColors(t *testing.T) {
	for v := uint32(2); v <= 2048; v *= 2 {
		c, ok := TileColors[v]
		assert.True(t, ok, "tile %d should have a colour", v)
		assert.NotEmpty(t, c)
	}
	assert.Equal(t, ColorReset, TileColors[0])
}

func TestTileColor(t *testing.T) {
	assert.Equal(t, ColorGreen, TileColor(2))
	assert.Equal(t, ColorBoldRed, TileColor(2048))
	assert.Equal(t, ColorGray, TileColor(4096))
}
