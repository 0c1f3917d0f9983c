package game

import (
	"strings"

	"github.com/mitchelldurbincs/go2048/internal/common"
	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

const (
	cellWidth  = 5
	rowDivider = "   -    -    -    -  "
)

// Render returns the board as text, with ANSI colours when color is set.
func (e *Engine) Render(color bool) string {
	return RenderBoard(e.board, color)
}

// RenderBoard draws a board one row per line between dashed dividers. Each
// cell is five columns wide with the value roughly centred.
func RenderBoard(b core.Board, color bool) string {
	var sb strings.Builder
	sb.Grow((core.Size*cellWidth*12 + len(rowDivider) + 4) * (core.Size + 1))

	for r := 0; r < core.Size; r++ {
		sb.WriteString(rowDivider)
		sb.WriteString("\n|")
		for c := 0; c < core.Size; c++ {
			writeCell(&sb, b[r][c], color)
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(rowDivider)
	sb.WriteString("\n")

	return sb.String()
}

func writeCell(sb *strings.Builder, v uint32, color bool) {
	text := core.TileToStringFixedWidth(v, 1)
	if v == 0 {
		text = "0"
	}

	var before, after string
	switch len(text) {
	case 1:
		before, after = "  ", "  "
	case 2:
		before, after = " ", "  "
	case 3:
		before, after = " ", " "
	default:
		before, after = "", " "
	}

	sb.WriteString(before)
	if color {
		sb.WriteString(common.TileColor(v))
		sb.WriteString(text)
		sb.WriteString(common.ColorReset)
	} else {
		sb.WriteString(text)
	}
	sb.WriteString(after)
}
