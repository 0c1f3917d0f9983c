package core

import "fmt"

// TileToStringFixedWidth renders a tile value right-aligned in width columns.
// Empty cells render as blanks. Values wider than width are not truncated.
func TileToStringFixedWidth(v uint32, width int) string {
	if v == 0 {
		return fmt.Sprintf("%*s", width, "")
	}
	return fmt.Sprintf("%*d", width, v)
}
