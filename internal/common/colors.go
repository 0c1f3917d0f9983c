package common

// ANSI escape sequences used by the terminal renderer
const (
	ColorReset   = "\033[0m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorPurple  = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorWhite   = "\033[37m"
	ColorGray    = "\033[90m"
	ColorBoldRed = "\033[1;31m"
)

// TileColors maps tile values to their foreground colour
var TileColors = map[uint32]string{
	0:    ColorReset,
	2:    ColorGreen,
	4:    ColorYellow,
	8:    ColorBlue,
	16:   ColorPurple,
	32:   ColorCyan,
	64:   ColorWhite,
	128:  ColorGray,
	256:  ColorGray,
	512:  ColorGray,
	1024: ColorGray,
	2048: ColorBoldRed,
}

// TileColor returns the colour for a tile value, falling back to gray for
// values past the table
func TileColor(v uint32) string {
	if c, ok := TileColors[v]; ok {
		return c
	}
	return ColorGray
}
