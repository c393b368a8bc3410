package gui

import (
	"image/color"
	"strconv"
)

// parseHexColor converts a "#RRGGBB" string into a color. Malformed
// values come out mid-gray rather than failing.
func parseHexColor(hex string) color.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}
}
