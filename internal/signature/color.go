package signature

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultBrandColor is the first palette entry.
const DefaultBrandColor = "#FDCD1F"

// Swatch is one selectable brand colour.
type Swatch struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// DefaultPalette lists the corporate colours offered in the editor.
func DefaultPalette() []Swatch {
	return []Swatch{
		{Name: "De Sarı", Code: "#FDCD1F"},
		{Name: "Turuncu", Code: "#C46713"},
		{Name: "Bordo", Code: "#A41E34"},
		{Name: "Koyu Gri", Code: "#333333"},
	}
}

// ParseHex parses "#RRGGBB", "RRGGBB" or the short "#RGB" form into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xFF}, nil
}

// Hex formats c as upper-case "#RRGGBB", ignoring alpha.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
