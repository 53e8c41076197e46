package core

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is an RGBA card color.
type Color struct {
	R, G, B, A uint8
}

// DefaultCardColor is used when a card has no decodable color.
var DefaultCardColor = Color{R: 0, G: 122, B: 255, A: 255}

// EncodeColor serializes c as "#rrggbbaa".
func EncodeColor(c Color) []byte {
	return []byte(c.Hex())
}

// DecodeColor is the inverse of EncodeColor. It reports false for any
// payload it cannot read instead of returning an error.
func DecodeColor(data []byte) (Color, bool) {
	if len(data) == 0 {
		return Color{}, false
	}
	return ParseHexColor(string(data))
}

// ParseHexColor accepts "#rrggbb" or "#rrggbbaa". A missing alpha is opaque.
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, false
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, true
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
