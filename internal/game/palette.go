package game

import (
	"fmt"
	"strings"
)

// Color is one of the six playable peg colors. The zero value is not a
// palette color, so an unset slot never compares equal to a real one.
type Color int

const (
	Red Color = iota + 1
	Green
	Blue
	Orange
	Magenta
	Cyan
)

const (
	PaletteSize = 6
	CodeLength  = 4
)

var palette = [PaletteSize]Color{Red, Green, Blue, Orange, Magenta, Cyan}

var colorNames = map[Color]string{
	Red:     "Red",
	Green:   "Green",
	Blue:    "Blue",
	Orange:  "Orange",
	Magenta: "Magenta",
	Cyan:    "Cyan",
}

// one-letter codes accepted by ParseColor
var colorShort = map[string]Color{
	"r": Red,
	"g": Green,
	"b": Blue,
	"o": Orange,
	"m": Magenta,
	"c": Cyan,
}

// AllColors returns the palette in its fixed display order.
func AllColors() [PaletteSize]Color {
	return palette
}

// NameOf returns the display name of c, or ErrUnknownColor if c is not part
// of the palette.
func NameOf(c Color) (string, error) {
	name, ok := colorNames[c]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return name, nil
}

func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "unknown"
}

// ID is the lowercase wire form of the color ("red", "green", ...).
func (c Color) ID() string {
	return strings.ToLower(c.String())
}

// ParseColor accepts a color name or its one-letter code, case-insensitive.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colorShort[s]; ok {
		return c, nil
	}
	for _, c := range palette {
		if c.ID() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// ParseColors parses every entry of names, stopping at the first bad one.
func ParseColors(names []string) ([]Color, error) {
	out := make([]Color, 0, len(names))
	for _, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return []byte(c.ID()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
