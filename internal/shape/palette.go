package shape

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a fixed list of colors a shape's particles are painted from.
type Palette []colorful.Color

// Pick returns a uniformly chosen color. An empty palette yields white.
func (p Palette) Pick(rng Rand) colorful.Color {
	if len(p) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	if rng == nil {
		rng = DefaultRand
	}
	return p[rng.IntN(len(p))]
}

func mustPalette(hexes ...string) Palette {
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("shape: bad palette color %q: %v", h, err))
		}
		p[i] = c
	}
	return p
}

// DefaultPaletteName is used for shapes with no palette of their own,
// including free text.
const DefaultPaletteName = "default"

var palettes = map[string]Palette{
	"fire":    mustPalette("#ff0000", "#ff5500", "#ffaa00", "#ffff00"),
	"ice":     mustPalette("#00ffff", "#0088ff", "#ffffff", "#88ddff"),
	"rainbow": mustPalette("#ff0000", "#ff7f00", "#ffff00", "#00ff00", "#0000ff", "#4b0082", "#9400d3"),
	"nature":  mustPalette("#00ff00", "#88ff00", "#00aa00", "#228b22"),
	"love":    mustPalette("#ff0055", "#ff66aa", "#ffaacc", "#ff0000"),
	"cosmic":  mustPalette("#9400d3", "#4b0082", "#0000ff", "#ff00ff"),
	"gold":    mustPalette("#ffd700", "#ffcc00", "#ffaa00", "#ffffff"),
	"ocean":   mustPalette("#006994", "#40e0d0", "#00ced1", "#20b2aa"),
	"sunset":  mustPalette("#ff4500", "#ff6347", "#ff7f50", "#ffa07a"),
	"neon":    mustPalette("#00ff00", "#ff00ff", "#00ffff", "#ffff00"),

	DefaultPaletteName: mustPalette("#ff1111", "#ff8888"),
}

var shapeColors = map[Kind]string{
	Heart:       "love",
	DoubleHeart: "love",
	Star:        "gold",
	Galaxy:      "cosmic",
	Spiral:      "rainbow",
	Firework:    "fire",
	Butterfly:   "nature",
	Peace:       "rainbow",
	Wave:        "ocean",
	Tornado:     "ice",
	Smiley:      "gold",
	Infinity:    "cosmic",
	Vortex:      "neon",
	Trail:       "fire",
	Text:        "neon",
}

var gestureShapes = map[gesture.Type]Kind{
	gesture.Pinch:    Text,
	gesture.Fist:     Firework,
	gesture.Peace:    Peace,
	gesture.ThumbsUp: Heart,
	gesture.Point:    Star,
	gesture.Rock:     Galaxy,
	gesture.Three:    Spiral,
	gesture.Four:     Butterfly,
	gesture.Open:     Trail,
	gesture.Unknown:  Sphere,
}

// PaletteByName returns a named palette.
func PaletteByName(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// PaletteNames returns the registered palette names in sorted order.
func PaletteNames() []string {
	return slices.Sorted(maps.Keys(palettes))
}

// PaletteNameFor returns the palette name mapped to a shape name, or
// DefaultPaletteName when the name is unmapped or not a registered shape.
func PaletteNameFor(name string) string {
	k, ok := Parse(name)
	if !ok {
		return DefaultPaletteName
	}
	if p, ok := shapeColors[k]; ok {
		return p
	}
	return DefaultPaletteName
}

// PaletteFor returns the palette used to paint the named shape.
func PaletteFor(name string) Palette {
	return palettes[PaletteNameFor(name)]
}

// ForGesture returns the shape a gesture switches the field to.
func ForGesture(t gesture.Type) (Kind, bool) {
	k, ok := gestureShapes[t]
	return k, ok
}
