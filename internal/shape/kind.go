// Package shape generates target point clouds for the particle field: one
// random sampler per named shape, a text rasterizer, and the static tables
// that pair gestures with shapes and shapes with palettes.
package shape

import (
	"fmt"
	"strings"
)

// Kind names a registered shape. The set is closed; names that are not a
// Kind are treated as text to rasterize.
type Kind uint8

const (
	Sphere Kind = iota
	Trail
	Heart
	DoubleHeart
	Star
	Galaxy
	Saturn
	Moon
	Flower
	Tree
	Butterfly
	Firework
	Spiral
	DNA
	Wave
	Tornado
	Rain
	Snow
	Smiley
	Infinity
	Peace
	Vortex
	Cube
	Pyramid
	Text

	numKinds
)

var kindNames = [numKinds]string{
	Sphere:      "sphere",
	Trail:       "trail",
	Heart:       "heart",
	DoubleHeart: "doubleheart",
	Star:        "star",
	Galaxy:      "galaxy",
	Saturn:      "saturn",
	Moon:        "moon",
	Flower:      "flower",
	Tree:        "tree",
	Butterfly:   "butterfly",
	Firework:    "firework",
	Spiral:      "spiral",
	DNA:         "dna",
	Wave:        "wave",
	Tornado:     "tornado",
	Rain:        "rain",
	Snow:        "snow",
	Smiley:      "smiley",
	Infinity:    "infinity",
	Peace:       "peace",
	Vortex:      "vortex",
	Cube:        "cube",
	Pyramid:     "pyramid",
	Text:        "text",
}

// Kinds returns every registered shape in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Parse looks up a shape by name, ignoring case.
func Parse(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return Sphere, false
}

// Valid reports whether k is a registered shape.
func (k Kind) Valid() bool {
	return k < numKinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Parametric reports whether k is drawn from a sampler rather than rasterized.
func (k Kind) Parametric() bool {
	return k.Valid() && k != Text
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid shape %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("unknown shape %q", string(b))
	}
	*k = parsed
	return nil
}
