// Package gesture classifies hand landmarks into discrete gestures and turns
// per-frame observations into a stabilized gesture sample.
package gesture

import "fmt"

// Type is a discrete gesture category. The set is closed: the classifier
// never produces a value outside the constants below.
type Type uint8

const (
	None Type = iota
	Pinch
	Fist
	ThumbsUp
	Peace
	Point
	Rock
	Three
	Four
	Open
	Unknown

	numTypes
)

var typeNames = [numTypes]string{
	None:     "none",
	Pinch:    "pinch",
	Fist:     "fist",
	ThumbsUp: "thumbs_up",
	Peace:    "peace",
	Point:    "point",
	Rock:     "rock",
	Three:    "three",
	Four:     "four",
	Open:     "open",
	Unknown:  "unknown",
}

// Types returns every gesture category in declaration order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Valid reports whether t is one of the declared categories.
func (t Type) Valid() bool {
	return t < numTypes
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeNames[t]
}

// ParseType returns the gesture named s.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid gesture %d", uint8(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
