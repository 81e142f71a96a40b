package field

import (
	"math"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// Guide is a marker the renderer draws at a tracked hand.
type Guide struct {
	Visible  bool           `json:"visible"`
	Position r3.Vec         `json:"position"`
	Scale    float64        `json:"scale"`
	Color    colorful.Color `json:"color"`
}

// Guide marker scales.
const (
	GuideScale      = 1.0
	PinchGuideScale = 1.5
	minGuideFactor  = 0.5
	maxGuideFactor  = 2.0
)

func (f *Field) updateGuides(s gesture.Sample, fr *frame) {
	primary := Guide{Visible: fr.hand, Position: fr.focus, Scale: GuideScale, Color: white}
	if fr.hand {
		if fr.gesture == gesture.Pinch {
			primary.Scale = PinchGuideScale
			primary.Color = red
		}
		if f.cfg.ReferenceHandSize > 0 && isFinite(s.HandSize) && s.HandSize > 0 {
			factor := s.HandSize / f.cfg.ReferenceHandSize
			primary.Scale *= math.Max(minGuideFactor, math.Min(maxGuideFactor, factor))
		}
	}

	var secondary Guide
	if sh := s.SecondHand; fr.hand && sh != nil && isFinite(sh.Position.X) && isFinite(sh.Position.Y) {
		secondary = Guide{
			Visible:  true,
			Position: f.mapFocus(sh.Position.X, sh.Position.Y),
			Scale:    GuideScale,
			Color:    guideColor(sh.Gesture),
		}
	}

	f.guides = [2]Guide{primary, secondary}
}

// Status is the field's scalar state.
type Status struct {
	Count     int          `json:"count"`
	Shape     string       `json:"shape"`
	Text      bool         `json:"text"`
	Gesture   gesture.Type `json:"gesture"`
	Exploding bool         `json:"exploding"`
	Phase     float64      `json:"phase"`
	Focus     r3.Vec       `json:"focus"`
	Frame     uint64       `json:"frame"`
	Guides    [2]Guide     `json:"guides"`
}

// Status returns the field's scalar state.
func (f *Field) Status() Status {
	return Status{
		Count:     f.n,
		Shape:     f.shapeName,
		Text:      f.isText,
		Gesture:   f.gesture,
		Exploding: f.exploding,
		Phase:     f.phase,
		Focus:     f.focus,
		Frame:     f.frame,
		Guides:    f.guides,
	}
}

// Snapshot is a copy of the field suitable for handing to another goroutine.
// Buffers are narrowed to float32, the precision renderers upload.
type Snapshot struct {
	Status
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
}

// Snapshot copies the current state and buffers.
func (f *Field) Snapshot() Snapshot {
	return Snapshot{
		Status:    f.Status(),
		Positions: narrow(f.pos),
		Colors:    narrow(f.col),
	}
}

func narrow(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
