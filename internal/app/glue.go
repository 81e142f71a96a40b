package app

import (
	"github.com/ayusman/particlehands/internal/config"
	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/shape"
)

// Action is what the glue wants done to the field this frame.
type Action struct {
	// Shape is the shape or text to switch to, empty for no change.
	Shape   string
	Explode bool
}

// Glue turns the stabilized gesture stream into shape changes. A new pinch
// cycles through the configured texts and releasing it returns to the
// gesture's shape. Other gestures switch to their mapped shape once held for
// the debounce window.
type Glue struct {
	cfg config.Glue

	textIndex   int
	wasPinching bool
	candidate   gesture.Type
	held        int
	applied     gesture.Type
	prev        gesture.Type
}

// NewGlue returns glue with nothing applied yet.
func NewGlue(cfg config.Glue) *Glue {
	return &Glue{cfg: cfg}
}

// Observe folds in one frame's sample and returns the resulting action.
func (g *Glue) Observe(s gesture.Sample) Action {
	var act Action

	if g.cfg.ExplodeOnRelease && g.prev == gesture.Fist && s.Type == gesture.Open {
		act.Explode = true
	}
	g.prev = s.Type

	pinching := s.Type == gesture.Pinch
	switch {
	case pinching && !g.wasPinching:
		act.Shape = g.nextText()
		g.applied = gesture.Pinch

	case !pinching && g.wasPinching:
		act.Shape = shapeFor(s.Type)
		g.applied = s.Type
		g.candidate, g.held = s.Type, 0

	case !pinching:
		if s.Type == g.candidate {
			g.held++
		} else {
			g.candidate, g.held = s.Type, 1
		}
		if g.candidate != gesture.None && g.candidate != g.applied && g.held >= max(1, g.cfg.DebounceFrames) {
			act.Shape = shapeFor(g.candidate)
			g.applied = g.candidate
		}
	}
	g.wasPinching = pinching
	return act
}

// Hold marks the current gesture as applied so a manual shape change is not
// immediately replaced.
func (g *Glue) Hold() {
	g.applied = g.candidate
}

func (g *Glue) nextText() string {
	if len(g.cfg.Texts) == 0 {
		return shape.Text.String()
	}
	t := g.cfg.Texts[g.textIndex%len(g.cfg.Texts)]
	g.textIndex = (g.textIndex + 1) % len(g.cfg.Texts)
	return t
}

// shapeFor maps a gesture to its shape; no hand returns to the trail.
func shapeFor(t gesture.Type) string {
	if k, ok := shape.ForGesture(t); ok {
		return k.String()
	}
	return shape.Trail.String()
}
