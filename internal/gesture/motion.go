package gesture

import (
	"github.com/ayusman/particlehands/internal/detector"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultAlpha is the exponential smoothing factor for the hand center.
const DefaultAlpha = 0.25

// Config holds the motion estimator tunables.
type Config struct {
	// Alpha is the smoothing factor in (0,1). Higher follows the raw center faster.
	Alpha float64 `yaml:"alpha"`

	// HistorySize is the length of the majority-vote window.
	HistorySize int `yaml:"history"`
}

// DefaultConfig returns the reference tunables.
func DefaultConfig() Config {
	return Config{
		Alpha:       DefaultAlpha,
		HistorySize: DefaultHistorySize,
	}
}

// MotionState is everything the estimator carries from one frame to the next.
// The zero value is a fresh state.
type MotionState struct {
	// Smoothed is the smoothed primary hand center of the last frame with a hand.
	Smoothed r2.Vec
	// Primed is false until the first hand has been seen.
	Primed bool
	// History holds recent raw classifications of the primary hand.
	History History
}

// NewMotionState returns a fresh state whose history window matches cfg.
func NewMotionState(cfg Config) MotionState {
	return MotionState{History: NewHistory(cfg.HistorySize)}
}

// SecondHand is the unsmoothed, unfiltered view of a second tracked hand.
type SecondHand struct {
	Position r2.Vec `json:"position"`
	Gesture  Type   `json:"gesture"`
}

// Sample is the stabilized interaction signal for one frame.
type Sample struct {
	// Type is the majority-filtered gesture of the primary hand.
	Type Type `json:"type"`
	// Raw is this frame's unfiltered classification of the primary hand.
	Raw Type `json:"raw"`
	// Position is the smoothed primary hand center in normalized frame
	// coordinates, nil when no hand is tracked.
	Position *r2.Vec `json:"position"`
	// Velocity is the per-frame change of the smoothed center.
	Velocity    r2.Vec      `json:"velocity"`
	HandCount   int         `json:"hand_count"`
	SecondHand  *SecondHand `json:"second_hand,omitempty"`
	HandSize    float64     `json:"hand_size"`
	HandAngle   float64     `json:"hand_angle"`
	OpenFingers int         `json:"open_fingers"`
}

// NoneSample is the sample for a frame without hands.
func NoneSample() Sample {
	return Sample{Type: None, Raw: None}
}

// HandPresent reports whether the sample carries a tracked primary hand.
func (s Sample) HandPresent() bool {
	return s.Type != None && s.Position != nil
}

// Estimate folds one observation into state and returns the new state and
// the frame's sample. Only the first hand is smoothed and filtered. A frame
// without hands returns NoneSample and leaves state untouched.
func Estimate(state MotionState, hands []detector.HandLandmarks, cfg Config) (MotionState, Sample) {
	if len(hands) == 0 {
		return state, NoneSample()
	}

	alpha := cfg.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}

	primary := &hands[0]
	raw := primary.Center()

	smoothed := raw
	var velocity r2.Vec
	if state.Primed {
		smoothed = r2.Add(state.Smoothed, r2.Scale(alpha, r2.Sub(raw, state.Smoothed)))
		velocity = r2.Sub(smoothed, state.Smoothed)
	}

	label := Classify(primary)
	if state.History.size == 0 {
		state.History = NewHistory(cfg.HistorySize)
	}
	state.History = state.History.Push(label)
	state.Smoothed = smoothed
	state.Primed = true

	position := smoothed
	sample := Sample{
		Type:        state.History.Majority(),
		Raw:         label,
		Position:    &position,
		Velocity:    velocity,
		HandCount:   min(len(hands), 2),
		HandSize:    primary.Size(),
		HandAngle:   primary.Angle(),
		OpenFingers: OpenFingerCount(primary),
	}

	if len(hands) > 1 {
		second := &hands[1]
		sample.SecondHand = &SecondHand{
			Position: second.Center(),
			Gesture:  Classify(second),
		}
	}

	return state, sample
}
