package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/particlehands/internal/detector"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestMajority(t *testing.T) {
	tests := []struct {
		name   string
		labels []Type
		want   Type
	}{
		{name: "empty", labels: nil, want: None},
		{name: "single", labels: []Type{Rock}, want: Rock},
		{name: "later majority wins", labels: []Type{Pinch, Pinch, Open, Open, Open}, want: Open},
		{name: "tie goes to first to reach count", labels: []Type{Fist, Fist, Peace, Peace, Point}, want: Fist},
		{name: "interleaved tie", labels: []Type{Peace, Fist, Fist, Peace, Point}, want: Fist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Majority(tt.labels))
		})
	}
}

func TestHistory_FixedCapacity(t *testing.T) {
	h := NewHistory(5)
	for _, g := range []Type{Fist, Fist, Fist, Open, Open, Open, Open} {
		h = h.Push(g)
	}

	assert.Equal(t, 5, h.Len())
	assert.Equal(t, []Type{Fist, Open, Open, Open, Open}, h.Labels())
	assert.Equal(t, Open, h.Majority())

	t.Run("push does not mutate the receiver", func(t *testing.T) {
		before := h.Labels()
		_ = h.Push(Rock)
		assert.Equal(t, before, h.Labels())
	})

	t.Run("size is clamped", func(t *testing.T) {
		assert.Equal(t, 1, NewHistory(0).size)
		assert.Equal(t, MaxHistory, NewHistory(1000).size)
	})
}

func TestEstimate_NoHands(t *testing.T) {
	state := NewMotionState(DefaultConfig())
	state.Primed = true
	state.Smoothed = r2.Vec{X: 0.3, Y: 0.4}

	next, sample := Estimate(state, nil, DefaultConfig())

	assert.Equal(t, NoneSample(), sample)
	assert.Nil(t, sample.Position)
	assert.False(t, sample.HandPresent())
	assert.Equal(t, state, next, "absent hands must not disturb the smoothing state")
}

func TestEstimate_FirstSample(t *testing.T) {
	hand := detector.OpenPalmLandmarks()

	state, sample := Estimate(NewMotionState(DefaultConfig()), []detector.HandLandmarks{hand}, DefaultConfig())

	require.NotNil(t, sample.Position)
	assert.Equal(t, hand.Center(), *sample.Position, "first sample is the raw center")
	assert.Equal(t, r2.Vec{}, sample.Velocity)
	assert.True(t, state.Primed)
	assert.Equal(t, Open, sample.Type)
	assert.Equal(t, 1, sample.HandCount)
	assert.Equal(t, 5, sample.OpenFingers)
	assert.Nil(t, sample.SecondHand)
}

func TestEstimate_SmoothingAndVelocity(t *testing.T) {
	cfg := Config{Alpha: 0.25, HistorySize: 5}
	start := detector.FistLandmarks()
	moved := start.Translate(0.2, 0)

	state, _ := Estimate(NewMotionState(cfg), []detector.HandLandmarks{start}, cfg)
	state, sample := Estimate(state, []detector.HandLandmarks{moved}, cfg)

	wantX := start.Center().X + 0.25*0.2
	require.NotNil(t, sample.Position)
	assert.InDelta(t, wantX, sample.Position.X, 1e-12)
	assert.InDelta(t, 0.25*0.2, sample.Velocity.X, 1e-12)
	assert.InDelta(t, 0, sample.Velocity.Y, 1e-12)
	assert.InDelta(t, wantX, state.Smoothed.X, 1e-12)
}

func TestEstimate_ConvergesWhenStill(t *testing.T) {
	cfg := Config{Alpha: 0.25, HistorySize: 5}
	state := NewMotionState(cfg)
	state.Primed = true
	state.Smoothed = r2.Vec{X: 0.9, Y: 0.1}

	hand := detector.PointLandmarks()
	raw := hand.Center()

	var sample Sample
	for i := 0; i < 40; i++ {
		state, sample = Estimate(state, []detector.HandLandmarks{hand}, cfg)
	}

	require.NotNil(t, sample.Position)
	assert.Less(t, math.Abs(sample.Position.X-raw.X), 1e-4)
	assert.Less(t, math.Abs(sample.Position.Y-raw.Y), 1e-4)
}

func TestEstimate_ConvergesWithinTenFramesFromRaw(t *testing.T) {
	cfg := DefaultConfig()
	hand := detector.PeaceLandmarks()
	raw := hand.Center()

	state := NewMotionState(cfg)
	var sample Sample
	for i := 0; i < 10; i++ {
		state, sample = Estimate(state, []detector.HandLandmarks{hand}, cfg)
	}
	require.NotNil(t, sample.Position)
	assert.InDelta(t, raw.X, sample.Position.X, 1e-4)
	assert.InDelta(t, raw.Y, sample.Position.Y, 1e-4)
	assert.InDelta(t, 0, r2.Norm(sample.Velocity), 1e-12)
}

func TestEstimate_StabilityFilter(t *testing.T) {
	cfg := DefaultConfig()
	state := NewMotionState(cfg)

	frames := []detector.HandLandmarks{
		detector.PinchLandmarks(),
		detector.PinchLandmarks(),
		detector.OpenPalmLandmarks(),
		detector.OpenPalmLandmarks(),
	}
	var sample Sample
	for _, h := range frames {
		state, sample = Estimate(state, []detector.HandLandmarks{h}, cfg)
	}
	assert.Equal(t, Pinch, sample.Type, "tie keeps the label that reached two first")
	assert.Equal(t, Open, sample.Raw)

	state, sample = Estimate(state, []detector.HandLandmarks{detector.OpenPalmLandmarks()}, cfg)
	assert.Equal(t, Open, sample.Type)

	want := []Type{Pinch, Pinch, Open, Open, Open}
	if diff := cmp.Diff(want, state.History.Labels()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimate_SecondHandIsRaw(t *testing.T) {
	cfg := DefaultConfig()
	state := NewMotionState(cfg)
	primary := detector.OpenPalmLandmarks()
	second := detector.RockLandmarks().Translate(-0.3, 0)

	state, _ = Estimate(state, []detector.HandLandmarks{primary, detector.FistLandmarks()}, cfg)
	_, sample := Estimate(state, []detector.HandLandmarks{primary, second}, cfg)

	require.NotNil(t, sample.SecondHand)
	want := &SecondHand{Position: second.Center(), Gesture: Rock}
	if diff := cmp.Diff(want, sample.SecondHand); diff != "" {
		t.Errorf("second hand mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, sample.HandCount)
}

func TestEstimate_ZeroStateIsUsable(t *testing.T) {
	_, sample := Estimate(MotionState{}, []detector.HandLandmarks{detector.FistLandmarks()}, Config{})
	assert.Equal(t, Fist, sample.Type)
}
