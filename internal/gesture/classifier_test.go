package gesture

import (
	"math/rand/v2"
	"testing"

	"github.com/ayusman/particlehands/internal/detector"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Type
	}{
		{name: "pinch", hand: detector.PinchLandmarks(), want: Pinch},
		{name: "fist", hand: detector.FistLandmarks(), want: Fist},
		{name: "thumbs up", hand: detector.ThumbsUpLandmarks(), want: ThumbsUp},
		{name: "peace", hand: detector.PeaceLandmarks(), want: Peace},
		{name: "point", hand: detector.PointLandmarks(), want: Point},
		{name: "rock", hand: detector.RockLandmarks(), want: Rock},
		{name: "three", hand: detector.ThreeLandmarks(), want: Three},
		{name: "four", hand: detector.FourLandmarks(), want: Four},
		{name: "open", hand: detector.OpenPalmLandmarks(), want: Open},
		{name: "thumb and pinky", hand: detector.PoseLandmarks(detector.Pose{Thumb: true, Pinky: true}), want: Unknown},
		{name: "middle only", hand: detector.PoseLandmarks(detector.Pose{Middle: true}), want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.hand))
		})
	}
}

func TestClassify_PinchBeatsFist(t *testing.T) {
	hand := detector.FistLandmarks()
	tip := hand.Points[detector.IndexTip]
	hand.Points[detector.ThumbTip] = detector.Point3D{X: tip.X + 0.01, Y: tip.Y}

	assert.Equal(t, 0, OpenFingerCount(&hand), "hand should also satisfy the fist rule")
	assert.Equal(t, Pinch, Classify(&hand))
}

func TestClassify_PinchThresholdIsStrict(t *testing.T) {
	hand := detector.FistLandmarks()
	hand.Points[detector.IndexTip] = detector.Point3D{X: 0, Y: 0.75}
	hand.Points[detector.ThumbTip] = detector.Point3D{X: PinchThreshold, Y: 0.75}

	assert.Equal(t, PinchThreshold, detector.PlanarDistance(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip]))
	assert.False(t, IsPinching(&hand))
	assert.NotEqual(t, Pinch, Classify(&hand))

	hand.Points[detector.ThumbTip].X = 0.049
	assert.True(t, IsPinching(&hand))
	assert.Equal(t, Pinch, Classify(&hand))
}

func TestClassify_Totality(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		var hand detector.HandLandmarks
		for j := range hand.Points {
			hand.Points[j] = detector.Point3D{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64() - 0.5}
		}
		got := Classify(&hand)
		if !got.Valid() || got == None {
			t.Fatalf("iteration %d: classifier returned %v", i, got)
		}
	}
}

func TestClassify_Pure(t *testing.T) {
	hand := detector.RockLandmarks()
	first := Classify(&hand)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(&hand))
	}
}

func TestPredicates(t *testing.T) {
	t.Run("thumb extension is sideways", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		assert.True(t, IsThumbExtended(&hand))

		// Straight up thumb: tip directly above MCP is not extended.
		hand.Points[detector.ThumbIP] = detector.Point3D{X: 0.60, Y: 0.55}
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.60, Y: 0.40}
		assert.False(t, IsThumbExtended(&hand))
	})

	t.Run("finger needs tip above both joints", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		hand.Points[detector.IndexPIP].Y = 0.30
		assert.False(t, IsFingerExtended(&hand, detector.IndexTip))
	})

	t.Run("open finger count range", func(t *testing.T) {
		open := detector.OpenPalmLandmarks()
		fist := detector.FistLandmarks()
		assert.Equal(t, 5, OpenFingerCount(&open))
		assert.Equal(t, 0, OpenFingerCount(&fist))
	})
}

func TestType_Text(t *testing.T) {
	for _, g := range Types() {
		b, err := g.MarshalText()
		assert.NoError(t, err)

		var back Type
		assert.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, g, back)
	}

	assert.Len(t, Types(), 11)
	assert.Equal(t, "thumbs_up", ThumbsUp.String())
	_, err := ParseType("wave")
	assert.Error(t, err)
	assert.False(t, Type(200).Valid())
}
