package gesture

import (
	"math"

	"github.com/ayusman/particlehands/internal/detector"
)

const (
	// PinchThreshold is the thumb tip to index tip gap, in normalized frame
	// units, below which a hand is pinching. The comparison is strict.
	PinchThreshold = 0.05

	// ThumbExtensionRatio is how much farther the thumb tip must sit from the
	// thumb MCP than the IP joint does, measured along X.
	ThumbExtensionRatio = 1.2
)

// Finger tips of the four non-thumb fingers.
var fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// IsFingerExtended reports whether the non-thumb finger ending at tip points
// up the frame: its tip is above both its PIP and MCP joints. Smaller Y is
// higher on screen.
func IsFingerExtended(h *detector.HandLandmarks, tip int) bool {
	t := h.Points[tip]
	pip := h.Points[tip-2]
	mcp := h.Points[tip-3]
	return t.Y < pip.Y && t.Y < mcp.Y
}

// IsThumbExtended reports whether the thumb is held out sideways. The thumb
// folds across the palm rather than downwards, so extension is judged on X.
func IsThumbExtended(h *detector.HandLandmarks) bool {
	tip := h.Points[detector.ThumbTip]
	ip := h.Points[detector.ThumbIP]
	mcp := h.Points[detector.ThumbMCP]
	return math.Abs(tip.X-mcp.X) > ThumbExtensionRatio*math.Abs(ip.X-mcp.X)
}

// OpenFingerCount returns how many digits are extended, thumb included (0-5).
func OpenFingerCount(h *detector.HandLandmarks) int {
	count := 0
	if IsThumbExtended(h) {
		count++
	}
	for _, tip := range fingerTips {
		if IsFingerExtended(h, tip) {
			count++
		}
	}
	return count
}

// IsPinching reports whether the thumb and index tips are closer than
// PinchThreshold.
func IsPinching(h *detector.HandLandmarks) bool {
	return detector.PlanarDistance(h.Points[detector.ThumbTip], h.Points[detector.IndexTip]) < PinchThreshold
}

// Classify maps one hand to exactly one gesture. Rules are evaluated in a
// fixed order and the first match wins. The result depends only on h.
func Classify(h *detector.HandLandmarks) Type {
	if IsPinching(h) {
		return Pinch
	}

	open := OpenFingerCount(h)
	if open == 0 {
		return Fist
	}

	thumb := IsThumbExtended(h)
	if thumb && open == 1 && h.Points[detector.ThumbTip].Y < h.Points[detector.Wrist].Y {
		return ThumbsUp
	}

	index := IsFingerExtended(h, detector.IndexTip)
	middle := IsFingerExtended(h, detector.MiddleTip)
	ring := IsFingerExtended(h, detector.RingTip)
	pinky := IsFingerExtended(h, detector.PinkyTip)

	switch {
	case index && middle && !ring && !pinky:
		return Peace
	case index && !middle && !ring && !pinky:
		return Point
	case index && pinky && !middle && !ring:
		return Rock
	case open == 3:
		return Three
	case open == 4 && !thumb:
		return Four
	case open >= 4:
		return Open
	}
	return Unknown
}
