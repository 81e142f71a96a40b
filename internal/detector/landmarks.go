// Package detector provides hand landmark types, detector implementations and
// the observation handoff between the detector and the frame loop.
package detector

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedLandmarks is returned when a landmark set does not contain
// exactly NumLandmarks points.
var ErrMalformedLandmarks = errors.New("malformed landmark set")

// Point3D is one landmark. X and Y are normalized to [0,1] relative to the
// frame, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is the 21-point landmark set of one tracked hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHandLandmarks builds a HandLandmarks from a point slice. The slice must
// hold exactly NumLandmarks points.
func NewHandLandmarks(points []Point3D) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d points, want %d", ErrMalformedLandmarks, len(points), NumLandmarks)
	}
	copy(h.Points[:], points)
	return h, nil
}

// Center returns the unweighted mean of the wrist, index MCP and pinky MCP in
// normalized frame coordinates.
func (h *HandLandmarks) Center() r2.Vec {
	w, i, p := h.Points[Wrist], h.Points[IndexMCP], h.Points[PinkyMCP]
	return r2.Vec{
		X: (w.X + i.X + p.X) / 3,
		Y: (w.Y + i.Y + p.Y) / 3,
	}
}

// Size returns the planar distance from the wrist to the middle finger MCP.
func (h *HandLandmarks) Size() float64 {
	return PlanarDistance(h.Points[Wrist], h.Points[MiddleMCP])
}

// Angle returns the screen-space angle of the wrist to middle fingertip
// direction, in radians.
func (h *HandLandmarks) Angle() float64 {
	w, m := h.Points[Wrist], h.Points[MiddleTip]
	return math.Atan2(m.Y-w.Y, m.X-w.X)
}

// PlanarDistance is the Euclidean distance between two landmarks ignoring depth.
func PlanarDistance(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
