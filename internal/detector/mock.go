package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose describes which digits of a synthetic hand are extended.
type Pose struct {
	Thumb  bool
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

// fingerBaseX is the knuckle column of index, middle, ring and pinky for a
// right hand facing the camera.
var fingerBaseX = [4]float64{0.55, 0.50, 0.45, 0.40}

// PoseLandmarks builds an upright right hand with the wrist at (0.5, 0.8).
// Extended fingers point up the frame, curled fingers fold back below their
// knuckles, and an extended thumb reaches sideways.
func PoseLandmarks(p Pose) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.01}
	h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.02}
	if p.Thumb {
		h.Points[ThumbIP] = Point3D{X: 0.65, Y: 0.65, Z: 0.02}
		h.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.60, Z: 0.02}
	} else {
		h.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.66, Z: 0.01}
		h.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.68}
	}

	extended := [4]bool{p.Index, p.Middle, p.Ring, p.Pinky}
	for f := 0; f < 4; f++ {
		mcp := IndexMCP + 4*f
		x := fingerBaseX[f]
		h.Points[mcp] = Point3D{X: x, Y: 0.68}
		if extended[f] {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.55}
			h.Points[mcp+2] = Point3D{X: x, Y: 0.45}
			h.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		} else {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.66, Z: -0.05}
			h.Points[mcp+2] = Point3D{X: x - 0.01, Y: 0.70, Z: -0.04}
			h.Points[mcp+3] = Point3D{X: x - 0.02, Y: 0.72, Z: -0.02}
		}
	}

	return h
}

// Translate returns a copy of h shifted by (dx, dy) in frame coordinates.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// ThumbsUpLandmarks returns a preset with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true})
}

// OpenPalmLandmarks returns a preset with all five digits extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true})
}

// FistLandmarks returns a preset with every digit curled.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{})
}

// PeaceLandmarks returns a preset with index and middle extended.
func PeaceLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true})
}

// PointLandmarks returns a preset with only the index extended.
func PointLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true})
}

// RockLandmarks returns a preset with index and pinky extended.
func RockLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Pinky: true})
}

// ThreeLandmarks returns a preset with index, middle and ring extended.
func ThreeLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true, Ring: true})
}

// FourLandmarks returns a preset with four fingers extended and the thumb tucked.
func FourLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true, Ring: true, Pinky: true})
}

// PinchLandmarks returns an open palm whose thumb tip touches the index tip.
func PinchLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01}
	return h
}
