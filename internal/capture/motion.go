package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection defaults.
const (
	// DefaultMotionThreshold is the percentage of changed pixels that counts
	// as motion.
	DefaultMotionThreshold = 1.0
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel gray difference that counts as change.
	DiffThreshold = 25
	// DefaultIdleAfter is how long without motion before detection idles.
	DefaultIdleAfter = 2 * time.Second
)

// MotionDetector compares each frame to the previous one by blurred gray
// differencing.
type MotionDetector struct {
	mu          sync.Mutex
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
}

// NewMotionDetector reports motion when more than threshold percent of the
// pixels change. Non-positive thresholds use DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{threshold: threshold, prevGray: gocv.NewMat()}
}

// Detect reports whether frame moved relative to the previous frame and the
// percentage of pixels that changed. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(GaussianBlurSize, GaussianBlurSize), 0, 0, gocv.BorderDefault)

	if !m.initialized || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100
	blurred.CopyTo(&m.prevGray)
	return changed > m.threshold, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = false
	return m.prevGray.Close()
}

// Activity tracks whether the scene is active: it turns active on motion and
// idles once no motion has been seen for IdleAfter.
type Activity struct {
	IdleAfter time.Duration

	active     bool
	lastMotion time.Time
}

// Observe records whether motion was seen at now. It returns the resulting
// state and whether it changed.
func (a *Activity) Observe(moved bool, now time.Time) (active, changed bool) {
	idleAfter := a.IdleAfter
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}

	was := a.active
	switch {
	case moved:
		a.lastMotion = now
		a.active = true
	case a.active && now.Sub(a.lastMotion) > idleAfter:
		a.active = false
	}
	return a.active, a.active != was
}

// Active reports the current state.
func (a *Activity) Active() bool {
	return a.active
}
