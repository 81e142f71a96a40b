// Package app runs particlehands: a detection loop feeds hand observations
// through a mailbox to a fixed-rate frame loop that estimates the gesture,
// applies it to the particle field and broadcasts the result.
package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/particlehands/internal/capture"
	"github.com/ayusman/particlehands/internal/config"
	"github.com/ayusman/particlehands/internal/detector"
	"github.com/ayusman/particlehands/internal/field"
	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/logging"
	"github.com/ayusman/particlehands/internal/shape"
	"github.com/ayusman/particlehands/internal/shape/cvtext"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Frame is one simulated frame as handed to renderers.
type Frame struct {
	RunID    string
	Sample   gesture.Sample
	Snapshot field.Snapshot
}

// Broadcaster receives frames from the frame loop. Broadcast must not block.
type Broadcaster interface {
	Broadcast(Frame)
}

// Options supplies collaborators. Nil fields get production defaults.
type Options struct {
	Camera      capture.Camera
	Detector    detector.Detector
	Broadcaster Broadcaster
	Logger      *zap.Logger
}

// State is a point-in-time view of the app.
type State struct {
	RunID        string         `json:"run_id"`
	Enabled      bool           `json:"enabled"`
	Frames       uint64         `json:"frames"`
	Seq          uint64         `json:"seq"`
	StaleFrames  uint64         `json:"stale_frames"`
	DetectErrors uint64         `json:"detect_errors"`
	LastDetect   time.Time      `json:"last_detect"`
	Sample       gesture.Sample `json:"sample"`
	Field        field.Status   `json:"field"`
}

// App owns the particle field and the loops that drive it.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	runID       string
	camera      capture.Camera
	detector    detector.Detector
	broadcaster Broadcaster
	mailbox     *detector.Mailbox

	enabled      atomic.Bool
	detectErrors atomic.Uint64
	preview      previewBuffer

	// mu guards everything the frame loop touches.
	mu          sync.Mutex
	field       *field.Field
	motionState gesture.MotionState
	glue        *Glue
	hands       []detector.HandLandmarks
	lastSeq     uint64
	lastDetect  time.Time
	stale       uint64
	sample      gesture.Sample
	frames      uint64
	lastStep    time.Time
}

// New builds the app. The camera is not opened until Run.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrNop(opts.Logger)
	runID := uuid.NewString()
	logger = logger.Named("app").With(zap.String("run", runID))

	fc := cfg.Field
	fc.Count = cfg.Particles
	raster, err := newRasterizer(fc.RasterizerName)
	if err != nil {
		return nil, err
	}
	fc.Rasterizer = raster
	f, err := field.New(fc)
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}

	a := &App{
		cfg:         cfg,
		logger:      logger,
		runID:       runID,
		camera:      opts.Camera,
		detector:    opts.Detector,
		broadcaster: opts.Broadcaster,
		mailbox:     detector.NewMailbox(),
		field:       f,
		motionState: gesture.NewMotionState(cfg.Motion),
		glue:        NewGlue(cfg.Glue),
		sample:      gesture.NoneSample(),
	}
	a.enabled.Store(true)

	if a.camera == nil {
		cc := cfg.Camera
		cc.Logger = logger
		a.camera = capture.NewCamera(cc)
	}
	if a.detector == nil {
		dc := cfg.Detector
		dc.Logger = logger
		if mp, err := detector.NewMediaPipeDetector(dc); err == nil {
			a.detector = mp
			logger.Info("using MediaPipe hand detection")
		} else {
			logger.Warn("MediaPipe not available, hands will not be tracked", zap.Error(err))
			a.detector = detector.NewMockDetector()
		}
	}

	logger.Info("app created",
		zap.Int("particles", cfg.Particles),
		zap.Int("fps", cfg.FPS),
		zap.String("shape", f.Shape()))
	return a, nil
}

// RunID identifies this process run.
func (a *App) RunID() string {
	return a.runID
}

// Mailbox is where detection results are published.
func (a *App) Mailbox() *detector.Mailbox {
	return a.mailbox
}

// SetEnabled pauses or resumes hand detection. The simulation keeps running.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	a.logger.Info("detection toggled", zap.Bool("enabled", enabled))
}

// IsEnabled reports whether hand detection is running.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Step runs one simulation frame at now and returns the frame's sample. The
// latest observation is used whether or not it is new, so a gesture persists
// while detection is failing or paused.
func (a *App) Step(now time.Time) gesture.Sample {
	a.mu.Lock()
	defer a.mu.Unlock()

	if obs, fresh := a.mailbox.Poll(a.lastSeq); fresh {
		a.lastSeq = obs.Seq
		a.hands = obs.Hands
		a.lastDetect = obs.At
	} else {
		a.stale++
	}

	var dt float64
	if !a.lastStep.IsZero() {
		dt = now.Sub(a.lastStep).Seconds()
	}
	a.lastStep = now

	var sample gesture.Sample
	a.motionState, sample = gesture.Estimate(a.motionState, a.hands, a.cfg.Motion)

	act := a.glue.Observe(sample)
	if act.Shape != "" {
		a.applyShape(act.Shape)
	}
	if act.Explode {
		a.field.TriggerExplosion()
		a.logger.Debug("explosion triggered by gesture")
	}

	a.field.Update(sample, dt)
	a.sample = sample
	a.frames++

	if a.broadcaster != nil && a.frames%uint64(max(1, a.cfg.Server.StreamEvery)) == 0 {
		a.broadcaster.Broadcast(Frame{RunID: a.runID, Sample: sample, Snapshot: a.field.Snapshot()})
	}
	return sample
}

func (a *App) applyShape(name string) {
	if err := a.field.SetShape(name); err != nil {
		a.logger.Warn("shape fell back to sphere", zap.String("shape", name), zap.Error(err))
		return
	}
	a.logger.Debug("shape changed", zap.String("shape", name))
}

// SetShape switches the field to a named shape or text. The current gesture
// will not override it until the gesture changes.
func (a *App) SetShape(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.glue.Hold()
	if err := a.field.SetShape(name); err != nil {
		return fmt.Errorf("set shape %q: %w", name, err)
	}
	a.logger.Info("shape set", zap.String("shape", name))
	return nil
}

// TriggerExplosion starts an explosion unless one is running.
func (a *App) TriggerExplosion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.field.TriggerExplosion()
}

// State returns a snapshot of the app's scalar state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State{
		RunID:        a.runID,
		Enabled:      a.enabled.Load(),
		Frames:       a.frames,
		Seq:          a.lastSeq,
		StaleFrames:  a.stale,
		DetectErrors: a.detectErrors.Load(),
		LastDetect:   a.lastDetect,
		Sample:       a.sample,
		Field:        a.field.Status(),
	}
}

// Snapshot copies the field for a renderer.
func (a *App) Snapshot() field.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.field.Snapshot()
}

// newRasterizer builds the text rasterizer named in the field config.
func newRasterizer(name string) (shape.Rasterizer, error) {
	switch name {
	case "", field.RasterizerFont:
		r, err := shape.NewFontRasterizer()
		if err != nil {
			return nil, fmt.Errorf("create font rasterizer: %w", err)
		}
		return r, nil
	case field.RasterizerOpenCV:
		return cvtext.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown rasterizer %q", config.ErrInvalid, name)
	}
}
