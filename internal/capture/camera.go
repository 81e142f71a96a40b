// Package capture reads frames from a camera for the hand detector.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/particlehands/internal/logging"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultIdleFPS   = 5
	DefaultActiveFPS = 30
	DefaultWidth     = 640
	DefaultHeight    = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrFrameUnavailable is returned when the device produced no usable frame.
	ErrFrameUnavailable = errors.New("no frame available")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Config holds camera settings.
type Config struct {
	DeviceID int         `yaml:"device"`
	Width    int         `yaml:"width"`
	Height   int         `yaml:"height"`
	FPS      int         `yaml:"fps"`
	Logger   *zap.Logger `yaml:"-"`
}

// DefaultConfig returns settings for the first camera at 640x480.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		FPS:      DefaultIdleFPS,
	}
}

type deviceCamera struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera returns a Camera for the configured device. It is not opened.
func NewCamera(cfg Config) Camera {
	logger := logging.OrNop(cfg.Logger)
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultIdleFPS
	}
	return &deviceCamera{
		cfg:    cfg,
		logger: logger.Named("camera").With(zap.Int("device", cfg.DeviceID)),
		fps:    cfg.FPS,
	}
}

func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.cfg.DeviceID, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	c.logger.Info("camera opened",
		zap.Int("width", c.cfg.Width),
		zap.Int("height", c.cfg.Height),
		zap.Int("fps", c.fps))
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	c.logger.Info("camera closed")
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrFrameUnavailable
	}
	return &mat, nil
}

// SetFPS ignores non-positive rates.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
