package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/particlehands/internal/capture"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Run opens the camera and runs the detection and frame loops until ctx is
// done. A camera that cannot be opened is fatal; per-frame read and
// detection failures are logged and skipped.
func (a *App) Run(parent context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("close camera", zap.Error(err))
		}
		if err := a.detector.Close(); err != nil {
			a.logger.Warn("close detector", zap.Error(err))
		}
	}()

	a.logger.Info("running")
	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error { return a.runDetection(ctx) })
	g.Go(func() error { return a.runFrames(ctx) })

	err := g.Wait()
	a.logger.Info("stopped", zap.Uint64("frames", a.State().Frames))
	if parent.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return err
}

// runFrames steps the simulation at cfg.FPS.
func (a *App) runFrames(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(1, a.cfg.FPS)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			a.Step(now)
		}
	}
}

// runDetection reads camera frames and publishes detected hands. With motion
// gating on, the camera idles at a low rate until motion is seen and drops
// back after cfg.Glue.MotionIdleAfter of stillness.
func (a *App) runDetection(ctx context.Context) error {
	gated := a.cfg.Glue.MotionIdleAfter > 0
	activeFPS := max(1, a.cfg.Camera.FPS)
	if activeFPS < capture.DefaultActiveFPS {
		activeFPS = capture.DefaultActiveFPS
	}

	var (
		motion   *capture.MotionDetector
		activity capture.Activity
		fps      = activeFPS
	)
	if gated {
		motion = capture.NewMotionDetector(a.cfg.Glue.MotionThreshold)
		defer motion.Close()
		activity.IdleAfter = a.cfg.Glue.MotionIdleAfter
		fps = capture.DefaultIdleFPS
	}
	a.camera.SetFPS(fps)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.logger.Debug("read frame", zap.Error(err))
				continue
			}

			if gated {
				moved, _ := motion.Detect(frame)
				active, changed := activity.Observe(moved, now)
				if changed {
					fps = capture.DefaultIdleFPS
					if active {
						fps = activeFPS
					}
					a.camera.SetFPS(fps)
					ticker.Reset(time.Second / time.Duration(fps))
					a.logger.Debug("detection rate changed", zap.Bool("active", active), zap.Int("fps", fps))
				}
				if !active {
					a.publishPreview(frame)
					frame.Close()
					continue
				}
			}

			a.detect(frame)
		}
	}
}

// detect runs the detector on frame, publishes the result and closes frame.
func (a *App) detect(frame *gocv.Mat) {
	defer frame.Close()

	a.publishPreview(frame)
	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.detectErrors.Add(1)
		a.logger.Debug("detect hands", zap.Error(err))
		return
	}
	a.mailbox.Publish(hands)
}
