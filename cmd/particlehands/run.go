package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/particlehands/internal/app"
	"github.com/ayusman/particlehands/internal/config"
	"github.com/ayusman/particlehands/internal/logging"
	"github.com/ayusman/particlehands/internal/server"
	"github.com/ayusman/particlehands/internal/tray"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// trayRefresh is how often the tray's gesture label is updated.
const trayRefresh = 500 * time.Millisecond

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if flags.Changed("particles") {
		cfg.Particles = opts.particles
		cfg.Field.Count = opts.particles
	}
	if flags.Changed("camera") {
		cfg.Camera.DeviceID = opts.camera
	}
	if flags.Changed("tray") {
		cfg.Tray.Enabled = opts.tray
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func runParticles(cmd *cobra.Command, opts options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	hub := server.NewHub(logger)
	a, err := app.New(cfg, app.Options{Broadcaster: hub, Logger: logger})
	if err != nil {
		return err
	}

	webDir := opts.webDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		logger.Info("serving static files", zap.String("dir", webDir))
	}
	srv := server.New(server.Config{
		StaticDir:  webDir,
		Controller: a,
		Hub:        hub,
		Previewer:  a,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(ctx) })
	g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Server.Addr) })

	if cfg.Tray.Enabled {
		t := newTray(a, "http://"+cfg.Server.Addr+"/api/preview", stop, logger)
		g.Go(func() error {
			refreshTray(ctx, t, a)
			t.Quit()
			return nil
		})
		// The tray owns the main goroutine until it quits.
		t.Run()
		stop()
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func newTray(a *app.App, previewURL string, quit func(), logger *zap.Logger) *tray.Tray {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnShape(func(name string) {
		if err := a.SetShape(name); err != nil {
			logger.Warn("tray shape change", zap.String("shape", name), zap.Error(err))
		}
	})
	t.OnExplode(a.TriggerExplosion)
	t.OnPreview(func() {
		if err := openBrowser(previewURL); err != nil {
			logger.Warn("open preview", zap.String("url", previewURL), zap.Error(err))
		}
	})
	t.OnQuit(quit)
	return t
}

func refreshTray(ctx context.Context, t *tray.Tray, a *app.App) {
	ticker := time.NewTicker(trayRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := a.State()
			t.SetLastGesture(st.Sample.Type.String())
			t.SetShape(st.Field.Shape)
		}
	}
}

func openBrowser(url string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		name = "xdg-open"
	}
	return exec.Command(name, url).Start()
}

// findWebDir searches for the renderer directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".particlehands", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
