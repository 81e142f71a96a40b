package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/particlehands/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseRun parses args against the run command without executing it.
func parseRun(t *testing.T, args ...string) (*cobra.Command, options) {
	t.Helper()
	root := newRootCmd()
	run, rest, err := root.Find(append([]string{"run"}, args...))
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags(rest))

	var opts options
	opts.configPath, _ = run.Flags().GetString("config")
	opts.addr, _ = run.Flags().GetString("addr")
	opts.particles, _ = run.Flags().GetInt("particles")
	opts.camera, _ = run.Flags().GetInt("camera")
	opts.tray, _ = run.Flags().GetBool("tray")
	opts.logLevel, _ = run.Flags().GetString("log-level")
	return run, opts
}

func TestLoadConfig_Defaults(t *testing.T) {
	cmd, opts := parseRun(t)
	cfg, err := loadConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, config.Default().Particles, cfg.Particles)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles: 5000\nserver:\n  addr: 127.0.0.1:9000\n"), 0644))

	cmd, opts := parseRun(t, "--config", path, "--particles", "800", "--camera", "2", "--tray", "--log-level", "debug")
	cfg, err := loadConfig(cmd, opts)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Particles)
	assert.Equal(t, 800, cfg.Field.Count)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.True(t, cfg.Tray.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	cmd, opts := parseRun(t, "--particles", "0")
	_, err := loadConfig(cmd, opts)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestShapesCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"shapes"})
	require.NoError(t, root.Execute())

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, []string{"SHAPE", "PALETTE", "GESTURES"}, strings.Fields(lines[0]))

	rows := map[string][]string{}
	for _, l := range lines[1:] {
		if f := strings.Fields(l); len(f) == 3 {
			rows[f[0]] = f[1:]
		}
	}
	assert.Equal(t, []string{"love", "thumbs_up"}, rows["heart"])
	assert.Equal(t, []string{"fire", "fist"}, rows["firework"])
	assert.Equal(t, "-", rows["cube"][1])
	assert.Contains(t, out.String(), "Any other name is drawn as text.")
}
