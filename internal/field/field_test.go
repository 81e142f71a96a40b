package field

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/shape"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// blockRasterizer lights a filled rectangle in the middle of the canvas.
type blockRasterizer struct {
	empty bool
}

func (b blockRasterizer) Rasterize(text string, size float64) (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, shape.CanvasWidth, shape.CanvasHeight))
	if b.empty {
		return img, nil
	}
	for y := 70; y < 80; y++ {
		for x := 240; x < 260; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img, nil
}

func newTestField(t *testing.T, n int, mutate func(*Config)) *Field {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Count = n
	cfg.InitialShape = "sphere"
	cfg.Rasterizer = blockRasterizer{}
	cfg.Rand = rand.New(rand.NewPCG(3, 5))
	if mutate != nil {
		mutate(&cfg)
	}
	f, err := New(cfg)
	require.NoError(t, err)
	return f
}

func handSample(g gesture.Type, x, y float64) gesture.Sample {
	pos := r2.Vec{X: x, Y: y}
	return gesture.Sample{Type: g, Raw: g, Position: &pos, HandCount: 1}
}

func allFinite(t *testing.T, name string, buf []float64) {
	t.Helper()
	for i, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s[%d] = %v, want finite", name, i, v)
		}
	}
}

func TestNew(t *testing.T) {
	f := newTestField(t, 10, nil)
	assert.Equal(t, 10, f.Len())
	assert.Len(t, f.Positions(), 30)
	assert.Len(t, f.Velocities(), 30)
	assert.Len(t, f.Colors(), 30)
	assert.Len(t, f.Targets(), 30)
	assert.Equal(t, "sphere", f.Shape())

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Count = 0
		_, err := New(cfg)
		assert.Error(t, err)

		cfg = DefaultConfig()
		cfg.Friction = 1
		assert.Error(t, cfg.Validate())

		cfg = DefaultConfig()
		cfg.ExplosionStep = 0
		assert.Error(t, cfg.Validate())

		assert.NoError(t, DefaultConfig().Validate())
	})
}

func TestUpdate_NoForceDecay(t *testing.T) {
	for _, k := range []int{1, 10, 100} {
		t.Run(fmt.Sprintf("K=%d", k), func(t *testing.T) {
			f := newTestField(t, 8, func(c *Config) { c.ReturnIdle = 0 })
			for i := range f.vel {
				f.vel[i] = float64(i%5) - 2.5
			}
			v0 := append([]float64(nil), f.vel...)

			for i := 0; i < k; i++ {
				f.Update(gesture.NoneSample(), 1.0/60)
			}

			scale := math.Pow(f.cfg.Friction, float64(k))
			for i, v := range f.vel {
				assert.InDelta(t, v0[i]*scale, v, 1e-12, "K=%d component %d", k, i)
			}
		})
	}
}

func TestUpdate_FiniteState(t *testing.T) {
	for _, n := range []int{1, 100, 25000} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			f := newTestField(t, n, nil)
			rng := rand.New(rand.NewPCG(uint64(n), 9))
			frames := 120
			if n > 1000 {
				frames = 30
			}

			for i := 0; i < frames; i++ {
				var s gesture.Sample
				switch rng.IntN(5) {
				case 0:
					s = gesture.NoneSample()
				case 1:
					s = gesture.Sample{Type: gesture.Open}
				case 2:
					nan := r2.Vec{X: math.NaN(), Y: math.Inf(1)}
					s = gesture.Sample{Type: gesture.Rock, Position: &nan, Velocity: nan, HandAngle: math.NaN()}
				default:
					s = handSample(gesture.Type(rng.IntN(11)), rng.Float64(), rng.Float64())
					s.Velocity = r2.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5}
					s.HandAngle = rng.Float64() * 2 * math.Pi
					s.HandSize = rng.Float64()
					if rng.IntN(2) == 0 {
						s.SecondHand = &gesture.SecondHand{Position: r2.Vec{X: rng.Float64(), Y: rng.Float64()}, Gesture: gesture.Peace}
					}
				}
				if rng.IntN(20) == 0 {
					f.TriggerExplosion()
				}
				if rng.IntN(25) == 0 {
					_ = f.SetShape(shape.Kind(rng.IntN(int(shape.Text) + 1)).String())
				}
				f.Update(s, 1.0/60)
			}

			allFinite(t, "positions", f.Positions())
			allFinite(t, "velocities", f.Velocities())
			allFinite(t, "colors", f.Colors())
		})
	}
}

func TestTriggerExplosion_SelfTerminates(t *testing.T) {
	f := newTestField(t, 50, nil)
	step := f.cfg.ExplosionStep

	f.TriggerExplosion()
	exploding, phase := f.Exploding()
	require.True(t, exploding)
	require.Zero(t, phase)

	ended := 0
	prev := phase
	for i := 0; i < 200; i++ {
		wasExploding, _ := f.Exploding()
		f.Update(handSample(gesture.Open, 0.5, 0.5), 1.0/60)
		exploding, phase := f.Exploding()

		switch {
		case wasExploding && exploding:
			assert.Equal(t, prev+step, phase)
			assert.LessOrEqual(t, phase, 1.0)
		case wasExploding && !exploding:
			assert.Greater(t, prev+step, 1.0)
			assert.Zero(t, phase)
			ended++
		default:
			assert.False(t, exploding, "explosion restarted without a trigger")
			assert.Zero(t, phase)
		}
		prev = phase
	}
	assert.Equal(t, 1, ended)

	t.Run("ignored while running", func(t *testing.T) {
		f.TriggerExplosion()
		f.Update(gesture.NoneSample(), 0)
		_, before := f.Exploding()
		f.TriggerExplosion()
		_, after := f.Exploding()
		assert.Equal(t, before, after)
	})
}

func TestUpdate_ExplosionShell(t *testing.T) {
	f := newTestField(t, 200, nil)
	for i := 0; i < f.n; i++ {
		assert.InDelta(t, 1, r3.Norm(shellDirection(i, f.n)), 1e-9)
	}

	f.TriggerExplosion()
	fr := func() *frame {
		f.Update(gesture.NoneSample(), 0)
		return f.prepare(gesture.NoneSample())
	}()
	assert.True(t, fr.exploding)
	assert.InDelta(t, f.cfg.ExplosionRadius*f.cfg.ExplosionStep, fr.radius, 1e-12)
}

func TestSetShape_PaletteAndResampling(t *testing.T) {
	f := newTestField(t, 500, nil)
	love, ok := shape.PaletteByName("love")
	require.True(t, ok)

	inPalette := func(p shape.Palette) {
		t.Helper()
		for i := 0; i < f.n; i++ {
			c := colorful.Color{R: f.col[3*i], G: f.col[3*i+1], B: f.col[3*i+2]}
			require.Contains(t, p, c)
		}
	}

	require.NoError(t, f.SetShape("heart"))
	inPalette(love)
	first := append([]float64(nil), f.Targets()...)

	require.NoError(t, f.SetShape("heart"))
	inPalette(love)
	assert.NotEqual(t, first, f.Targets())

	t.Run("positions untouched", func(t *testing.T) {
		f.Update(handSample(gesture.Open, 0.3, 0.3), 1.0/60)
		before := append([]float64(nil), f.Positions()...)
		require.NoError(t, f.SetShape("cube"))
		assert.Equal(t, before, f.Positions())
		def, _ := shape.PaletteByName(shape.DefaultPaletteName)
		inPalette(def)
	})
}

func TestSetShape_Text(t *testing.T) {
	f := newTestField(t, 1000, nil)
	cloud, err := shape.TextCloud(blockRasterizer{}, "HI")
	require.NoError(t, err)
	require.Len(t, cloud, 50)

	require.NoError(t, f.SetShape("HI"))
	st := f.Status()
	assert.Equal(t, "HI", st.Shape)
	assert.True(t, st.Text)

	for i := 0; i < f.n; i++ {
		want := cloud[i%len(cloud)]
		assert.Equal(t, want.X, f.target[3*i])
		assert.Equal(t, want.Y, f.target[3*i+1])
		assert.LessOrEqual(t, math.Abs(f.target[3*i+2]), 0.5)
	}

	t.Run("text kind uses configured text and neon", func(t *testing.T) {
		require.NoError(t, f.SetShape("text"))
		assert.True(t, f.Status().Text)
		neon, _ := shape.PaletteByName("neon")
		assert.Contains(t, neon, colorful.Color{R: f.col[0], G: f.col[1], B: f.col[2]})
	})

	t.Run("empty raster falls back to sphere", func(t *testing.T) {
		f.raster = blockRasterizer{empty: true}
		err := f.SetShape("HI")
		assert.Error(t, err)
		assert.False(t, f.Status().Text)
		for i := 0; i < f.n; i++ {
			p := r3.Vec{X: f.target[3*i], Y: f.target[3*i+1], Z: f.target[3*i+2]}
			assert.LessOrEqual(t, r3.Norm(p), shape.DefaultSphereRadius+1e-9)
		}
	})
}

func TestUpdate_FocusPersistsWithoutHand(t *testing.T) {
	f := newTestField(t, 10, nil)
	f.Update(handSample(gesture.Fist, 0.25, 0.75), 1.0/60)
	want := r3.Vec{X: 0.25 * 20, Y: -0.25 * 15}
	assert.Equal(t, want, f.Focus())

	for i := 0; i < 50; i++ {
		f.Update(gesture.NoneSample(), 1.0/60)
	}
	assert.Equal(t, want, f.Focus())
	assert.False(t, f.Guides()[0].Visible)
}

func TestPrepare_ReturnCoefficient(t *testing.T) {
	f := newTestField(t, 10, nil)
	c := f.cfg

	fast := handSample(gesture.Open, 0.5, 0.5)
	fast.Velocity = r2.Vec{X: 0.1}

	tests := []struct {
		name         string
		sample       gesture.Sample
		wantReturn   float64
		wantFriction float64
		wantRotate   bool
	}{
		{"no hand", gesture.NoneSample(), c.ReturnIdle, c.Friction, false},
		{"still hand", handSample(gesture.Point, 0.5, 0.5), c.ReturnHand, c.Friction, true},
		{"dragging", fast, c.ReturnDrag, c.Friction, false},
		{"fist", handSample(gesture.Fist, 0.5, 0.5), c.ReturnFist, c.FistFriction, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := f.prepare(tt.sample)
			assert.Equal(t, tt.wantReturn, fr.ret)
			assert.Equal(t, tt.wantFriction, fr.friction)
			assert.Equal(t, tt.wantRotate, fr.rotate)
		})
	}
	assert.Greater(t, c.ReturnIdle, c.ReturnHand)
	assert.Greater(t, c.ReturnFist, c.ReturnIdle)
}

func TestGestureForce(t *testing.T) {
	f := newTestField(t, 10, nil)
	fr := f.prepare(handSample(gesture.Fist, 0.5, 0.5))
	require.Equal(t, r3.Vec{}, fr.focus)

	t.Run("fist pulls inward beyond the dead zone", func(t *testing.T) {
		assert.Equal(t, r3.Vec{}, f.gestureForce(r3.Vec{X: 1}, fr))
		force := f.gestureForce(r3.Vec{X: 5}, fr)
		assert.InDelta(t, -3*f.cfg.FistPull, force.X, 1e-12)
	})

	t.Run("open repels close particles", func(t *testing.T) {
		fr := f.prepare(handSample(gesture.Open, 0.5, 0.5))
		force := f.gestureForce(r3.Vec{X: 1}, fr)
		assert.Greater(t, force.X, 0.0)
		assert.Equal(t, r3.Vec{}, f.gestureForce(r3.Vec{X: 20}, fr))
	})

	t.Run("rock swirls tangentially", func(t *testing.T) {
		fr := f.prepare(handSample(gesture.Rock, 0.5, 0.5))
		force := f.gestureForce(r3.Vec{X: 3}, fr)
		assert.InDelta(t, 0, force.X, 1e-12)
		assert.InDelta(t, f.cfg.RockSwirl, force.Y, 1e-12)
		assert.Equal(t, r3.Vec{}, f.gestureForce(r3.Vec{}, fr))
	})

	t.Run("thumbs up lifts", func(t *testing.T) {
		fr := f.prepare(handSample(gesture.ThumbsUp, 0.5, 0.5))
		force := f.gestureForce(r3.Vec{X: 5}, fr)
		assert.InDelta(t, f.cfg.ThumbLift*0.5, force.Y, 1e-12)
	})

	t.Run("point pushes along the hand", func(t *testing.T) {
		s := handSample(gesture.Point, 0.5, 0.5)
		s.HandAngle = -math.Pi / 2
		fr := f.prepare(s)
		force := f.gestureForce(r3.Vec{X: 1}, fr)
		assert.InDelta(t, f.cfg.PointBias, force.Y, 1e-12)
	})

	t.Run("peace is radial", func(t *testing.T) {
		fr := f.prepare(handSample(gesture.Peace, 0.5, 0.5))
		force := f.gestureForce(r3.Vec{X: 2}, fr)
		assert.InDelta(t, 0, force.Y, 1e-12)
		assert.Equal(t, r3.Vec{}, f.gestureForce(r3.Vec{}, fr))
	})
}

func TestUpdate_IdleTrailScatter(t *testing.T) {
	f := newTestField(t, 300, func(c *Config) { c.InitialShape = "trail" })
	for i := 0; i < 600; i++ {
		f.Update(gesture.NoneSample(), 1.0/60)
	}
	for i := 0; i < f.n; i++ {
		want := f.scatter(i)
		assert.InDelta(t, want.X, f.pos[3*i], 0.05)
		assert.InDelta(t, want.Y, f.pos[3*i+1], 0.05)
	}
}

func TestUpdate_HueCycling(t *testing.T) {
	f := newTestField(t, 64, nil)
	before := append([]float64(nil), f.Colors()...)

	f.Update(handSample(gesture.Open, 0.5, 0.5), 1.0/60)
	assert.Equal(t, before, f.Colors(), "open leaves colors alone")

	f.Update(handSample(gesture.Rock, 0.5, 0.5), 1.0/60)
	assert.NotEqual(t, before, f.Colors())
	allFinite(t, "colors", f.Colors())
	for _, c := range f.Colors() {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestGuides(t *testing.T) {
	f := newTestField(t, 10, nil)

	s := handSample(gesture.Pinch, 0.5, 0.5)
	s.SecondHand = &gesture.SecondHand{Position: r2.Vec{X: 0, Y: 0}, Gesture: gesture.ThumbsUp}
	f.Update(s, 1.0/60)

	g := f.Guides()
	assert.True(t, g[0].Visible)
	assert.Equal(t, PinchGuideScale, g[0].Scale)
	assert.Equal(t, red, g[0].Color)

	love, _ := shape.PaletteByName("love")
	assert.True(t, g[1].Visible)
	assert.Equal(t, r3.Vec{X: 10, Y: 7.5}, g[1].Position)
	assert.Equal(t, love[0], g[1].Color)

	s = handSample(gesture.Open, 0.5, 0.5)
	s.HandSize = 2 * f.cfg.ReferenceHandSize
	f.Update(s, 1.0/60)
	g = f.Guides()
	assert.Equal(t, white, g[0].Color)
	assert.InDelta(t, 2, g[0].Scale, 1e-12)
	assert.False(t, g[1].Visible)
}

func TestUpdate_ParallelMatchesSequential(t *testing.T) {
	seq := newTestField(t, 5000, func(c *Config) { c.ParallelThreshold = 0 })
	par := newTestField(t, 5000, func(c *Config) {
		c.ParallelThreshold = 1
		c.Workers = 3
	})
	require.Equal(t, seq.Targets(), par.Targets())

	samples := []gesture.Sample{
		handSample(gesture.Open, 0.4, 0.6),
		handSample(gesture.Rock, 0.3, 0.3),
		gesture.NoneSample(),
		handSample(gesture.Peace, 0.7, 0.2),
	}
	for i := 0; i < 40; i++ {
		s := samples[i%len(samples)]
		seq.Update(s, 1.0/60)
		par.Update(s, 1.0/60)
	}
	assert.Equal(t, seq.Positions(), par.Positions())
	assert.Equal(t, seq.Colors(), par.Colors())
}

func TestSnapshot(t *testing.T) {
	f := newTestField(t, 4, nil)
	f.Update(handSample(gesture.Peace, 0.5, 0.5), 1.0/60)

	snap := f.Snapshot()
	assert.Equal(t, 4, snap.Count)
	assert.Equal(t, gesture.Peace, snap.Gesture)
	assert.Equal(t, uint64(1), snap.Frame)
	require.Len(t, snap.Positions, 12)
	require.Len(t, snap.Colors, 12)
	for i, v := range f.Positions() {
		assert.Equal(t, float32(v), snap.Positions[i])
	}

	snap.Positions[0] = 1e6
	assert.NotEqual(t, float32(f.Positions()[0]), snap.Positions[0], "snapshot is a copy")
}
