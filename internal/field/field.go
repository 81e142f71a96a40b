// Package field simulates the particle field: N particles spring toward a
// target shape around the hand's focus point while gesture-specific forces
// push them around.
package field

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/shape"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field owns the particle buffers. It is not safe for concurrent use; the
// caller serializes Update, SetShape and TriggerExplosion.
type Field struct {
	cfg    Config
	n      int
	rng    shape.Rand
	raster shape.Rasterizer

	// Flat xyz buffers, 3n long.
	pos    []float64
	vel    []float64
	col    []float64
	target []float64

	shapeName string
	kind      shape.Kind
	isText    bool

	exploding bool
	phase     float64

	focus    r3.Vec
	huePhase float64
	clock    float64
	frame    uint64
	gesture  gesture.Type

	guides [2]Guide
}

// New allocates a field of cfg.Count particles at the origin and seeds the
// initial shape.
func New(cfg Config) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("field config: %w", err)
	}

	f := &Field{
		cfg:    cfg,
		n:      cfg.Count,
		rng:    cfg.Rand,
		raster: cfg.Rasterizer,
		pos:    make([]float64, 3*cfg.Count),
		vel:    make([]float64, 3*cfg.Count),
		col:    make([]float64, 3*cfg.Count),
		target: make([]float64, 3*cfg.Count),
	}
	if f.rng == nil {
		f.rng = shape.DefaultRand
	}
	if f.raster == nil {
		fr, err := shape.NewFontRasterizer()
		if err != nil {
			return nil, err
		}
		f.raster = fr
	}

	initial := cfg.InitialShape
	if initial == "" {
		initial = shape.Sphere.String()
	}
	if err := f.SetShape(initial); err != nil {
		return nil, fmt.Errorf("initial shape %q: %w", initial, err)
	}
	return f, nil
}

// Len returns the particle count.
func (f *Field) Len() int {
	return f.n
}

// SetShape re-seeds every particle's target and color for the named shape.
// Registered shape names use their sampler; any other name is rendered as
// text. Positions and velocities are left alone so particles animate toward
// the new targets. When text cannot be rasterized the sphere is used and the
// error is returned; the field is always left with a complete target set.
func (f *Field) SetShape(name string) error {
	kind, registered := shape.Parse(name)

	var (
		cloud []r3.Vec
		err   error
	)
	if !registered || kind == shape.Text {
		text := name
		if registered {
			text = f.cfg.Text
		}
		cloud, err = shape.TextCloud(f.raster, text)
		if err == nil && len(cloud) == 0 {
			err = fmt.Errorf("text %q: %w", text, errEmptyRaster)
		}
	}

	palette := shape.PaletteFor(name)
	sample := shape.SamplerFor(kind)
	if !registered {
		sample = shape.SamplerFor(shape.Sphere)
	}

	for i := 0; i < f.n; i++ {
		var p r3.Vec
		if len(cloud) > 0 {
			p = cloud[i%len(cloud)]
			p.Z = (f.rng.Float64() - 0.5) * f.cfg.TextJitter
		} else {
			p = sample(f.rng)
		}
		f.setTarget(i, p)

		c := palette.Pick(f.rng)
		f.col[3*i], f.col[3*i+1], f.col[3*i+2] = c.R, c.G, c.B
	}

	f.shapeName = name
	f.kind = kind
	if !registered {
		f.kind = shape.Text
	}
	f.isText = len(cloud) > 0
	return err
}

var errEmptyRaster = errors.New("raster has no lit pixels")

// Shape returns the name passed to the last SetShape.
func (f *Field) Shape() string {
	return f.shapeName
}

// TriggerExplosion starts an explosion. It is ignored while one is running.
func (f *Field) TriggerExplosion() {
	if f.exploding {
		return
	}
	f.exploding = true
	f.phase = 0
}

// Exploding reports whether an explosion is running and its phase in [0,1].
func (f *Field) Exploding() (bool, float64) {
	return f.exploding, f.phase
}

// Positions returns the flat xyz position buffer. The slice is owned by the
// field and valid until the next Update.
func (f *Field) Positions() []float64 {
	return f.pos
}

// Colors returns the flat rgb color buffer, components in [0,1]. The slice is
// owned by the field and valid until the next Update or SetShape.
func (f *Field) Colors() []float64 {
	return f.col
}

// Velocities returns the flat xyz velocity buffer.
func (f *Field) Velocities() []float64 {
	return f.vel
}

// Targets returns the flat xyz target buffer of the current shape.
func (f *Field) Targets() []float64 {
	return f.target
}

// Focus returns the current focus point.
func (f *Field) Focus() r3.Vec {
	return f.focus
}

// Guides returns the primary and secondary hand markers.
func (f *Field) Guides() [2]Guide {
	return f.guides
}

func (f *Field) setTarget(i int, p r3.Vec) {
	f.target[3*i], f.target[3*i+1], f.target[3*i+2] = p.X, p.Y, p.Z
}

// Update advances the simulation one frame. dt advances the clock that drives
// time-varying forces; integration itself is per frame.
func (f *Field) Update(s gesture.Sample, dt float64) {
	if f.exploding {
		f.phase += f.cfg.ExplosionStep
		if f.phase > 1 {
			f.exploding = false
			f.phase = 0
		}
	}
	if isFinite(dt) && dt > 0 {
		f.clock += dt
	}
	f.huePhase = math.Mod(f.huePhase+f.cfg.HueSpeed, 1)
	f.frame++

	fr := f.prepare(s)
	f.gesture = fr.gesture
	f.updateGuides(s, fr)

	if f.n < f.cfg.ParallelThreshold || f.cfg.ParallelThreshold <= 0 {
		f.stepRange(0, f.n, fr)
		return
	}

	workers := f.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (f.n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < f.n; lo += chunk {
		hi := min(lo+chunk, f.n)
		g.Go(func() error {
			f.stepRange(lo, hi, fr)
			return nil
		})
	}
	_ = g.Wait()
}

// mapFocus converts a normalized hand position to world space. The X axis is
// mirrored so the field follows the hand in a selfie view.
func (f *Field) mapFocus(x, y float64) r3.Vec {
	return r3.Vec{X: (0.5 - x) * f.cfg.FocusScaleX, Y: (0.5 - y) * f.cfg.FocusScaleY}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// guideColor is the first color of the palette of the shape t maps to.
func guideColor(t gesture.Type) colorful.Color {
	k, ok := shape.ForGesture(t)
	if !ok {
		return white
	}
	p := shape.PaletteFor(k.String())
	if len(p) == 0 {
		return white
	}
	return p[0]
}

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	red   = colorful.Color{R: 1}
)
