package field

import (
	"math"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/shape"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-6

// frame holds the per-frame scalars every particle reads. It is built once
// per Update and never written while particles are stepped.
type frame struct {
	hand    bool
	gesture gesture.Type
	focus   r3.Vec

	handVx, handVy float64
	ret            float64
	friction       float64

	rotate     bool
	rotY, rotX r3.Rotation

	idleTrail bool
	exploding bool
	radius    float64

	laser    r3.Vec
	clock    float64
	cycle    bool
	huePhase float64
}

func (f *Field) prepare(s gesture.Sample) *frame {
	fr := &frame{
		focus:    f.focus,
		gesture:  gesture.None,
		ret:      f.cfg.ReturnIdle,
		friction: f.cfg.Friction,
		clock:    f.clock,
		huePhase: f.huePhase,
	}

	if s.HandPresent() && s.Type.Valid() && isFinite(s.Position.X) && isFinite(s.Position.Y) {
		fr.hand = true
		fr.gesture = s.Type
		fr.focus = f.mapFocus(s.Position.X, s.Position.Y)
		f.focus = fr.focus

		if isFinite(s.Velocity.X) && isFinite(s.Velocity.Y) {
			fr.handVx = -s.Velocity.X * f.cfg.DragGainX
			fr.handVy = -s.Velocity.Y * f.cfg.DragGainY
		}

		switch {
		case fr.gesture == gesture.Fist:
			fr.ret = f.cfg.ReturnFist
			fr.friction = f.cfg.FistFriction
		case math.Hypot(fr.handVx, fr.handVy) > f.cfg.DragSpeed:
			fr.ret = f.cfg.ReturnDrag
		default:
			fr.ret = f.cfg.ReturnHand
		}

		if fr.gesture != gesture.Open {
			fr.rotate = true
			fr.rotY = r3.NewRotation(fr.focus.X*f.cfg.RotationGain, r3.Vec{Y: 1})
			fr.rotX = r3.NewRotation(-fr.focus.Y*f.cfg.RotationGain, r3.Vec{X: 1})
		}

		if a := s.HandAngle; isFinite(a) {
			// Image angles point the other way once X is mirrored and Y flipped.
			fr.laser = r3.Vec{X: -math.Cos(a), Y: -math.Sin(a)}
		}

		fr.cycle = fr.gesture == gesture.Rock || fr.gesture == gesture.Peace
	}

	fr.idleTrail = !fr.hand && f.kind == shape.Trail
	fr.exploding = f.exploding
	fr.radius = f.cfg.ExplosionRadius * f.phase
	return fr
}

// scatter spreads particle i over a wide deterministic ambient volume.
func (f *Field) scatter(i int) r3.Vec {
	x := float64(i)
	return r3.Vec{
		X: math.Sin(x*12.9898) * f.cfg.ScatterX,
		Y: math.Cos(x*78.233) * f.cfg.ScatterY,
		Z: math.Sin(x*0.5) * f.cfg.ScatterZ,
	}
}

// shellDirection spreads n unit vectors evenly over a sphere.
func shellDirection(i, n int) r3.Vec {
	const golden = 2.399963229728653 // pi * (3 - sqrt 5)
	y := 1 - 2*(float64(i)+0.5)/float64(n)
	r := math.Sqrt(math.Max(0, 1-y*y))
	a := float64(i) * golden
	return r3.Vec{X: r * math.Cos(a), Y: y, Z: r * math.Sin(a)}
}

func (f *Field) stepRange(lo, hi int, fr *frame) {
	for i := lo; i < hi; i++ {
		f.step(i, fr)
	}
}

func (f *Field) step(i int, fr *frame) {
	ix := 3 * i
	p := r3.Vec{X: f.pos[ix], Y: f.pos[ix+1], Z: f.pos[ix+2]}
	t := r3.Vec{X: f.target[ix], Y: f.target[ix+1], Z: f.target[ix+2]}
	base := fr.focus

	if fr.rotate {
		t = fr.rotX.Rotate(fr.rotY.Rotate(t))
	}
	if fr.idleTrail {
		t = f.scatter(i)
		base = r3.Vec{}
	}
	if fr.exploding {
		t = r3.Scale(fr.radius, shellDirection(i, f.n))
	}

	force := r3.Scale(fr.ret, r3.Sub(r3.Add(t, base), p))
	if fr.hand {
		force = r3.Add(force, f.gestureForce(p, fr))
	}

	v := r3.Vec{X: f.vel[ix], Y: f.vel[ix+1], Z: f.vel[ix+2]}
	v = r3.Add(v, force)
	p = r3.Add(p, v)
	v = r3.Scale(fr.friction, v)

	f.pos[ix], f.pos[ix+1], f.pos[ix+2] = p.X, p.Y, p.Z
	f.vel[ix], f.vel[ix+1], f.vel[ix+2] = v.X, v.Y, v.Z

	if fr.cycle {
		h := math.Mod(fr.huePhase+float64(i)/float64(f.n), 1)
		c := colorful.Hsl(h*360, 1, 0.5).Clamped()
		f.col[ix], f.col[ix+1], f.col[ix+2] = c.R, c.G, c.B
	}
}

// gestureForce is the additive force the current gesture applies to a
// particle at p.
func (f *Field) gestureForce(p r3.Vec, fr *frame) r3.Vec {
	d := r3.Sub(p, fr.focus)
	dist := r3.Norm(d)
	c := &f.cfg

	switch fr.gesture {
	case gesture.Fist:
		if dist > c.FistDeadZone && dist > epsilon {
			return r3.Scale(-(dist-c.FistDeadZone)*c.FistPull/dist, d)
		}

	case gesture.Open:
		if dist >= c.OpenRadius {
			return r3.Vec{}
		}
		influence := 1 - dist/c.OpenRadius
		force := r3.Vec{
			X: fr.handVx * influence * c.OpenDragGain,
			Y: fr.handVy * influence * c.OpenDragGain,
		}
		if dist < c.RepelRadius {
			force = r3.Add(force, r3.Scale((c.RepelRadius-dist)*c.RepelGain, d))
		}
		return force

	case gesture.Point:
		if dist < c.PointRadius {
			return r3.Scale(c.PointBias, fr.laser)
		}

	case gesture.Peace:
		if dist > epsilon {
			wave := math.Sin(dist*c.PeaceWaveNumber-fr.clock*c.PeaceFrequency) * c.PeaceGain
			return r3.Scale(wave/dist, d)
		}

	case gesture.Rock:
		planar := math.Hypot(d.X, d.Y)
		if planar > epsilon && dist < c.RockRadius {
			return r3.Vec{X: -d.Y / planar * c.RockSwirl, Y: d.X / planar * c.RockSwirl}
		}

	case gesture.ThumbsUp:
		if dist < c.ThumbRadius {
			return r3.Vec{Y: c.ThumbLift * (1 - dist/c.ThumbRadius)}
		}
	}
	return r3.Vec{}
}
