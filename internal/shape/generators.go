package shape

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rand is the randomness a sampler draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source, which is safe
// for concurrent use.
var DefaultRand Rand = globalRand{}

// Sampler draws one point from a shape's distribution.
type Sampler func(rng Rand) r3.Vec

// Default shape parameters, in world units.
const (
	DefaultSphereRadius    = 5.0
	DefaultTrailRadius     = 5.0
	DefaultHeartScale      = 0.4
	DefaultDoubleHeartSize = 0.35
	DoubleHeartOffset      = 8.0
	DefaultStarPoints      = 5
	DefaultStarInner       = 3.0
	DefaultStarOuter       = 8.0
	DefaultGalaxyArms      = 4
	DefaultGalaxySpread    = 12.0
	DefaultFlowerPetals    = 6
	DefaultFlowerSize      = 8.0
	DefaultWingSpan        = 10.0
	DefaultFireworkRadius  = 10.0
	DefaultSpiralTurns     = 3.0
	DefaultSpiralHeight    = 15.0
	DefaultSpiralRadius    = 6.0
	DefaultDNATurns        = 4.0
	DefaultDNAHeight       = 15.0
	DefaultDNARadius       = 4.0
	DefaultWavelength      = 3.0
	DefaultWaveAmplitude   = 4.0
	DefaultWaveWidth       = 20.0
	DefaultTornadoHeight   = 15.0
	DefaultTornadoRadius   = 8.0
	DefaultRainWidth       = 25.0
	DefaultRainHeight      = 20.0
	DefaultSnowHeight      = 15.0
	DefaultVolumeDepth     = 10.0
	DefaultSmileyRadius    = 8.0
	DefaultInfinityScale   = 6.0
	DefaultPeaceRadius     = 8.0
	DefaultVortexRadius    = 10.0
	DefaultVortexDepth     = 8.0
	DefaultCubeSize        = 8.0
	DefaultPyramidSize     = 10.0
	ExplosionRadius        = 15.0
)

var samplers = [numKinds]Sampler{
	Sphere:      func(rng Rand) r3.Vec { return Ball(rng, DefaultSphereRadius) },
	Trail:       func(rng Rand) r3.Vec { return Ball(rng, DefaultTrailRadius) },
	Heart:       func(rng Rand) r3.Vec { return HeartCurve(rng, DefaultHeartScale) },
	DoubleHeart: func(rng Rand) r3.Vec { return DoubleHeartCurve(rng, DefaultDoubleHeartSize) },
	Star:        func(rng Rand) r3.Vec { return StarOutline(rng, DefaultStarPoints, DefaultStarInner, DefaultStarOuter) },
	Galaxy:      func(rng Rand) r3.Vec { return SpiralGalaxy(rng, DefaultGalaxyArms, DefaultGalaxySpread) },
	Saturn:      RingedPlanet,
	Moon:        Crescent,
	Flower:      func(rng Rand) r3.Vec { return Rose(rng, DefaultFlowerPetals, DefaultFlowerSize) },
	Tree:        ConeTree,
	Butterfly:   func(rng Rand) r3.Vec { return ButterflyCurve(rng, DefaultWingSpan) },
	Firework:    func(rng Rand) r3.Vec { return Burst(rng, r3.Vec{}, DefaultFireworkRadius) },
	Spiral:      func(rng Rand) r3.Vec { return Helix(rng, DefaultSpiralTurns, DefaultSpiralHeight, DefaultSpiralRadius) },
	DNA:         func(rng Rand) r3.Vec { return DoubleHelix(rng, DefaultDNATurns, DefaultDNAHeight, DefaultDNARadius) },
	Wave:        func(rng Rand) r3.Vec { return SineSheet(rng, DefaultWavelength, DefaultWaveAmplitude, DefaultWaveWidth) },
	Tornado:     func(rng Rand) r3.Vec { return Funnel(rng, DefaultTornadoHeight, DefaultTornadoRadius) },
	Rain:        func(rng Rand) r3.Vec { return Volume(rng, DefaultRainWidth, DefaultRainHeight, DefaultVolumeDepth) },
	Snow:        func(rng Rand) r3.Vec { return Volume(rng, DefaultRainWidth, DefaultSnowHeight, DefaultVolumeDepth) },
	Smiley:      func(rng Rand) r3.Vec { return SmileyFace(rng, DefaultSmileyRadius) },
	Infinity:    func(rng Rand) r3.Vec { return Lemniscate(rng, DefaultInfinityScale) },
	Peace:       func(rng Rand) r3.Vec { return PeaceSign(rng, DefaultPeaceRadius) },
	Vortex:      func(rng Rand) r3.Vec { return Whirlpool(rng, DefaultVortexRadius, DefaultVortexDepth) },
	Cube:        func(rng Rand) r3.Vec { return CubeSurface(rng, DefaultCubeSize) },
	Pyramid:     func(rng Rand) r3.Vec { return PyramidSurface(rng, DefaultPyramidSize) },
	// Text is rasterized; sampling it directly yields the fallback sphere.
	Text: func(rng Rand) r3.Vec { return Ball(rng, DefaultSphereRadius) },
}

// Sample draws one point from kind's distribution with default parameters.
// A nil rng uses DefaultRand. Invalid kinds sample the sphere.
func Sample(kind Kind, rng Rand) r3.Vec {
	if rng == nil {
		rng = DefaultRand
	}
	if !kind.Valid() {
		kind = Sphere
	}
	return samplers[kind](rng)
}

// SamplerFor returns the default-parameter sampler for kind.
func SamplerFor(kind Kind) Sampler {
	if !kind.Valid() {
		return samplers[Sphere]
	}
	return samplers[kind]
}

func centered(rng Rand, span float64) float64 {
	return (rng.Float64() - 0.5) * span
}

func side(rng Rand) float64 {
	if rng.Float64() > 0.5 {
		return 1
	}
	return -1
}

// polar converts a radius and spherical angles to a point.
func polar(r, theta, phi float64) r3.Vec {
	return r3.Vec{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}

// Ball is uniform in a solid ball of the given radius.
func Ball(rng Rand, radius float64) r3.Vec {
	r := radius * math.Cbrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	return polar(r, theta, phi)
}

func heartXY(t, scale float64) (float64, float64) {
	s := math.Sin(t)
	x := scale * 16 * s * s * s
	y := scale * (13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t))
	return x, y
}

// HeartCurve samples the classic parametric heart with some depth.
func HeartCurve(rng Rand, scale float64) r3.Vec {
	x, y := heartXY(rng.Float64()*2*math.Pi, scale)
	return r3.Vec{X: x, Y: y, Z: centered(rng, 6)}
}

// DoubleHeartCurve places two hearts side by side, offset on X.
func DoubleHeartCurve(rng Rand, scale float64) r3.Vec {
	x, y := heartXY(rng.Float64()*2*math.Pi, scale)
	return r3.Vec{X: x + side(rng)*DoubleHeartOffset, Y: y, Z: centered(rng, 4)}
}

// StarOutline samples the edges of a star polygon whose vertices alternate
// between outer and inner radii.
func StarOutline(rng Rand, points int, inner, outer float64) r3.Vec {
	if points < 2 {
		points = DefaultStarPoints
	}
	n := points * 2
	i := rng.IntN(n)
	next := (i + 1) % n

	radius := func(k int) float64 {
		if k%2 == 0 {
			return outer
		}
		return inner
	}
	a0 := float64(i) / float64(n) * 2 * math.Pi
	a1 := float64(next) / float64(n) * 2 * math.Pi
	if next == 0 {
		a1 = 2 * math.Pi
	}

	t := rng.Float64()
	r := radius(i) + t*(radius(next)-radius(i))
	a := a0 + t*(a1-a0)
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: centered(rng, 3)}
}

// SpiralGalaxy samples log-spiral arms with a small angular jitter. The disk
// thickens toward the rim.
func SpiralGalaxy(rng Rand, arms int, spread float64) r3.Vec {
	if arms < 1 {
		arms = DefaultGalaxyArms
	}
	armAngle := float64(rng.IntN(arms)) / float64(arms) * 2 * math.Pi
	d := rng.Float64() * spread
	a := armAngle + d*0.5 + centered(rng, 0.5)
	return r3.Vec{
		X: d * math.Cos(a),
		Y: d * math.Sin(a),
		Z: centered(rng, 1+d*0.1),
	}
}

// RingedPlanet picks, with equal odds, a point on a tilted flat ring or in a
// solid planet.
func RingedPlanet(rng Rand) r3.Vec {
	if rng.Float64() <= 0.5 {
		return Ball(rng, 4)
	}
	const inner, outer, tilt = 7.0, 12.0, 0.3
	r := inner + rng.Float64()*(outer-inner)
	theta := rng.Float64() * 2 * math.Pi
	return r3.Vec{
		X: r * math.Cos(theta),
		Y: r * math.Sin(theta) * math.Sin(tilt),
		Z: r * math.Sin(theta) * math.Cos(tilt),
	}
}

// Crescent folds the near half of a sphere shell over to form a crescent and
// re-centers it.
func Crescent(rng Rand) r3.Vec {
	const r = 5.0
	theta := centered(rng, math.Pi)
	phi := rng.Float64() * 2 * math.Pi
	x := r * math.Cos(theta) * math.Cos(phi)
	if x < 2 {
		x += 4
	}
	return r3.Vec{
		X: x - 5,
		Y: r * math.Sin(theta),
		Z: r * math.Cos(theta) * math.Sin(phi),
	}
}

// Rose samples inside a rose curve r = size·cos(petals·θ).
func Rose(rng Rand, petals int, size float64) r3.Vec {
	theta := rng.Float64() * 2 * math.Pi
	r := size * math.Cos(float64(petals)*theta) * rng.Float64()
	return r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: centered(rng, 3)}
}

// ConeTree is a trunk box under a conical canopy, 30/70.
func ConeTree(rng Rand) r3.Vec {
	if rng.Float64() > 0.7 {
		return r3.Vec{X: centered(rng, 2), Y: -5 + rng.Float64()*4, Z: centered(rng, 2)}
	}
	h := rng.Float64() * 8
	r := (8 - h) * 0.5
	a := rng.Float64() * 2 * math.Pi
	return r3.Vec{X: r * math.Cos(a), Y: h - 2, Z: r * math.Sin(a)}
}

// ButterflyCurve samples Fay's butterfly curve, mirrored left and right.
func ButterflyCurve(rng Rand, wingSpan float64) r3.Vec {
	t := rng.Float64() * 2 * math.Pi
	s := side(rng)
	r := math.Exp(math.Sin(t)) - 2*math.Cos(4*t) + math.Pow(math.Sin((2*t-math.Pi)/24), 5)
	scale := wingSpan / 5
	return r3.Vec{X: scale * r * math.Cos(t) * s, Y: scale * r * math.Sin(t), Z: centered(rng, 2)}
}

// Burst scatters radially around center with a uniform radius, dense at the
// core like a firework shell.
func Burst(rng Rand, center r3.Vec, radius float64) r3.Vec {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	return r3.Add(center, polar(radius*rng.Float64(), theta, phi))
}

// Explosion is a burst of radius ExplosionRadius·phase around the origin.
func Explosion(rng Rand, phase float64) r3.Vec {
	return Burst(rng, r3.Vec{}, ExplosionRadius*phase)
}

// Helix samples a single rising helix that narrows toward the top.
func Helix(rng Rand, turns, height, radius float64) r3.Vec {
	t := rng.Float64()
	a := t * turns * 2 * math.Pi
	r := radius * (1 - t*0.3)
	return r3.Vec{X: r * math.Cos(a), Y: (t - 0.5) * height, Z: r * math.Sin(a)}
}

// DoubleHelix samples one of two antipodal strands.
func DoubleHelix(rng Rand, turns, height, radius float64) r3.Vec {
	t := rng.Float64()
	a := t * turns * 2 * math.Pi
	if rng.Float64() <= 0.5 {
		a += math.Pi
	}
	return r3.Vec{X: radius * math.Cos(a), Y: (t - 0.5) * height, Z: radius * math.Sin(a)}
}

// SineSheet is a sheet displaced by a sine along X.
func SineSheet(rng Rand, wavelength, amplitude, width float64) r3.Vec {
	x := centered(rng, width)
	return r3.Vec{X: x, Y: amplitude * math.Sin(x/wavelength*math.Pi), Z: centered(rng, 10)}
}

// Funnel is a helix whose radius tapers to a fifth at the top.
func Funnel(rng Rand, height, baseRadius float64) r3.Vec {
	t := rng.Float64()
	r := baseRadius * (1 - t*0.8)
	a := t*6*math.Pi + rng.Float64()*0.5
	return r3.Vec{X: r * math.Cos(a), Y: (t - 0.5) * height, Z: r * math.Sin(a)}
}

// Volume is uniform in an axis-aligned box centered on the origin.
func Volume(rng Rand, width, height, depth float64) r3.Vec {
	return r3.Vec{X: centered(rng, width), Y: centered(rng, height), Z: centered(rng, depth)}
}

// SmileyFace mixes a face ring (70%), two eye patches (10% each) and a
// mouth arc (10%).
func SmileyFace(rng Rand, radius float64) r3.Vec {
	switch pick := rng.Float64(); {
	case pick < 0.7:
		a := rng.Float64() * 2 * math.Pi
		d := radius*0.9 + rng.Float64()*radius*0.2
		return r3.Vec{X: d * math.Cos(a), Y: d * math.Sin(a), Z: centered(rng, 2)}
	case pick < 0.8:
		return r3.Vec{
			X: -radius*0.35 + centered(rng, radius*0.15),
			Y: radius*0.25 + centered(rng, radius*0.15),
			Z: centered(rng, 1),
		}
	case pick < 0.9:
		return r3.Vec{
			X: radius*0.35 + centered(rng, radius*0.15),
			Y: radius*0.25 + centered(rng, radius*0.15),
			Z: centered(rng, 1),
		}
	default:
		a := math.Pi + rng.Float64()*math.Pi
		return r3.Vec{
			X: radius * 0.5 * math.Cos(a),
			Y: radius*0.5*math.Sin(a) - radius*0.1,
			Z: centered(rng, 1),
		}
	}
}

// Lemniscate samples the lemniscate of Bernoulli.
func Lemniscate(rng Rand, scale float64) r3.Vec {
	t := rng.Float64() * 2 * math.Pi
	s := math.Sin(t)
	d := 1 + s*s
	return r3.Vec{X: scale * math.Cos(t) / d, Y: scale * s * math.Cos(t) / d, Z: centered(rng, 2)}
}

// PeaceSign mixes the outer circle (60%), the vertical bar (15%) and the two
// lower diagonals (25%).
func PeaceSign(rng Rand, radius float64) r3.Vec {
	pick := rng.Float64()
	a := rng.Float64() * 2 * math.Pi
	switch {
	case pick < 0.6:
		return r3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: centered(rng, 2)}
	case pick < 0.75:
		return r3.Vec{X: centered(rng, 0.5), Y: centered(rng, radius*2), Z: centered(rng, 1)}
	default:
		s := side(rng)
		t := rng.Float64()
		return r3.Vec{X: s * t * radius * 0.7, Y: -t * radius, Z: centered(rng, 1)}
	}
}

// Whirlpool is a flat spiral that sinks with the square of its radius.
func Whirlpool(rng Rand, radius, depth float64) r3.Vec {
	a := rng.Float64() * 4 * math.Pi
	t := rng.Float64()
	r := radius * t
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: -depth * t * t}
}

// CubeSurface is uniform over the six faces of an axis-aligned cube.
func CubeSurface(rng Rand, size float64) r3.Vec {
	face := rng.IntN(6)
	half := size / 2
	u, v := centered(rng, size), centered(rng, size)
	fixed := half
	if face%2 == 1 {
		fixed = -half
	}
	switch face / 2 {
	case 0:
		return r3.Vec{X: fixed, Y: u, Z: v}
	case 1:
		return r3.Vec{X: u, Y: fixed, Z: v}
	default:
		return r3.Vec{X: u, Y: v, Z: fixed}
	}
}

// PyramidSurface samples a square base or one of four triangular sides
// rising to an apex, each with equal odds.
func PyramidSurface(rng Rand, size float64) r3.Vec {
	face := rng.IntN(5)
	half := size / 2
	if face == 0 {
		return r3.Vec{X: centered(rng, size), Y: -half, Z: centered(rng, size)}
	}
	t := rng.Float64()
	s := rng.Float64()
	a := float64(face-1) / 4 * 2 * math.Pi
	return r3.Vec{
		X: half * (1 - t) * math.Cos(a) * s,
		Y: -half + t*size,
		Z: half * (1 - t) * math.Sin(a) * s,
	}
}
