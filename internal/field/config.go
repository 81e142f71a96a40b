package field

import (
	"errors"
	"fmt"

	"github.com/ayusman/particlehands/internal/shape"
)

// Config holds the field size and every force tunable. Distances are world
// units and coefficients are per frame.
type Config struct {
	Count        int    `yaml:"-"`
	InitialShape string `yaml:"initial_shape"`
	// Text is rasterized when the shape is set to "text".
	Text string `yaml:"text"`

	// Screen to world mapping of the hand center.
	FocusScaleX float64 `yaml:"focus_scale_x"`
	FocusScaleY float64 `yaml:"focus_scale_y"`
	// Hand velocity gains for the drag force.
	DragGainX float64 `yaml:"drag_gain_x"`
	DragGainY float64 `yaml:"drag_gain_y"`

	// Return spring coefficients.
	ReturnIdle float64 `yaml:"return_idle"`
	ReturnHand float64 `yaml:"return_hand"`
	ReturnDrag float64 `yaml:"return_drag"`
	ReturnFist float64 `yaml:"return_fist"`
	// DragSpeed is the scaled hand speed above which ReturnDrag applies.
	DragSpeed float64 `yaml:"drag_speed"`

	Friction     float64 `yaml:"friction"`
	FistFriction float64 `yaml:"fist_friction"`

	// RotationGain converts focus offset into rotation angle, in radians per
	// world unit.
	RotationGain float64 `yaml:"rotation_gain"`

	// Idle trail scatter half extents.
	ScatterX float64 `yaml:"scatter_x"`
	ScatterY float64 `yaml:"scatter_y"`
	ScatterZ float64 `yaml:"scatter_z"`

	ExplosionStep   float64 `yaml:"explosion_step"`
	ExplosionRadius float64 `yaml:"explosion_radius"`

	FistDeadZone float64 `yaml:"fist_dead_zone"`
	FistPull     float64 `yaml:"fist_pull"`

	OpenRadius   float64 `yaml:"open_radius"`
	OpenDragGain float64 `yaml:"open_drag_gain"`
	RepelRadius  float64 `yaml:"repel_radius"`
	RepelGain    float64 `yaml:"repel_gain"`

	PointRadius float64 `yaml:"point_radius"`
	PointBias   float64 `yaml:"point_bias"`

	PeaceWaveNumber float64 `yaml:"peace_wave_number"`
	PeaceFrequency  float64 `yaml:"peace_frequency"`
	PeaceGain       float64 `yaml:"peace_gain"`

	RockRadius float64 `yaml:"rock_radius"`
	RockSwirl  float64 `yaml:"rock_swirl"`

	ThumbRadius float64 `yaml:"thumb_radius"`
	ThumbLift   float64 `yaml:"thumb_lift"`

	// HueSpeed is how far the color cycle advances per frame, in turns.
	HueSpeed float64 `yaml:"hue_speed"`
	// TextJitter is the depth spread added to rasterized text targets.
	TextJitter float64 `yaml:"text_jitter"`
	// ReferenceHandSize is the hand size at which the guide marker has scale 1.
	ReferenceHandSize float64 `yaml:"reference_hand_size"`

	// ParallelThreshold is the particle count from which Update splits work
	// across Workers goroutines. Workers <= 0 means GOMAXPROCS.
	ParallelThreshold int `yaml:"parallel_threshold"`
	Workers           int `yaml:"workers"`

	// RasterizerName selects how text shapes are drawn: RasterizerFont or
	// RasterizerOpenCV. Callers building the field resolve it into Rasterizer.
	RasterizerName string `yaml:"rasterizer"`

	Rasterizer shape.Rasterizer `yaml:"-"`
	Rand       shape.Rand       `yaml:"-"`
}

// Text rasterizer names.
const (
	RasterizerFont   = "font"
	RasterizerOpenCV = "opencv"
)

// Upper bounds for the gesture force gains. Larger values fling particles
// out of view within a few frames.
const (
	maxGain     = 1.0
	maxDragGain = 10.0
)

// DefaultCount is the reference particle count.
const DefaultCount = 20000

// DefaultConfig returns the reference tunables.
func DefaultConfig() Config {
	return Config{
		Count:        DefaultCount,
		InitialShape: "trail",
		Text:         "HELLO",

		FocusScaleX: 20,
		FocusScaleY: 15,
		DragGainX:   40,
		DragGainY:   30,

		ReturnIdle: 0.05,
		ReturnHand: 0.03,
		ReturnDrag: 0.005,
		ReturnFist: 0.12,
		DragSpeed:  1,

		Friction:     0.92,
		FistFriction: 0.85,

		RotationGain: 0.15,

		ScatterX: 35,
		ScatterY: 25,
		ScatterZ: 15,

		ExplosionStep:   0.02,
		ExplosionRadius: shape.ExplosionRadius,

		FistDeadZone: 2,
		FistPull:     0.02,

		OpenRadius:   12,
		OpenDragGain: 3,
		RepelRadius:  4,
		RepelGain:    0.1,

		PointRadius: 10,
		PointBias:   0.05,

		PeaceWaveNumber: 1,
		PeaceFrequency:  4,
		PeaceGain:       0.05,

		RockRadius: 15,
		RockSwirl:  0.08,

		ThumbRadius: 10,
		ThumbLift:   0.04,

		HueSpeed:          0.005,
		TextJitter:        1,
		ReferenceHandSize: 0.15,

		ParallelThreshold: 4096,
		RasterizerName:    RasterizerFont,
	}
}

// Validate checks the tunables that would make the simulation diverge or
// divide by zero.
func (c Config) Validate() error {
	var errs []error
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("count %d must be at least 1", c.Count))
	}
	for name, f := range map[string]float64{"friction": c.Friction, "fist_friction": c.FistFriction} {
		if f <= 0 || f >= 1 {
			errs = append(errs, fmt.Errorf("%s %v must be in (0,1)", name, f))
		}
	}
	for name, r := range map[string]float64{
		"return_idle": c.ReturnIdle,
		"return_hand": c.ReturnHand,
		"return_drag": c.ReturnDrag,
		"return_fist": c.ReturnFist,
	} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("%s %v must be in [0,1]", name, r))
		}
	}
	if c.ExplosionStep <= 0 {
		errs = append(errs, fmt.Errorf("explosion_step %v must be positive", c.ExplosionStep))
	}
	for name, r := range map[string]float64{
		"open_radius":  c.OpenRadius,
		"point_radius": c.PointRadius,
		"rock_radius":  c.RockRadius,
		"thumb_radius": c.ThumbRadius,
	} {
		if r <= 0 {
			errs = append(errs, fmt.Errorf("%s %v must be positive", name, r))
		}
	}
	for name, g := range map[string]float64{
		"fist_pull":  c.FistPull,
		"repel_gain": c.RepelGain,
		"point_bias": c.PointBias,
		"peace_gain": c.PeaceGain,
		"rock_swirl": c.RockSwirl,
		"thumb_lift": c.ThumbLift,
	} {
		if g < 0 || g > maxGain {
			errs = append(errs, fmt.Errorf("%s %v must be in [0,%v]", name, g, maxGain))
		}
	}
	if c.OpenDragGain < 0 || c.OpenDragGain > maxDragGain {
		errs = append(errs, fmt.Errorf("open_drag_gain %v must be in [0,%v]", c.OpenDragGain, maxDragGain))
	}
	switch c.RasterizerName {
	case "", RasterizerFont, RasterizerOpenCV:
	default:
		errs = append(errs, fmt.Errorf("unknown rasterizer %q", c.RasterizerName))
	}
	return errors.Join(errs...)
}
