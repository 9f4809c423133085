// Package anim advances the triangle transform once per frame.
//
// Offset and scale are bounce oscillators: they move by a fixed step and
// reverse when they reach a bound. The angle accumulates and wraps at 360°.
package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Bounds are considered reached within this fraction of a step, so float
// accumulation cannot delay a flip by one frame.
const boundTolerance = 1e-3

type Config struct {
	Increment float64 `yaml:"increment"`
	MaxOffset float64 `yaml:"max_offset"`

	Rotate    bool    `yaml:"rotate"`
	AngleStep float64 `yaml:"angle_step"`

	Scale        bool    `yaml:"scale"`
	ScaleStep    float64 `yaml:"scale_step"`
	MinScale     float64 `yaml:"min_scale"`
	MaxScale     float64 `yaml:"max_scale"`
	InitialScale float64 `yaml:"initial_scale"`
	ScaleY       float64 `yaml:"scale_y"`

	// Coupled drives the scale with the offset direction flag instead of
	// its own. The scale then only clamps at the band edges.
	Coupled bool `yaml:"coupled"`
}

func DefaultConfig() Config {
	return Config{
		Increment:    0.0005,
		MaxOffset:    0.7,
		Rotate:       true,
		AngleStep:    0.01,
		Scale:        true,
		ScaleStep:    0.0001,
		MinScale:     0.1,
		MaxScale:     0.8,
		InitialScale: 0.4,
		ScaleY:       0.4,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Increment <= 0:
		return errors.Errorf("offset increment must be positive, got %v", c.Increment)
	case c.MaxOffset <= 0:
		return errors.Errorf("max offset must be positive, got %v", c.MaxOffset)
	case c.ScaleStep < 0:
		return errors.Errorf("scale step must not be negative, got %v", c.ScaleStep)
	case c.MinScale > c.MaxScale:
		return errors.Errorf("scale band [%v, %v] is empty", c.MinScale, c.MaxScale)
	case c.InitialScale < c.MinScale || c.InitialScale > c.MaxScale:
		return errors.Errorf("initial scale %v is outside [%v, %v]", c.InitialScale, c.MinScale, c.MaxScale)
	}
	return nil
}

// State is the animated part of the transform.
type State struct {
	Offset float64
	Angle  float64 // degrees, [0, 360)
	Scale  float64

	Forward bool // offset moves towards +MaxOffset
	Growing bool // scale moves towards MaxScale, unused when coupled

	Frame uint64
}

func (c Config) Initial() State {
	return State{
		Scale:   c.InitialScale,
		Forward: true,
		Growing: true,
	}
}

// Step returns the state one frame later.
func (c Config) Step(s State) State {
	s.Frame++

	s.Offset, s.Forward = bounce(s.Offset, c.Increment, -c.MaxOffset, c.MaxOffset, s.Forward)

	if c.Rotate {
		s.Angle = math.Mod(s.Angle+c.AngleStep, 360)
		if s.Angle < 0 {
			s.Angle += 360
		}
	}

	if c.Scale {
		if c.Coupled {
			if s.Forward {
				s.Scale += c.ScaleStep
			} else {
				s.Scale -= c.ScaleStep
			}
			s.Scale = math.Max(c.MinScale, math.Min(c.MaxScale, s.Scale))
		} else {
			s.Scale, s.Growing = bounce(s.Scale, c.ScaleStep, c.MinScale, c.MaxScale, s.Growing)
		}
	}
	return s
}

func (c Config) StepN(s State, n int) State {
	for i := 0; i < n; i++ {
		s = c.Step(s)
	}
	return s
}

// Matrix builds the model matrix of s.
func (c Config) Matrix(s State) mgl32.Mat4 {
	return ModelMatrix(
		mgl32.Vec3{float32(s.Offset), 0, 0},
		float32(s.Angle),
		mgl32.Vec3{float32(s.Scale), float32(c.ScaleY), 1},
	)
}

// ModelMatrix composes translate * rotateZ * scale, so local points are
// scaled first, then rotated, then translated.
func ModelMatrix(offset mgl32.Vec3, angleDeg float32, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(offset.X(), offset.Y(), offset.Z()).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(angleDeg))).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

func bounce(v, step, lo, hi float64, up bool) (float64, bool) {
	tol := step * boundTolerance
	if up {
		v += step
		if v >= hi-tol {
			return hi, false
		}
	} else {
		v -= step
		if v <= lo+tol {
			return lo, true
		}
	}
	return v, up
}

// Animator owns a State and advances it in place.
type Animator struct {
	cfg   Config
	state State
}

func New(cfg Config) *Animator {
	return &Animator{cfg: cfg, state: cfg.Initial()}
}

func (a *Animator) Config() Config { return a.cfg }
func (a *Animator) State() State   { return a.state }

func (a *Animator) Advance() State {
	a.state = a.cfg.Step(a.state)
	return a.state
}

func (a *Animator) AdvanceN(n int) State {
	a.state = a.cfg.StepN(a.state, n)
	return a.state
}

func (a *Animator) Matrix() mgl32.Mat4 {
	return a.cfg.Matrix(a.state)
}
