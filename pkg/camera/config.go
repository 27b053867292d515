package camera

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// FramingPolicy decides who absorbs a model's size when it is auto-fit.
type FramingPolicy int

const (
	// FramingCamera moves the camera: radius = maxDimension * extent / 4 and
	// the target sits on the bounds center, so larger models are viewed from
	// further away.
	FramingCamera FramingPolicy = iota
	// FramingModel scales the model by extent / maxDimension, recenters it at
	// the origin and parks the camera at FixedFramingRadius.
	FramingModel
)

func (p FramingPolicy) String() string {
	if p == FramingModel {
		return "model"
	}
	return "camera"
}

func ParseFramingPolicy(s string) (FramingPolicy, error) {
	switch strings.ToLower(s) {
	case "", "camera":
		return FramingCamera, nil
	case "model":
		return FramingModel, nil
	}
	return FramingCamera, fmt.Errorf("unknown framing policy %q (want camera or model)", s)
}

// CapturePolicy decides when the reset radius is recorded.
type CapturePolicy int

const (
	// CaptureOnFit records the auto-fit radius as the reset radius.
	CaptureOnFit CapturePolicy = iota
	// CaptureOnFirstZoom records the radius in effect at the first zoom after
	// a load. Reset before any zoom falls back to FallbackRadius.
	CaptureOnFirstZoom
)

func (p CapturePolicy) String() string {
	if p == CaptureOnFirstZoom {
		return "first-zoom"
	}
	return "fit"
}

func ParseCapturePolicy(s string) (CapturePolicy, error) {
	switch strings.ToLower(s) {
	case "", "fit":
		return CaptureOnFit, nil
	case "first-zoom", "zoom":
		return CaptureOnFirstZoom, nil
	}
	return CaptureOnFit, fmt.Errorf("unknown capture policy %q (want fit or first-zoom)", s)
}

// Config holds the tunables of a Controller.
type Config struct {
	// Per-pixel sensitivities.
	RotateSensitivity float64
	PanSensitivity    float64
	ZoomSensitivity   float64

	MinRadius float64
	MaxRadius float64
	// Unbounded drops MaxRadius for close inspection of large scenes.
	Unbounded bool

	// Elevation is held within [-π/2+ElevationEpsilon, π/2-ElevationEpsilon].
	ElevationEpsilon float64

	// FallbackRadius is used when no reset radius is known and when auto-fit
	// gets bounds it cannot frame.
	FallbackRadius     float64
	FixedFramingRadius float64

	HomeAzimuth   float64
	HomeElevation float64
	HomeTarget    math3d.Vec3

	FitAzimuth   float64
	FitElevation float64

	Framing FramingPolicy
	Capture CapturePolicy
}

func DefaultConfig() Config {
	return Config{
		RotateSensitivity:  0.005,
		PanSensitivity:     0.002,
		ZoomSensitivity:    0.01,
		MinRadius:          0.1,
		MaxRadius:          15.0,
		ElevationEpsilon:   0.01,
		FallbackRadius:     2.0,
		FixedFramingRadius: 5.0,
		HomeAzimuth:        0,
		HomeElevation:      math.Pi / 6,
		FitAzimuth:         math.Pi / 4,
		FitElevation:       math.Pi / 6,
	}
}

// Validate rejects configurations that would break the clamps.
func (c Config) Validate() error {
	switch {
	case !(c.MinRadius > 0):
		return fmt.Errorf("min radius %v must be positive", c.MinRadius)
	case !c.Unbounded && !(c.MaxRadius >= c.MinRadius):
		return fmt.Errorf("max radius %v below min radius %v", c.MaxRadius, c.MinRadius)
	case !(c.ElevationEpsilon > 0 && c.ElevationEpsilon < math.Pi/2):
		return fmt.Errorf("elevation epsilon %v out of range", c.ElevationEpsilon)
	case !(c.FallbackRadius > 0):
		return fmt.Errorf("fallback radius %v must be positive", c.FallbackRadius)
	case !(c.FixedFramingRadius > 0):
		return fmt.Errorf("framing radius %v must be positive", c.FixedFramingRadius)
	}
	return nil
}

func (c Config) maxElevation() float64 {
	return math.Pi/2 - c.ElevationEpsilon
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

func WithFraming(p FramingPolicy) Option {
	return func(c *Controller) {
		c.cfg.Framing = p
	}
}

func WithCapturePolicy(p CapturePolicy) Option {
	return func(c *Controller) {
		c.cfg.Capture = p
	}
}

// WithUnbounded removes the upper radius clamp.
func WithUnbounded() Option {
	return func(c *Controller) {
		c.cfg.Unbounded = true
	}
}

// WithState sets the initial state; it is clamped like any applied state.
func WithState(s State) Option {
	return func(c *Controller) {
		c.initial = &s
	}
}
