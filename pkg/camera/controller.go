package camera

import (
	"errors"
	"math"

	"github.com/taigrr/orbitview/pkg/math3d"
	"github.com/taigrr/orbitview/pkg/models"
)

// ErrDegenerateBounds is reported by AutoFit for boxes with no usable extent.
var ErrDegenerateBounds = errors.New("degenerate model bounds")

// fitReferenceExtent is the viewport extent at which camera framing puts the
// camera at a distance equal to the model's largest dimension. A unit cube
// (maxDimension 2) in the default extent of 4 lands at radius 2.
const fitReferenceExtent = 4.0

// Controller owns the live camera state. It is not safe for concurrent use;
// all calls are expected from the goroutine that handles input events.
type Controller struct {
	cfg     Config
	state   State
	initial *State

	defaultRadius float64
	hasDefault    bool

	observers []func(Pose)
}

// FitResult reports what AutoFit did.
type FitResult struct {
	State        State
	Center       math3d.Vec3
	MaxDimension float64
	// ModelScale is the factor the renderer applies to the model. It is 1
	// unless the framing policy scales the model.
	ModelScale float64
	// Framing is the policy actually applied. Degenerate bounds always fall
	// back to FramingCamera since the model is neither moved nor scaled.
	Framing FramingPolicy
	// Err is ErrDegenerateBounds when the fallback radius was used.
	Err error
}

// NewController creates a controller at the home pose with FallbackRadius.
func NewController(options ...Option) *Controller {
	c := &Controller{cfg: DefaultConfig()}
	for _, option := range options {
		option(c)
	}
	c.state = c.HomeState()
	if c.initial != nil {
		c.state = c.sanitize(*c.initial)
		c.initial = nil
	}
	return c
}

func (c *Controller) Config() Config {
	return c.cfg
}

// OnChange registers fn to receive the pose after every mutation.
func (c *Controller) OnChange(fn func(Pose)) {
	c.observers = append(c.observers, fn)
}

func (c *Controller) changed() {
	if len(c.observers) == 0 {
		return
	}
	pose := c.state.Pose()
	for _, fn := range c.observers {
		fn(pose)
	}
}

// Pose returns the derived camera transform.
func (c *Controller) Pose() Pose {
	return c.state.Pose()
}

// ViewMatrix returns the right-handed look-at matrix for the current pose.
func (c *Controller) ViewMatrix() math3d.Mat4 {
	p := c.state.Pose()
	return math3d.LookAt(p.Position, p.Target, math3d.Up())
}

// Capture returns a copy of the live state.
func (c *Controller) Capture() State {
	return c.state
}

// Apply replaces the live state wholesale. Values are clamped; non-finite
// components are replaced with their home values.
func (c *Controller) Apply(s State) {
	c.state = c.sanitize(s)
	c.changed()
}

// DefaultRadius returns the reset radius, if one has been recorded.
func (c *Controller) DefaultRadius() (float64, bool) {
	return c.defaultRadius, c.hasDefault
}

// Drag dispatches a pointer delta to the operation for mode.
func (c *Controller) Drag(mode Mode, dx, dy float64) {
	switch mode {
	case ModePan:
		c.Pan(dx, dy)
	case ModeZoom:
		c.Zoom(dy)
	default:
		c.Rotate(dx, dy)
	}
}

// Rotate orbits the camera. Positive dx swings it left around the target,
// positive dy (pointer moving down) raises it.
func (c *Controller) Rotate(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	c.state.Azimuth -= dx * c.cfg.RotateSensitivity
	c.state.Elevation = c.clampElevation(c.state.Elevation + dy*c.cfg.RotateSensitivity)
	c.changed()
}

// Pan slides the target in the camera's horizontal right axis and world up.
// The scene follows the pointer.
func (c *Controller) Pan(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	a := c.state.Azimuth - math.Pi/2
	right := math3d.V3(math.Sin(a), 0, math.Cos(a))
	s := c.cfg.PanSensitivity
	c.state.Target = c.state.Target.
		Add(right.Scale(dx * s)).
		Add(math3d.Up().Scale(dy * s))
	c.changed()
}

// Zoom changes the radius. Positive dy moves the camera away.
func (c *Controller) Zoom(dy float64) {
	if !finite(dy) {
		return
	}
	if c.cfg.Capture == CaptureOnFirstZoom && !c.hasDefault {
		c.defaultRadius, c.hasDefault = c.state.Radius, true
	}
	c.state.Radius = c.clampRadius(c.state.Radius + dy*c.cfg.ZoomSensitivity)
	c.changed()
}

// HomeState is the state Reset moves to.
func (c *Controller) HomeState() State {
	r := c.cfg.FallbackRadius
	if c.hasDefault {
		r = c.defaultRadius
	}
	return State{
		Radius:    c.clampRadius(r),
		Azimuth:   c.cfg.HomeAzimuth,
		Elevation: c.clampElevation(c.cfg.HomeElevation),
		Target:    c.cfg.HomeTarget,
	}
}

// Reset returns to the home pose at the recorded reset radius.
func (c *Controller) Reset() {
	c.state = c.HomeState()
	c.changed()
}

// AutoFit frames bounds in a viewport of the given extent and records the
// reset radius according to the capture policy. Bounds that cannot be framed
// yield FallbackRadius and ErrDegenerateBounds; the camera is still moved.
func (c *Controller) AutoFit(bounds models.Bounds, viewportExtent float64) FitResult {
	res := FitResult{
		Center:       bounds.Center(),
		MaxDimension: bounds.MaxDimension(),
		ModelScale:   1,
		Framing:      FramingCamera,
	}
	next := State{
		Azimuth:   c.cfg.FitAzimuth,
		Elevation: c.clampElevation(c.cfg.FitElevation),
	}

	switch {
	case bounds.IsDegenerate() || !(viewportExtent > 0) || !finite(viewportExtent):
		res.Err = ErrDegenerateBounds
		next.Radius = c.cfg.FallbackRadius
		next.Target = c.cfg.HomeTarget
		if bounds.Valid() && res.Center.IsFinite() {
			next.Target = res.Center
		}
		if !finite(res.MaxDimension) {
			res.MaxDimension = 0
		}
	case c.cfg.Framing == FramingModel:
		res.ModelScale = viewportExtent / res.MaxDimension
		res.Framing = FramingModel
		next.Radius = c.cfg.FixedFramingRadius
		next.Target = math3d.Zero3()
	default:
		next.Radius = res.MaxDimension * viewportExtent / fitReferenceExtent
		next.Target = res.Center
	}
	next.Radius = c.clampRadius(next.Radius)

	if c.cfg.Capture == CaptureOnFit {
		c.defaultRadius, c.hasDefault = next.Radius, true
	} else {
		c.defaultRadius, c.hasDefault = 0, false
	}

	c.state = next
	res.State = next
	c.changed()
	return res
}

func (c *Controller) sanitize(s State) State {
	home := c.HomeState()
	if !finite(s.Radius) {
		s.Radius = home.Radius
	}
	if !finite(s.Azimuth) {
		s.Azimuth = home.Azimuth
	}
	if !finite(s.Elevation) {
		s.Elevation = home.Elevation
	}
	if !finite(s.Target.X) {
		s.Target.X = home.Target.X
	}
	if !finite(s.Target.Y) {
		s.Target.Y = home.Target.Y
	}
	if !finite(s.Target.Z) {
		s.Target.Z = home.Target.Z
	}
	s.Radius = c.clampRadius(s.Radius)
	s.Elevation = c.clampElevation(s.Elevation)
	return s
}

func (c *Controller) clampRadius(r float64) float64 {
	if !finite(r) {
		r = c.cfg.FallbackRadius
	}
	r = math.Max(r, c.cfg.MinRadius)
	if !c.cfg.Unbounded {
		r = math.Min(r, c.cfg.MaxRadius)
	}
	return r
}

func (c *Controller) clampElevation(e float64) float64 {
	limit := c.cfg.maxElevation()
	return math.Max(-limit, math.Min(limit, e))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
