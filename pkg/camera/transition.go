package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/orbitview/pkg/math3d"
)

const (
	transitionFrequency = 6.0
	transitionDamping   = 1.0
	settleEpsilon       = 1e-4
)

// Transition eases from one state to another with a critically damped
// spring per component. Call Step once per frame until it reports done; the
// last state returned is exactly the destination, except that its azimuth
// may differ from the requested one by a whole turn.
type Transition struct {
	spring harmonica.Spring
	to     State

	pos, vel, goal [6]float64

	steps, maxSteps int
	done            bool
}

// NewTransition prepares an animation at fps frames per second. Azimuth
// takes the short way round.
func NewTransition(from, to State, fps int) *Transition {
	if fps <= 0 {
		fps = 60
	}
	// Ending on the unwrapped goal keeps the final frame continuous with the
	// one before it; the pose is the same either way.
	if d := to.Azimuth - from.Azimuth; d > math.Pi || d <= -math.Pi {
		to.Azimuth = from.Azimuth + wrapAngle(d)
	}
	goalAz := to.Azimuth
	return &Transition{
		spring: harmonica.NewSpring(harmonica.FPS(fps), transitionFrequency, transitionDamping),
		to:     to,
		pos: [6]float64{
			from.Radius, from.Azimuth, from.Elevation,
			from.Target.X, from.Target.Y, from.Target.Z,
		},
		goal: [6]float64{
			to.Radius, goalAz, to.Elevation,
			to.Target.X, to.Target.Y, to.Target.Z,
		},
		// Critically damped springs settle in well under five seconds.
		maxSteps: fps * 5,
	}
}

// Step advances one frame and returns the interpolated state.
func (t *Transition) Step() (State, bool) {
	if t.done {
		return t.to, true
	}
	t.steps++

	settled := true
	for i := range t.pos {
		t.pos[i], t.vel[i] = t.spring.Update(t.pos[i], t.vel[i], t.goal[i])
		if math.Abs(t.pos[i]-t.goal[i]) > settleEpsilon || math.Abs(t.vel[i]) > settleEpsilon {
			settled = false
		}
	}
	if settled || t.steps >= t.maxSteps {
		t.done = true
		return t.to, true
	}
	return State{
		Radius:    t.pos[0],
		Azimuth:   t.pos[1],
		Elevation: t.pos[2],
		Target:    math3d.V3(t.pos[3], t.pos[4], t.pos[5]),
	}, false
}

func (t *Transition) Done() bool {
	return t.done
}

// Target is the state the transition ends on.
func (t *Transition) Target() State {
	return t.to
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
