// Package camera implements an orbit camera: a camera on a sphere around a
// target point, steered by pointer deltas and framed from model bounds.
package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// State is the complete, comparable description of where the camera is.
type State struct {
	Radius    float64
	Azimuth   float64
	Elevation float64
	Target    math3d.Vec3
}

// Pose is the camera transform derived from a State.
type Pose struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	// LookAt is the unit direction from Position toward Target.
	LookAt math3d.Vec3
}

// Pose derives position and viewing direction from the spherical parameters.
func (s State) Pose() Pose {
	cosE, sinE := math.Cos(s.Elevation), math.Sin(s.Elevation)
	cosA, sinA := math.Cos(s.Azimuth), math.Sin(s.Azimuth)

	offset := math3d.V3(cosE*sinA, sinE, cosE*cosA).Scale(s.Radius)
	return Pose{
		Position: s.Target.Add(offset),
		Target:   s.Target,
		LookAt:   offset.Negate().Normalize(),
	}
}

// Validate reports values no controller could have produced.
func (s State) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"radius", s.Radius}, {"azimuth", s.Azimuth}, {"elevation", s.Elevation}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if !s.Target.IsFinite() {
		return errors.New("target is not finite")
	}
	if s.Radius <= 0 {
		return fmt.Errorf("radius %v must be positive", s.Radius)
	}
	return nil
}

func (s State) String() string {
	return fmt.Sprintf("r=%.3f az=%.3f el=%.3f target=(%.3f, %.3f, %.3f)",
		s.Radius, s.Azimuth, s.Elevation, s.Target.X, s.Target.Y, s.Target.Z)
}

// stateJSON is the persisted layout; the target is a three element array.
type stateJSON struct {
	Radius    *float64  `json:"radius"`
	Azimuth   *float64  `json:"azimuth"`
	Elevation *float64  `json:"elevation"`
	Target    []float64 `json:"target"`
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Radius:    &s.Radius,
		Azimuth:   &s.Azimuth,
		Elevation: &s.Elevation,
		Target:    []float64{s.Target.X, s.Target.Y, s.Target.Z},
	})
}

// UnmarshalJSON requires every field; a partial record is malformed.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Radius == nil || raw.Azimuth == nil || raw.Elevation == nil || raw.Target == nil {
		return errors.New("camera state: missing field")
	}
	if len(raw.Target) != 3 {
		return fmt.Errorf("camera state: target has %d components, want 3", len(raw.Target))
	}
	*s = State{
		Radius:    *raw.Radius,
		Azimuth:   *raw.Azimuth,
		Elevation: *raw.Elevation,
		Target:    math3d.V3(raw.Target[0], raw.Target[1], raw.Target[2]),
	}
	return nil
}
