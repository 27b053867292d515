package render

import (
	"math"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// CellAspect is the width/height ratio of a terminal cell.
const CellAspect = 0.5

const (
	defaultFOV = math.Pi / 3
	nearPlane  = 0.05
	farPlane   = 200
)

// Projector maps world points onto canvas cells.
type Projector struct {
	View   math3d.Mat4
	Proj   math3d.Mat4
	Width  int
	Height int
}

// NewProjector builds a perspective projector for a canvas of the given
// size, compensating for non-square cells.
func NewProjector(view math3d.Mat4, width, height int) Projector {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) * CellAspect / float64(height)
	}
	return Projector{
		View:   view,
		Proj:   math3d.Perspective(defaultFOV, aspect, nearPlane, farPlane),
		Width:  width,
		Height: height,
	}
}

// Project returns the cell for p. ok is false when p is behind the near
// plane; points outside the canvas still project so lines can be clipped.
func (p Projector) Project(pt math3d.Vec3) (x, y int, ok bool) {
	clip := p.Proj.MulVec4(p.View.MulVec4(math3d.V4FromV3(pt, 1)))
	if clip.W <= nearPlane {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	fx := (ndc.X + 1) / 2 * float64(p.Width-1)
	fy := (1 - ndc.Y) / 2 * float64(p.Height-1)
	// Keep far off-screen points in int range.
	const limit = 1 << 20
	fx = math.Max(-limit, math.Min(limit, fx))
	fy = math.Max(-limit, math.Min(limit, fy))
	return int(math.Round(fx)), int(math.Round(fy)), true
}
