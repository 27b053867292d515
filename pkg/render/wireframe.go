package render

import (
	"github.com/taigrr/orbitview/pkg/math3d"
	"github.com/taigrr/orbitview/pkg/models"
)

// boxEdges indexes the corner order of models.Bounds.Corners: the four
// corners of the near face, then the far face.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

const (
	CornerRune = '+'
	TargetRune = 'o'
)

// edgeRune picks a line character that follows the slope on screen.
func edgeRune(x0, y0, x1, y1 int) rune {
	dx, dy := x1-x0, y1-y0
	switch {
	case abs(dy)*2 < abs(dx):
		return '-'
	case abs(dx)*2 < abs(dy):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// DrawBounds draws the 12 edges of b and marks its corners. Edges with an
// end behind the camera are skipped. It returns the number of edges drawn.
func DrawBounds(c *Canvas, b models.Bounds, p Projector) int {
	if !b.Valid() {
		return 0
	}

	var (
		pts     [8][2]int
		visible [8]bool
	)
	for i, corner := range b.Corners() {
		x, y, ok := p.Project(corner)
		pts[i] = [2]int{x, y}
		visible[i] = ok
	}

	drawn := 0
	for _, e := range boxEdges {
		a, z := e[0], e[1]
		if !visible[a] || !visible[z] {
			continue
		}
		x0, y0, x1, y1 := pts[a][0], pts[a][1], pts[z][0], pts[z][1]
		c.Line(x0, y0, x1, y1, edgeRune(x0, y0, x1, y1))
		drawn++
	}
	for i, pt := range pts {
		if visible[i] {
			c.Set(pt[0], pt[1], CornerRune)
		}
	}
	return drawn
}

// DrawMarker puts r at the projection of pt, if it is in front of the camera.
func DrawMarker(c *Canvas, pt math3d.Vec3, p Projector, r rune) bool {
	x, y, ok := p.Project(pt)
	if !ok || !c.inside(x, y) {
		return false
	}
	c.Set(x, y, r)
	return true
}
