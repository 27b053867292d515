// Package render draws orbitview's terminal preview: a projected wireframe
// of the model bounds on a grid of character cells.
package render

import (
	"strings"
	"unicode/utf8"
)

// Canvas is a fixed-size grid of runes, row major, origin top left.
type Canvas struct {
	Width  int
	Height int
	cells  []rune
}

// NewCanvas creates a new canvas filled with spaces.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize changes the canvas dimensions and clears it.
func (c *Canvas) Resize(width, height int) {
	c.Width, c.Height = max(width, 0), max(height, 0)
	c.cells = make([]rune, c.Width*c.Height)
	c.Clear()
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = ' '
	}
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

// Set writes r at (x, y); out of range writes are dropped.
func (c *Canvas) Set(x, y int, r rune) {
	if c.inside(x, y) {
		c.cells[y*c.Width+x] = r
	}
}

// At returns the rune at (x, y), or 0 when out of range.
func (c *Canvas) At(x, y int) rune {
	if !c.inside(x, y) {
		return 0
	}
	return c.cells[y*c.Width+x]
}

// Text writes s left to right starting at (x, y), clipped to the row.
func (c *Canvas) Text(x, y int, s string) {
	for _, r := range s {
		c.Set(x, y, r)
		x++
	}
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm after
// clipping the segment to the canvas.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune) {
	var ok bool
	if x0, y0, x1, y1, ok = c.clip(x0, y0, x1, y1); !ok {
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, r)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Cohen-Sutherland outcodes.
const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

func (c *Canvas) outcode(x, y int) int {
	code := 0
	switch {
	case x < 0:
		code |= outLeft
	case x >= c.Width:
		code |= outRight
	}
	switch {
	case y < 0:
		code |= outTop
	case y >= c.Height:
		code |= outBottom
	}
	return code
}

func (c *Canvas) clip(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	if c.Width == 0 || c.Height == 0 {
		return 0, 0, 0, 0, false
	}
	fx0, fy0, fx1, fy1 := float64(x0), float64(y0), float64(x1), float64(y1)
	xmax, ymax := float64(c.Width-1), float64(c.Height-1)
	code0, code1 := c.outcode(x0, y0), c.outcode(x1, y1)

	for {
		switch {
		case code0|code1 == 0:
			return int(fx0 + 0.5), int(fy0 + 0.5), int(fx1 + 0.5), int(fy1 + 0.5), true
		case code0&code1 != 0:
			return 0, 0, 0, 0, false
		}

		out := code0
		if out == 0 {
			out = code1
		}
		var x, y float64
		switch {
		case out&outBottom != 0:
			x, y = fx0+(fx1-fx0)*(ymax-fy0)/(fy1-fy0), ymax
		case out&outTop != 0:
			x, y = fx0+(fx1-fx0)*(0-fy0)/(fy1-fy0), 0
		case out&outRight != 0:
			x, y = xmax, fy0+(fy1-fy0)*(xmax-fx0)/(fx1-fx0)
		default:
			x, y = 0, fy0+(fy1-fy0)*(0-fx0)/(fx1-fx0)
		}

		if out == code0 {
			fx0, fy0 = x, y
			code0 = c.outcode(int(x+0.5), int(y+0.5))
		} else {
			fx1, fy1 = x, y
			code1 = c.outcode(int(x+0.5), int(y+0.5))
		}
	}
}

// String renders the canvas as newline separated rows with trailing spaces
// kept, so each row is exactly Width cells.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.Height * (c.Width*utf8.UTFMax + 1))
	for y := range c.Height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range c.cells[y*c.Width : (y+1)*c.Width] {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Row returns row y as a string.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.Height {
		return ""
	}
	return string(c.cells[y*c.Width : (y+1)*c.Width])
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
