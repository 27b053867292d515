package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/taigrr/orbitview/pkg/viewer"
)

// HUD renders an overlay with model info and the camera state
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Lines returns the top and bottom HUD rows, each at most width runes.
func (h *HUD) Lines(sess *viewer.Session, width int, status string) (top, bottom string) {
	left := fmt.Sprintf(" %.0f FPS", h.fps)

	var title string
	switch m := sess.Model(); {
	case sess.Loading():
		title = "loading..."
	case m != nil:
		title = fmt.Sprintf("%s  %d tris", filepath.Base(m.Path), m.Triangles)
		if sess.Restored() {
			title += "  (restored)"
		}
	case sess.LastError() != nil:
		title = "load failed"
	}

	right := status
	if right == "" {
		right = fmt.Sprintf("%d presets", len(sess.Presets()))
	}
	top = spread(width, left, title, right+" ")

	st := sess.Controller().Capture()
	bottom = spread(width,
		fmt.Sprintf(" r %.2f  az %.1f°  el %.1f°  target (%.2f, %.2f, %.2f)",
			st.Radius, degrees(st.Azimuth), degrees(st.Elevation), st.Target.X, st.Target.Y, st.Target.Z),
		"",
		"drag rotate  ctrl pan  alt zoom  ? hud ",
	)
	return top, bottom
}

// spread lays out left, center and right text on one row of width runes,
// dropping the center and then the right part when they do not fit.
func spread(width int, left, center, right string) string {
	lw, cw, rw := runeLen(left), runeLen(center), runeLen(right)
	if width <= 0 {
		return ""
	}
	if lw+cw+rw+2 > width {
		center, cw = "", 0
	}
	if lw+rw+1 > width {
		right, rw = "", 0
	}

	row := []rune(strings.Repeat(" ", width))
	copy(row, []rune(left))
	if cw > 0 {
		start := max((width-cw)/2, lw+1)
		copy(row[start:], []rune(center))
	}
	if rw > 0 {
		copy(row[width-rw:], []rune(right))
	}
	return string(row)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
