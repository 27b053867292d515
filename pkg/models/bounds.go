// Package models reads 3D model files far enough to report what the camera
// needs: an axis-aligned bounding box plus a few counts for the info pane.
package models

import (
	"math"
	"path/filepath"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// Bounds is an axis-aligned bounding box in model space.
type Bounds struct {
	Min math3d.Vec3 `json:"min"`
	Max math3d.Vec3 `json:"max"`
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// Extend grows the box to include p.
func (b Bounds) Extend(p math3d.Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if !o.Valid() {
		return b
	}
	if !b.Valid() {
		return o
	}
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Valid reports whether the box has finite corners with Min <= Max on every axis.
func (b Bounds) Valid() bool {
	return b.Min.IsFinite() && b.Max.IsFinite() &&
		b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the center of the bounding box.
func (b Bounds) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxDimension returns the largest extent of the box.
func (b Bounds) MaxDimension() float64 {
	return b.Size().MaxComponent()
}

// IsDegenerate reports whether the box cannot be framed: invalid, or zero
// extent on every axis.
func (b Bounds) IsDegenerate() bool {
	if !b.Valid() {
		return true
	}
	return !(b.MaxDimension() > 0)
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]math3d.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
}

// Transform returns the axis-aligned box enclosing b after m is applied.
func (b Bounds) Transform(m math3d.Mat4) Bounds {
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.Extend(m.MulVec3(c))
	}
	return out
}

// Dimensions is the summary shown next to the viewer.
type Dimensions struct {
	Filename string  `json:"filename"`
	Height   float64 `json:"height"`
	Diameter float64 `json:"diameter"`
}

// Info describes a loaded model.
type Info struct {
	Path      string `json:"path"`
	Format    Format `json:"format"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
	Bounds    Bounds `json:"bounds"`
}

// Dimensions reports height (Y extent) and diameter (the wider of the X and Z
// extents) for the model.
func (i Info) Dimensions() Dimensions {
	size := i.Bounds.Size()
	d := Dimensions{Filename: filepath.Base(i.Path)}
	if i.Bounds.Valid() {
		d.Height = size.Y
		d.Diameter = math.Max(size.X, size.Z)
	}
	return d
}
