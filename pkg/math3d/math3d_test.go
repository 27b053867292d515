package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	if got := a.Add(b); got != V3(5, 7, 9) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != V3(3, 3, 3) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := V3(1, 0, 0).Cross(V3(0, 1, 0)); got != V3(0, 0, 1) {
		t.Errorf("Cross = %v, want +Z", got)
	}
	if got := a.Min(V3(0, 5, 1)); got != V3(0, 2, 1) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(V3(0, 5, 1)); got != V3(1, 5, 3) {
		t.Errorf("Max = %v", got)
	}
	if got := V3(3, 4, 0).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("Normalize(zero) = %v", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if V3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
}

func TestMat4TranslateScale(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(Scale(V3(2, 2, 2)))
	got := m.MulVec3(V3(1, 1, 1))
	if !got.ApproxEqual(V3(3, 4, 5), eps) {
		t.Errorf("scale then translate = %v, want (3,4,5)", got)
	}
	dir := m.MulVec3Dir(V3(1, 0, 0))
	if !dir.ApproxEqual(V3(2, 0, 0), eps) {
		t.Errorf("direction ignores translation: got %v", dir)
	}
}

func TestQuatToMat4(t *testing.T) {
	// 90 degrees around Y maps +X to -Z.
	half := math.Pi / 4
	m := QuatToMat4(0, math.Sin(half), 0, math.Cos(half))
	got := m.MulVec3(V3(1, 0, 0))
	if !got.ApproxEqual(V3(0, 0, -1), 1e-9) {
		t.Errorf("rotated +X = %v, want (0,0,-1)", got)
	}
	if r := RotateY(math.Pi / 2).MulVec3(V3(1, 0, 0)); !r.ApproxEqual(got, 1e-9) {
		t.Errorf("RotateY disagrees with quaternion: %v vs %v", r, got)
	}
}

func TestMat4FromSliceColumnMajor(t *testing.T) {
	// glTF stores translation in elements 12..14.
	s := []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 7, 8, 9, 1}
	m := Mat4FromSlice(s)
	if got := m.MulVec3(Zero3()); got != V3(7, 8, 9) {
		t.Errorf("translation = %v, want (7,8,9)", got)
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(V3(0, 0, 5), Zero3(), Up())
	// The target lands on the view axis, 5 units in front (-Z).
	got := view.MulVec3(Zero3())
	if !got.ApproxEqual(V3(0, 0, -5), eps) {
		t.Errorf("target in view space = %v, want (0,0,-5)", got)
	}
	// The eye maps to the origin.
	if eye := view.MulVec3(V3(0, 0, 5)); !eye.ApproxEqual(Zero3(), eps) {
		t.Errorf("eye in view space = %v", eye)
	}
}

func TestPerspectiveCenter(t *testing.T) {
	proj := Perspective(math.Pi/3, 1, 0.1, 100)
	clip := proj.MulVec4(V4(0, 0, -5, 1))
	ndc := clip.PerspectiveDivide()
	if math.Abs(ndc.X) > eps || math.Abs(ndc.Y) > eps {
		t.Errorf("point on axis should project to center, got %v", ndc)
	}
	if ndc.Z <= -1 || ndc.Z >= 1 {
		t.Errorf("depth out of range: %v", ndc.Z)
	}
}
