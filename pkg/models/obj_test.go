package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/taigrr/orbitview/pkg/math3d"
)

func TestLoadSimpleOBJ(t *testing.T) {
	objData := `
# Simple triangle
v 0 0 0
v 1 0 0
v 0.5 1 0
f 1 2 3
`
	info, err := NewOBJLoader().Load(context.Background(), strings.NewReader(objData))
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}

	if info.Vertices != 3 {
		t.Errorf("expected 3 vertices, got %d", info.Vertices)
	}
	if info.Triangles != 1 {
		t.Errorf("expected 1 triangle, got %d", info.Triangles)
	}
	if info.Bounds.Max != math3d.V3(1, 1, 0) {
		t.Errorf("expected max bounds (1,1,0), got %v", info.Bounds.Max)
	}
}

func TestLoadCubeOBJ(t *testing.T) {
	objData := `
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
f 1 2 3 4
f 5 6 7 8
f 1 4 8 5
f 2 6 7 3
f 4 3 7 8
f 1 5 6 2
`
	info, err := NewOBJLoader().Load(context.Background(), strings.NewReader(objData))
	if err != nil {
		t.Fatalf("failed to load cube: %v", err)
	}

	// 6 quads, 2 triangles each
	if info.Triangles != 12 {
		t.Errorf("expected 12 triangles, got %d", info.Triangles)
	}

	expectedMin := math3d.V3(-0.5, -0.5, -0.5)
	expectedMax := math3d.V3(0.5, 0.5, 0.5)
	if info.Bounds.Min != expectedMin {
		t.Errorf("expected min bounds %v, got %v", expectedMin, info.Bounds.Min)
	}
	if info.Bounds.Max != expectedMax {
		t.Errorf("expected max bounds %v, got %v", expectedMax, info.Bounds.Max)
	}
	if got := info.Bounds.MaxDimension(); got != 1 {
		t.Errorf("expected max dimension 1, got %v", got)
	}
}

func TestOBJInvalidVertex(t *testing.T) {
	objData := "v 0 zero 0\n"

	_, err := NewOBJLoader().Load(context.Background(), strings.NewReader(objData))
	if err == nil {
		t.Fatal("expected error for malformed vertex")
	}

	lenient := &OBJLoader{Strict: false}
	info, err := lenient.Load(context.Background(), strings.NewReader(objData+"v 1 1 1\n"))
	if err != nil {
		t.Fatalf("lenient loader failed: %v", err)
	}
	if info.Vertices != 1 {
		t.Errorf("expected malformed vertex to be skipped, got %d vertices", info.Vertices)
	}
}

func TestOBJNoVerticesIsDegenerate(t *testing.T) {
	info, err := NewOBJLoader().Load(context.Background(), strings.NewReader("# empty\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Bounds.IsDegenerate() {
		t.Errorf("expected degenerate bounds for empty model, got %+v", info.Bounds)
	}
}

func TestOBJCancelled(t *testing.T) {
	var sb strings.Builder
	for range ctxCheckInterval * 2 {
		sb.WriteString("v 1 2 3\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOBJLoader().Load(ctx, strings.NewReader(sb.String()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
