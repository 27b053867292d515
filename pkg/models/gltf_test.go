package models

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/orbitview/pkg/math3d"
)

// unitTriangleDoc builds a document with one triangle mesh instanced by the
// given nodes.
func unitTriangleDoc(nodes ...*gltf.Node) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	for i, n := range nodes {
		doc.Nodes = append(doc.Nodes, n)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, i)
	}
	return doc
}

func TestLoadGLBInvalidPath(t *testing.T) {
	if _, err := LoadGLB("/nonexistent/path.glb"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestGLTFBoundsWithTranslation(t *testing.T) {
	doc := unitTriangleDoc(&gltf.Node{Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}})

	info, err := NewGLTFLoader().LoadDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if !info.Bounds.Min.ApproxEqual(math3d.V3(10, 0, 0), 1e-6) || !info.Bounds.Max.ApproxEqual(math3d.V3(11, 1, 0), 1e-6) {
		t.Errorf("bounds = %+v", info.Bounds)
	}
	if info.Vertices != 3 || info.Triangles != 1 {
		t.Errorf("counts = %d/%d, want 3/1", info.Vertices, info.Triangles)
	}
}

func TestGLTFBoundsAcrossHierarchy(t *testing.T) {
	parent := &gltf.Node{Scale: [3]float64{2, 2, 2}, Children: []int{1}}
	child := &gltf.Node{Mesh: gltf.Index(0), Translation: [3]float64{0, 0, -1}}

	doc := unitTriangleDoc(parent)
	doc.Nodes = append(doc.Nodes, child)

	info, err := NewGLTFLoader().LoadDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	// Child translation is scaled by the parent.
	want := Bounds{Min: math3d.V3(0, 0, -2), Max: math3d.V3(2, 2, -2)}
	if !info.Bounds.Min.ApproxEqual(want.Min, 1e-6) || !info.Bounds.Max.ApproxEqual(want.Max, 1e-6) {
		t.Errorf("bounds = %+v, want %+v", info.Bounds, want)
	}
}

func TestGLTFNoMeshesIsDegenerate(t *testing.T) {
	doc := gltf.NewDocument()
	info, err := NewGLTFLoader().LoadDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if !info.Bounds.IsDegenerate() {
		t.Errorf("expected degenerate bounds, got %+v", info.Bounds)
	}
}

func TestGLBRoundTrip(t *testing.T) {
	doc := unitTriangleDoc(&gltf.Node{Mesh: gltf.Index(0)})
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary failed: %v", err)
	}

	info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if info.Format != FormatGLB {
		t.Errorf("format = %q", info.Format)
	}
	if got := info.Bounds.MaxDimension(); got != 1 {
		t.Errorf("max dimension = %v, want 1", got)
	}
}
