package models

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// binarySTL encodes triangles in binary STL layout.
func binarySTL(header string, tris [][3]math3d.Vec3) []byte {
	var buf bytes.Buffer
	h := make([]byte, stlHeaderSize)
	copy(h, header)
	buf.Write(h)
	binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 1})
		for _, v := range tri {
			binary.Write(&buf, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestLoadBinarySTL(t *testing.T) {
	data := binarySTL("binary", [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(2, 0, 0), math3d.V3(0, 3, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(1, 1, 4), math3d.V3(0, 0, 0)},
	})

	info, err := NewSTLLoader().LoadBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if info.Triangles != 2 || info.Vertices != 6 {
		t.Errorf("counts = %d triangles / %d vertices, want 2 / 6", info.Triangles, info.Vertices)
	}
	if info.Bounds.Min != math3d.V3(0, 0, -1) {
		t.Errorf("min = %v", info.Bounds.Min)
	}
	if info.Bounds.Max != math3d.V3(2, 3, 4) {
		t.Errorf("max = %v", info.Bounds.Max)
	}
}

func TestBinarySTLWithSolidHeader(t *testing.T) {
	// Some exporters write "solid" into the binary header.
	data := binarySTL("solid exported", [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	})
	if !isBinarySTL(data) {
		t.Fatal("expected binary detection by size for solid-prefixed header")
	}
}

func TestLoadASCIISTL(t *testing.T) {
	src := `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 -1
    outer loop
      vertex 0 0 -2
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`
	info, err := NewSTLLoader().LoadBytes(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if info.Triangles != 2 {
		t.Errorf("expected 2 triangles, got %d", info.Triangles)
	}
	if info.Bounds.Min.Z != -2 {
		t.Errorf("expected min Z -2, got %v", info.Bounds.Min.Z)
	}
}

func TestBinarySTLTruncated(t *testing.T) {
	data := binarySTL("x", [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	})
	// Claim more triangles than present.
	binary.LittleEndian.PutUint32(data[stlHeaderSize:], 5)

	if _, err := NewSTLLoader().LoadBytes(context.Background(), data); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.STL")
	data := binarySTL("part", [][3]math3d.Vec3{
		{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1), math3d.V3(0, 0, 0)},
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if info.Path != path || info.Format != FormatSTL {
		t.Errorf("unexpected info header: %+v", info)
	}
	if got := info.Bounds.MaxDimension(); math.Abs(got-2) > 1e-6 {
		t.Errorf("max dimension = %v, want 2", got)
	}
}
