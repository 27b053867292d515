package models

import (
	"context"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/orbitview/pkg/math3d"
)

// GLTFLoader reads glTF and GLB files. Bounds come from the POSITION
// accessors' min/max (required by the glTF spec); accessors missing them
// are read vertex by vertex.
type GLTFLoader struct {
	// Scene overrides the document's default scene when non-negative.
	Scene int
}

// NewGLTFLoader creates a new glTF loader that uses the default scene.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{Scene: -1}
}

// LoadGLB is a convenience wrapper for a one-off glTF/GLB load.
func LoadGLB(path string) (*Info, error) {
	return NewGLTFLoader().LoadFile(context.Background(), path)
}

// LoadFile opens a glTF/GLB file; external buffers are resolved relative to it.
func (l *GLTFLoader) LoadFile(ctx context.Context, path string) (*Info, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	info, err := l.LoadDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	if FormatOf(path) == FormatGLTF {
		info.Format = FormatGLTF
	}
	return info, nil
}

// LoadDocument walks the scene graph of an already decoded document.
func (l *GLTFLoader) LoadDocument(ctx context.Context, doc *gltf.Document) (*Info, error) {
	w := &gltfWalker{ctx: ctx, doc: doc, info: &Info{Format: FormatGLB, Bounds: EmptyBounds()}}

	for _, nodeIdx := range l.rootNodes(doc) {
		if err := w.node(nodeIdx, math3d.Identity()); err != nil {
			return nil, err
		}
	}
	if !w.info.Bounds.Valid() {
		w.info.Bounds = Bounds{}
	}
	return w.info, nil
}

// rootNodes returns the nodes of the selected scene, or every parentless node
// when the document defines no scenes.
func (l *GLTFLoader) rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		if l.Scene >= 0 && l.Scene < len(doc.Scenes) {
			sceneIdx = l.Scene
		}
		var roots []int
		for _, n := range doc.Scenes[sceneIdx].Nodes {
			roots = append(roots, int(n))
		}
		return roots
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[int(c)] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

type gltfWalker struct {
	ctx  context.Context
	doc  *gltf.Document
	info *Info
	// depth guards against malformed documents with cyclic children.
	depth int
}

const maxNodeDepth = 256

func (w *gltfWalker) node(idx int, parent math3d.Mat4) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if idx < 0 || idx >= len(w.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if w.depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}

	node := w.doc.Nodes[idx]
	world := parent.Mul(localTransform(node))

	if node.Mesh != nil {
		meshIdx := int(*node.Mesh)
		if meshIdx < 0 || meshIdx >= len(w.doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", idx, meshIdx)
		}
		if err := w.mesh(w.doc.Meshes[meshIdx], world); err != nil {
			return fmt.Errorf("mesh %d: %w", meshIdx, err)
		}
	}

	w.depth++
	defer func() { w.depth-- }()
	for _, child := range node.Children {
		if err := w.node(int(child), world); err != nil {
			return err
		}
	}
	return nil
}

func (w *gltfWalker) mesh(m *gltf.Mesh, world math3d.Mat4) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if int(posIdx) >= len(w.doc.Accessors) {
			return fmt.Errorf("position accessor %d out of range", posIdx)
		}
		acr := w.doc.Accessors[posIdx]

		local, err := w.accessorBounds(acr)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		w.info.Bounds = w.info.Bounds.Union(local.Transform(world))
		w.info.Vertices += acr.Count

		if prim.Indices != nil && int(*prim.Indices) < len(w.doc.Accessors) {
			w.info.Triangles += w.doc.Accessors[*prim.Indices].Count / 3
		} else {
			w.info.Triangles += acr.Count / 3
		}
	}
	return nil
}

func (w *gltfWalker) accessorBounds(acr *gltf.Accessor) (Bounds, error) {
	if len(acr.Min) >= 3 && len(acr.Max) >= 3 {
		return Bounds{
			Min: math3d.V3(float64(acr.Min[0]), float64(acr.Min[1]), float64(acr.Min[2])),
			Max: math3d.V3(float64(acr.Max[0]), float64(acr.Max[1]), float64(acr.Max[2])),
		}, nil
	}

	positions, err := modeler.ReadPosition(w.doc, acr, nil)
	if err != nil {
		return Bounds{}, err
	}
	b := EmptyBounds()
	for _, p := range positions {
		b = b.Extend(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
	}
	return b, nil
}

// localTransform builds T * R * S for a node, or uses its explicit matrix.
// Zero-valued fields (as produced by documents built in code) count as unset.
func localTransform(node *gltf.Node) math3d.Mat4 {
	if node.Matrix != [16]float64{} && node.Matrix != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} {
		return math3d.Mat4FromSlice(node.Matrix[:])
	}

	m := math3d.Identity()
	if t := node.Translation; t != [3]float64{} {
		m = m.Mul(math3d.Translate(math3d.V3(t[0], t[1], t[2])))
	}
	if r := node.Rotation; r != [4]float64{} && r != [4]float64{0, 0, 0, 1} {
		m = m.Mul(math3d.QuatToMat4(r[0], r[1], r[2], r[3]))
	}
	if s := node.Scale; s != [3]float64{} && s != [3]float64{1, 1, 1} {
		m = m.Mul(math3d.Scale(math3d.V3(s[0], s[1], s[2])))
	}
	return m
}
