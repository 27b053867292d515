package models

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/orbitview/pkg/math3d"
)

// ctxCheckInterval is how many lines or records a loader reads between
// cancellation checks.
const ctxCheckInterval = 4096

// OBJLoader reads Wavefront OBJ files.
type OBJLoader struct {
	// Strict rejects malformed vertex lines instead of skipping them.
	Strict bool
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{Strict: true}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(ctx context.Context, path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load scans an OBJ stream. Only vertex positions and faces matter here:
// positions grow the bounds, faces are fan-triangulated for the count.
func (l *OBJLoader) Load(ctx context.Context, r io.Reader) (*Info, error) {
	info := &Info{Format: FormatOBJ, Bounds: EmptyBounds()}

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if lineNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVertex(fields)
			if err != nil {
				if l.Strict {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				continue
			}
			info.Bounds = info.Bounds.Extend(p)
			info.Vertices++

		case "f":
			if len(fields) < 4 {
				if l.Strict {
					return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
				}
				continue
			}
			info.Triangles += len(fields) - 3
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}
	if info.Vertices == 0 {
		info.Bounds = Bounds{}
	}
	return info, nil
}

func parseVertex(fields []string) (math3d.Vec3, error) {
	if len(fields) < 4 {
		return math3d.Vec3{}, fmt.Errorf("invalid vertex (need x y z)")
	}
	var xyz [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("invalid %c coordinate: %w", "xyz"[i], err)
		}
		xyz[i] = v
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}
