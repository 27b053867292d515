package models

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/orbitview/pkg/math3d"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50 // normal + 3 vertices (12 floats) + attribute byte count
)

// STLLoader reads STL files in both ASCII and binary formats.
type STLLoader struct{}

// NewSTLLoader creates a new STL loader.
func NewSTLLoader() *STLLoader {
	return &STLLoader{}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(ctx context.Context, path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}
	return l.LoadBytes(ctx, data)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(ctx context.Context, data []byte) (*Info, error) {
	if isBinarySTL(data) {
		return l.loadBinary(ctx, data)
	}
	return l.loadASCII(ctx, data)
}

// isBinarySTL detects binary STL. ASCII files start with "solid", but some
// binary exporters put "solid" in the header too, so the size check decides.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	sizeMatches := uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(triCount)*stlRecordSize

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		return sizeMatches
	}
	return true
}

func (l *STLLoader) loadBinary(ctx context.Context, data []byte) (*Info, error) {
	triCount := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	expected := stlHeaderSize + 4 + triCount*stlRecordSize
	if len(data) < expected {
		return nil, fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expected, len(data))
	}

	info := &Info{Format: FormatSTL, Bounds: EmptyBounds(), Triangles: triCount, Vertices: triCount * 3}
	for i := range triCount {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// Skip the facet normal; only positions affect bounds.
		rec := data[stlHeaderSize+4+i*stlRecordSize+12:]
		for v := range 3 {
			info.Bounds = info.Bounds.Extend(readSTLVec3(rec[v*12:]))
		}
	}
	if triCount == 0 {
		info.Bounds = Bounds{}
	}
	return info, nil
}

func readSTLVec3(b []byte) math3d.Vec3 {
	return math3d.V3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}

func (l *STLLoader) loadASCII(ctx context.Context, data []byte) (*Info, error) {
	info := &Info{Format: FormatSTL, Bounds: EmptyBounds()}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "facet":
			info.Triangles++
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			var xyz [3]float64
			for i := range 3 {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid coordinate: %w", lineNum, err)
				}
				xyz[i] = v
			}
			info.Bounds = info.Bounds.Extend(math3d.V3(xyz[0], xyz[1], xyz[2]))
			info.Vertices++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading STL: %w", err)
	}
	if info.Vertices == 0 {
		info.Bounds = Bounds{}
	}
	return info, nil
}
