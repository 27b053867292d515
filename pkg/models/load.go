package models

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a model file format.
type Format string

const (
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
	FormatSTL  Format = "stl"
	FormatOBJ  Format = "obj"
	FormatUSDZ Format = "usdz"
)

// ErrUnsupportedFormat is returned for files no loader can read. USDZ is
// recognized but handed off to the platform renderer, so it lands here too.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) Format {
	return Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// Load reads the model at path and reports its bounds.
func Load(path string) (*Info, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext is Load with cancellation. Loaders poll ctx between chunks of
// work, so a cancelled load returns ctx.Err() promptly.
func LoadContext(ctx context.Context, path string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		info *Info
		err  error
	)
	switch format := FormatOf(path); format {
	case FormatGLB, FormatGLTF:
		info, err = NewGLTFLoader().LoadFile(ctx, path)
	case FormatSTL:
		info, err = NewSTLLoader().LoadFile(ctx, path)
	case FormatOBJ:
		info, err = NewOBJLoader().LoadFile(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q (use .glb, .gltf, .stl or .obj)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}
