package prefs

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is the square edge length of a captured thumbnail, in pixels.
type Resolution int

const (
	Res256  Resolution = 256
	Res512  Resolution = 512
	Res1024 Resolution = 1024
	Res2048 Resolution = 2048
)

// Resolutions lists the supported capture sizes, smallest first.
var Resolutions = []Resolution{Res256, Res512, Res1024, Res2048}

func (r Resolution) Valid() bool {
	switch r {
	case Res256, Res512, Res1024, Res2048:
		return true
	}
	return false
}

func (r Resolution) String() string {
	return fmt.Sprintf("%d×%d", int(r), int(r))
}

func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "x×"); i > 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Resolution(n).Valid() {
		return 0, fmt.Errorf("invalid resolution %q (want 256, 512, 1024 or 2048)", s)
	}
	return Resolution(n), nil
}

// ImageFormat is the encoding of a captured thumbnail.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "PNG"
	FormatJPEG ImageFormat = "JPEG"
)

func (f ImageFormat) Valid() bool {
	return f == FormatPNG || f == FormatJPEG
}

// Extension is the file extension used when saving, without the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToUpper(strings.TrimPrefix(s, ".")) {
	case "PNG":
		return FormatPNG, nil
	case "JPEG", "JPG":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("invalid image format %q (want PNG or JPEG)", s)
}

// PhotoSettings configures the thumbnail capture collaborator.
type PhotoSettings struct {
	Resolution Resolution  `json:"resolution"`
	Format     ImageFormat `json:"format"`
	UseHDR     bool        `json:"useHDR"`
}

func DefaultPhotoSettings() PhotoSettings {
	return PhotoSettings{Resolution: Res256, Format: FormatPNG, UseHDR: true}
}

func (p PhotoSettings) Validate() error {
	if !p.Resolution.Valid() {
		return fmt.Errorf("invalid resolution %d", p.Resolution)
	}
	if !p.Format.Valid() {
		return fmt.Errorf("invalid image format %q", p.Format)
	}
	return nil
}

// LightingType selects the lighting rig of the renderer collaborator.
type LightingType string

const (
	LightingStandard LightingType = "standard"
	LightingSkybox   LightingType = "skybox"
)

func ParseLightingType(s string) (LightingType, error) {
	switch t := LightingType(strings.ToLower(s)); t {
	case LightingStandard, LightingSkybox:
		return t, nil
	}
	return "", fmt.Errorf("invalid lighting type %q (want standard or skybox)", s)
}

type LightingSettings struct {
	Type LightingType `json:"type"`
}

func DefaultLightingSettings() LightingSettings {
	return LightingSettings{Type: LightingStandard}
}

func (l LightingSettings) Validate() error {
	if l.Type != LightingStandard && l.Type != LightingSkybox {
		return fmt.Errorf("invalid lighting type %q", l.Type)
	}
	return nil
}
