package camera

import "strings"

// Mode selects what a pointer drag does to the camera.
type Mode int

const (
	ModeRotate Mode = iota
	ModePan
	ModeZoom
)

func (m Mode) String() string {
	switch m {
	case ModeRotate:
		return "rotate"
	case ModePan:
		return "pan"
	case ModeZoom:
		return "zoom"
	default:
		return "unknown"
	}
}

// Modifiers is the set of modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

func (m Modifiers) String() string {
	var parts []string
	for _, f := range []struct {
		mod  Modifiers
		name string
	}{{ModShift, "shift"}, {ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModMeta, "meta"}} {
		if m.Has(f.mod) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ResolveMode maps the held modifiers to the drag mode. Meta (Command)
// pans, and Ctrl does too since terminals rarely report Meta. Alt (Option)
// zooms. Pan takes precedence when both are held. Shift is ignored.
func ResolveMode(mods Modifiers) Mode {
	switch {
	case mods.Has(ModMeta), mods.Has(ModCtrl):
		return ModePan
	case mods.Has(ModAlt):
		return ModeZoom
	default:
		return ModeRotate
	}
}
