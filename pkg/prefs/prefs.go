// Package prefs persists camera state, presets and viewer settings in a
// store.Store. Records that fail to decode are logged and read as absent.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/store"
)

// Record keys.
const (
	KeyLastCameraState    = "lastCameraState"
	KeyCameraPresets      = "cameraPresets"
	KeySaveCameraPosition = "saveCameraPosition"
	KeyPhotoSettings      = "photoSettings"
	KeyLightingSettings   = "lightingSettings"
	KeyRestoreOnLaunch    = "restoreCameraOnLaunch"
)

var (
	ErrNotFound  = errors.New("preset not found")
	ErrAmbiguous = errors.New("preset reference is ambiguous")
)

// validator is implemented by records with value constraints beyond JSON.
type validator interface {
	Validate() error
}

// Manager reads and writes preference records. Preset mutations are
// serialized so concurrent adds never lose each other.
type Manager struct {
	store store.Store
	log   zerolog.Logger

	mu sync.Mutex
}

func NewManager(s store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: s, log: log}
}

// read decodes key into v. It reports false for absent records and for
// records that are unreadable, undecodable or fail validation.
func (m *Manager) read(key string, v any) bool {
	raw, ok, err := m.store.Get(key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("Failed to read preference")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("Ignoring malformed preference")
		return false
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("Ignoring invalid preference")
			return false
		}
	}
	return true
}

func (m *Manager) write(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.store.Set(key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SaveState records the camera state restored on the next launch.
func (m *Manager) SaveState(s camera.State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("save camera state: %w", err)
	}
	return m.write(KeyLastCameraState, s)
}

func (m *Manager) LoadState() (camera.State, bool) {
	var s camera.State
	if !m.read(KeyLastCameraState, &s) {
		return camera.State{}, false
	}
	return s, true
}

func (m *Manager) ClearState() error {
	return m.store.Delete(KeyLastCameraState)
}

// loadPresets decodes each entry on its own; one bad preset does not hide
// the rest.
func (m *Manager) loadPresets() []camera.Preset {
	var raws []json.RawMessage
	if !m.read(KeyCameraPresets, &raws) {
		return nil
	}
	out := make([]camera.Preset, 0, len(raws))
	for i, raw := range raws {
		var p camera.Preset
		if err := json.Unmarshal(raw, &p); err != nil {
			m.log.Warn().Err(err).Str("key", KeyCameraPresets).Int("index", i).Msg("Skipping malformed preset")
			continue
		}
		if err := p.Validate(); err != nil {
			m.log.Warn().Err(err).Str("key", KeyCameraPresets).Str("id", p.ID).Msg("Skipping invalid preset")
			continue
		}
		out = append(out, p)
	}
	return out
}

// Presets returns a copy of the presets in the order they were added.
func (m *Manager) Presets() []camera.Preset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadPresets()
}

// AddPreset appends a new preset with a fresh ID.
func (m *Manager) AddPreset(name string, s camera.State) (camera.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return camera.Preset{}, errors.New("preset name is empty")
	}
	if err := s.Validate(); err != nil {
		return camera.Preset{}, fmt.Errorf("preset %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p := camera.NewPreset(name, s)
	list := append(m.loadPresets(), p)
	if err := m.write(KeyCameraPresets, list); err != nil {
		return camera.Preset{}, err
	}
	m.log.Debug().Str("id", p.ID).Str("name", p.Name).Msg("Saved preset")
	return p, nil
}

// RemovePreset deletes the preset with id. Unknown ids are ignored.
func (m *Manager) RemovePreset(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.loadPresets()
	i := slices.IndexFunc(list, func(p camera.Preset) bool { return p.ID == id })
	if i < 0 {
		return nil
	}
	list = slices.Delete(list, i, i+1)
	if err := m.write(KeyCameraPresets, list); err != nil {
		return err
	}
	m.log.Debug().Str("id", id).Msg("Removed preset")
	return nil
}

// Preset looks up a preset by exact id.
func (m *Manager) Preset(id string) (camera.Preset, error) {
	for _, p := range m.Presets() {
		if p.ID == id {
			return p, nil
		}
	}
	return camera.Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FindPreset resolves what a user typed: an exact id, a unique id prefix,
// or a unique name (case-insensitive).
func (m *Manager) FindPreset(ref string) (camera.Preset, error) {
	list := m.Presets()
	for _, p := range list {
		if p.ID == ref {
			return p, nil
		}
	}

	var matches []camera.Preset
	for _, p := range list {
		if strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return camera.Preset{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return camera.Preset{}, fmt.Errorf("%w: %q matches %d presets", ErrAmbiguous, ref, len(matches))
	}
}

func (m *Manager) flag(key string) bool {
	var v bool
	return m.read(key, &v) && v
}

// SaveCameraPosition reports whether opening a model first records the
// outgoing camera state.
func (m *Manager) SaveCameraPosition() bool {
	return m.flag(KeySaveCameraPosition)
}

func (m *Manager) SetSaveCameraPosition(on bool) error {
	return m.write(KeySaveCameraPosition, on)
}

// RestoreOnLaunch reports whether the first model opened after launch gets
// the last saved camera state instead of an auto-fit.
func (m *Manager) RestoreOnLaunch() bool {
	return m.flag(KeyRestoreOnLaunch)
}

func (m *Manager) SetRestoreOnLaunch(on bool) error {
	return m.write(KeyRestoreOnLaunch, on)
}

func (m *Manager) PhotoSettings() PhotoSettings {
	var p PhotoSettings
	if !m.read(KeyPhotoSettings, &p) {
		return DefaultPhotoSettings()
	}
	return p
}

func (m *Manager) SetPhotoSettings(p PhotoSettings) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return m.write(KeyPhotoSettings, p)
}

func (m *Manager) LightingSettings() LightingSettings {
	var l LightingSettings
	if !m.read(KeyLightingSettings, &l) {
		return DefaultLightingSettings()
	}
	return l
}

func (m *Manager) SetLightingSettings(l LightingSettings) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return m.write(KeyLightingSettings, l)
}
