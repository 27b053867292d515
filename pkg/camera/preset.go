package camera

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Preset is a named snapshot of camera state. Presets are never edited in
// place; revising one means deleting it and saving a new one.
type Preset struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State State  `json:"state"`
}

// NewPreset stamps state with a fresh random ID.
func NewPreset(name string, state State) Preset {
	return Preset{
		ID:    uuid.NewString(),
		Name:  name,
		State: state,
	}
}

func (p Preset) Validate() error {
	if p.ID == "" {
		return errors.New("preset has no id")
	}
	if err := p.State.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return nil
}
