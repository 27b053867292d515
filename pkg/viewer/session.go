// Package viewer ties the camera controller, preferences and model loads
// together for one preview window. A Session belongs to the goroutine that
// handles input; loads complete elsewhere and are applied through
// HandleResult on that goroutine.
package viewer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/loader"
	"github.com/taigrr/orbitview/pkg/math3d"
	"github.com/taigrr/orbitview/pkg/models"
	"github.com/taigrr/orbitview/pkg/prefs"
)

const DefaultViewportExtent = 4.0

// Session is the state of one viewer.
type Session struct {
	ctrl  *camera.Controller
	prefs *prefs.Manager
	loads *loader.Coordinator
	log   zerolog.Logger

	extent float64
	fps    int

	model      *models.Info
	fit        camera.FitResult
	restored   bool
	launched   bool
	transition *camera.Transition
	lastErr    error
}

type Option func(*Session)

// WithViewportExtent sets the extent auto-fit frames models into.
func WithViewportExtent(extent float64) Option {
	return func(s *Session) {
		if extent > 0 {
			s.extent = extent
		}
	}
}

// WithAnimation eases preset and reset moves at fps frames per second.
// Without it they apply immediately.
func WithAnimation(fps int) Option {
	return func(s *Session) {
		s.fps = fps
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

func New(ctrl *camera.Controller, p *prefs.Manager, loads *loader.Coordinator, options ...Option) *Session {
	s := &Session{
		ctrl:   ctrl,
		prefs:  p,
		loads:  loads,
		log:    zerolog.Nop(),
		extent: DefaultViewportExtent,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Session) Controller() *camera.Controller {
	return s.ctrl
}

func (s *Session) Prefs() *prefs.Manager {
	return s.prefs
}

// Model is the loaded model, or nil before the first successful load.
func (s *Session) Model() *models.Info {
	return s.model
}

// Fit is the auto-fit applied for the current model.
func (s *Session) Fit() camera.FitResult {
	return s.fit
}

// DisplayBounds is the current model's box in world space as it should be
// drawn. Under model framing the model is recentered at the origin and scaled
// by the fit's ModelScale.
func (s *Session) DisplayBounds() (models.Bounds, bool) {
	if s.model == nil {
		return models.Bounds{}, false
	}
	b := s.model.Bounds
	if s.fit.Framing != camera.FramingModel {
		return b, true
	}
	k := s.fit.ModelScale
	m := math3d.Scale(math3d.V3(k, k, k)).Mul(math3d.Translate(s.fit.Center.Negate()))
	return b.Transform(m), true
}

// Restored reports whether the current view came from the saved state.
func (s *Session) Restored() bool {
	return s.restored
}

// LastError is the most recent load failure, cleared by a successful load.
func (s *Session) LastError() error {
	return s.lastErr
}

// Results is the coordinator's result channel, for callers that multiplex
// input and loads in one select instead of running Pump.
func (s *Session) Results() <-chan loader.Result {
	return s.loads.Results()
}

func (s *Session) Loading() bool {
	return s.loads.Busy()
}

// Open requests path. When the save-position setting is on and a model is
// showing, the outgoing camera state is saved first.
func (s *Session) Open(path string) (uint64, error) {
	if s.model != nil && s.prefs.SaveCameraPosition() {
		if err := s.prefs.SaveState(s.ctrl.Capture()); err != nil {
			s.log.Warn().Err(err).Msg("Failed to save camera state")
		}
	}

	gen, err := s.loads.Load(path)
	if errors.Is(err, loader.ErrBusy) {
		s.log.Debug().Str("path", path).Msg("Ignoring open while a model is loading")
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("path", path).Uint64("generation", gen).Msg("Loading model")
	return gen, nil
}

// Pump applies load results until ctx ends or the coordinator closes.
func (s *Session) Pump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-s.loads.Results():
			if !ok {
				return nil
			}
			s.HandleResult(r)
		}
	}
}

// HandleResult applies a finished load: auto-fit, then on the first load
// after launch the saved camera state when restore is enabled. Results that
// a newer request has since replaced are ignored.
func (s *Session) HandleResult(r loader.Result) error {
	if r.Generation != s.loads.Generation() {
		s.log.Debug().Uint64("generation", r.Generation).Msg("Ignoring stale load result")
		return nil
	}
	if r.Err != nil {
		s.lastErr = r.Err
		s.log.Error().Err(r.Err).Str("path", r.Path).Msg("Failed to load model")
		return r.Err
	}

	s.lastErr = nil
	s.model = r.Info
	s.transition = nil
	s.restored = false
	s.fit = s.ctrl.AutoFit(r.Info.Bounds, s.extent)
	if s.fit.Err != nil {
		s.log.Warn().Err(s.fit.Err).Str("path", r.Path).Msg("Using fallback framing")
	}

	if !s.launched {
		s.launched = true
		if s.prefs.RestoreOnLaunch() {
			if st, ok := s.prefs.LoadState(); ok {
				s.ctrl.Apply(st)
				s.restored = true
			}
		}
	}

	s.log.Info().
		Str("path", r.Path).
		Int("triangles", r.Info.Triangles).
		Float64("radius", s.ctrl.Capture().Radius).
		Dur("elapsed", r.Elapsed).
		Msg("Model loaded")
	return nil
}

// Drag steers the camera with a pointer delta in cells or pixels.
func (s *Session) Drag(dx, dy float64, mods camera.Modifiers) {
	s.transition = nil
	s.ctrl.Drag(camera.ResolveMode(mods), dx, dy)
}

// Scroll zooms regardless of modifiers. Positive dy zooms out.
func (s *Session) Scroll(dy float64) {
	s.transition = nil
	s.ctrl.Zoom(dy)
}

// Reset returns to the home pose.
func (s *Session) Reset() {
	s.moveTo(s.ctrl.HomeState())
}

func (s *Session) moveTo(target camera.State) {
	if s.fps <= 0 {
		s.transition = nil
		s.ctrl.Apply(target)
		return
	}
	s.transition = camera.NewTransition(s.ctrl.Capture(), target, s.fps)
}

// Animating reports whether a transition is still running.
func (s *Session) Animating() bool {
	return s.transition != nil
}

// Tick advances a running transition by one frame.
func (s *Session) Tick() bool {
	if s.transition == nil {
		return false
	}
	st, done := s.transition.Step()
	s.ctrl.Apply(st)
	if done {
		s.transition = nil
	}
	return !done
}

// Finish jumps to the end of a running transition.
func (s *Session) Finish() {
	if s.transition != nil {
		s.ctrl.Apply(s.transition.Target())
		s.transition = nil
	}
}

func (s *Session) Presets() []camera.Preset {
	return s.prefs.Presets()
}

// SavePreset stores the current view under name.
func (s *Session) SavePreset(name string) (camera.Preset, error) {
	s.Finish()
	return s.prefs.AddPreset(name, s.ctrl.Capture())
}

// ApplyPreset moves to the preset named by ref (id, id prefix or name).
func (s *Session) ApplyPreset(ref string) (camera.Preset, error) {
	p, err := s.prefs.FindPreset(ref)
	if err != nil {
		return camera.Preset{}, err
	}
	s.moveTo(p.State)
	return p, nil
}

func (s *Session) DeletePreset(id string) error {
	return s.prefs.RemovePreset(id)
}

// SaveState records the current view when the save-position setting is on.
func (s *Session) SaveState() error {
	if s.model == nil || !s.prefs.SaveCameraPosition() {
		return nil
	}
	s.Finish()
	return s.prefs.SaveState(s.ctrl.Capture())
}

// Dimensions summarizes the loaded model.
func (s *Session) Dimensions() (models.Dimensions, bool) {
	if s.model == nil {
		return models.Dimensions{}, false
	}
	return s.model.Dimensions(), true
}

// ThumbnailName is the suggested file name for a capture of the current
// model in the configured photo format.
func (s *Session) ThumbnailName() string {
	path := ""
	if s.model != nil {
		path = s.model.Path
	}
	return ThumbnailName(path, s.prefs.PhotoSettings().Format)
}

// Close saves the view if configured and stops the load coordinator.
func (s *Session) Close() error {
	err := s.SaveState()
	return errors.Join(err, s.loads.Close())
}

// ThumbnailName returns "<model name>.<ext>", or "capture.<ext>" when there
// is no model.
func ThumbnailName(modelFile string, format prefs.ImageFormat) string {
	base := strings.TrimSuffix(filepath.Base(modelFile), filepath.Ext(modelFile))
	if modelFile == "" || base == "" || base == "." || base == string(filepath.Separator) {
		base = "capture"
	}
	return base + "." + format.Extension()
}
