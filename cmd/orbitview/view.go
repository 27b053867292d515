package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/loader"
	"github.com/taigrr/orbitview/pkg/logging"
	"github.com/taigrr/orbitview/pkg/math3d"
	"github.com/taigrr/orbitview/pkg/prefs"
	"github.com/taigrr/orbitview/pkg/render"
	"github.com/taigrr/orbitview/pkg/viewer"
)

// Pointer deltas arrive in cells; the controller sensitivities are tuned
// for pixels.
const (
	cellWidthPx  = 8.0
	cellHeightPx = 16.0
	wheelStep    = 25.0
)

func newViewCmd(flags *globalFlags) *cobra.Command {
	var (
		fps       int
		noAnimate bool
		logFile   string
	)
	cmd := &cobra.Command{
		Use:   "view <model.obj|model.glb|model.gltf|model.stl>",
		Short: "Preview a model with the orbit camera",
		Long: `Preview a model with the orbit camera.

Controls:
  Mouse drag        - Rotate around the target
  Ctrl/Meta + drag  - Pan (right or middle button drags pan too)
  Alt + drag        - Zoom
  Scroll, +/-       - Zoom in/out
  R                 - Reset to the home view
  P                 - Save the current view as a preset
  1-9               - Apply a saved preset
  ?                 - Toggle HUD overlay
  Esc, Ctrl+C       - Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				if cmd.Flags().Changed("fps") {
					e.cfg.FPS = fps
				}
				if e.cfg.FPS <= 0 {
					e.cfg.FPS = 60
				}
				var out io.Writer = io.Discard
				if logFile != "" {
					f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
					if err != nil {
						return fmt.Errorf("open log file: %w", err)
					}
					defer f.Close()
					out = f
				}
				// The terminal belongs to the view; logs go to the file or nowhere.
				e.log = logging.New(e.cfg.LogLevel, out).With().Str("component", "view").Logger()
				e.prefs = prefs.NewManager(e.store, e.log)
				return runView(cmd.Context(), e, args[0], !noAnimate)
			})
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 60, "Target FPS")
	cmd.Flags().BoolVar(&noAnimate, "no-animate", false, "Jump to presets and the home view instead of easing")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the view is open")
	return cmd
}

// viewState is the input state of one interactive view. It is only touched
// by the frame loop goroutine.
type viewState struct {
	sess   *viewer.Session
	canvas *render.Canvas
	hud    *HUD

	width, height int
	showHUD       bool

	mouseDown   bool
	mouseButton uv.MouseButton
	last        math3d.Vec2

	status   string
	statusAt time.Time
}

func newSession(e *env, animate bool) (*viewer.Session, error) {
	ctrl, err := e.controller()
	if err != nil {
		return nil, err
	}
	loads := loader.New(nil,
		loader.WithPolicy(e.cfg.LoaderPolicy()),
		loader.WithLogger(e.log),
	)
	options := []viewer.Option{
		viewer.WithViewportExtent(e.cfg.ViewportExtent),
		viewer.WithLogger(e.log),
	}
	if animate {
		options = append(options, viewer.WithAnimation(e.cfg.FPS))
	}
	return viewer.New(ctrl, e.prefs, loads, options...), nil
}

func runView(ctx context.Context, e *env, modelPath string, animate bool) (err error) {
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	sess, err := newSession(e, animate)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close())
	}()

	if _, err := sess.Open(modelPath); err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Events are handed to the frame loop so the session has a single owner.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v := &viewState{
		sess:    sess,
		canvas:  render.NewCanvas(width, height),
		hud:     NewHUD(),
		width:   width,
		height:  height,
		showHUD: true,
	}

	ticker := time.NewTicker(time.Second / time.Duration(e.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if quit := v.handleEvent(ev, term); quit {
				return nil
			}
		case r, ok := <-sess.Results():
			if !ok {
				return nil
			}
			if err := sess.HandleResult(r); err != nil {
				v.setStatus("load failed: " + err.Error())
			}
		case <-ticker.C:
			sess.Tick()
			v.draw(os.Stdout)
		}
	}
}

// handleEvent applies one terminal event and reports whether to quit.
func (v *viewState) handleEvent(ev uv.Event, term *uv.Terminal) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.width, v.height = ev.Width, ev.Height
		term.Erase()
		term.Resize(v.width, v.height)
		v.canvas.Resize(v.width, v.height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("r"):
			v.sess.Reset()
		case ev.MatchString("p"):
			p, err := v.sess.SavePreset(fmt.Sprintf("View %d", len(v.sess.Presets())+1))
			if err != nil {
				v.setStatus("save preset: " + err.Error())
			} else {
				v.setStatus(fmt.Sprintf("saved preset %q", p.Name))
			}
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		case ev.MatchString("+", "="):
			v.sess.Scroll(-wheelStep)
		case ev.MatchString("-", "_"):
			v.sess.Scroll(wheelStep)
		default:
			for n := 1; n <= 9; n++ {
				if ev.MatchString(strconv.Itoa(n)) {
					v.applyPreset(n)
					break
				}
			}
		}

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.mouseButton = ev.Button
		v.last = math3d.V2(float64(ev.X), float64(ev.Y))

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			pos := math3d.V2(float64(ev.X), float64(ev.Y))
			d := cellsToPixels(pos.Sub(v.last))
			v.last = pos
			mods := modifiers(ev.Mod)
			// Right and middle drags pan like a held Ctrl.
			if v.mouseButton == uv.MouseRight || v.mouseButton == uv.MouseMiddle {
				mods |= camera.ModCtrl
			}
			if !d.IsZero() {
				v.sess.Drag(d.X, d.Y, mods)
			}
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.sess.Scroll(-wheelStep)
		case uv.MouseWheelDown:
			v.sess.Scroll(wheelStep)
		}
	}
	return false
}

func (v *viewState) applyPreset(n int) {
	presets := v.sess.Presets()
	if n < 1 || n > len(presets) {
		v.setStatus(fmt.Sprintf("no preset %d", n))
		return
	}
	p, err := v.sess.ApplyPreset(presets[n-1].ID)
	if err != nil {
		v.setStatus("apply preset: " + err.Error())
		return
	}
	v.setStatus(fmt.Sprintf("preset %q", p.Name))
}

func (v *viewState) setStatus(msg string) {
	v.status = msg
	v.statusAt = time.Now()
}

// draw renders the wireframe, target marker and HUD into the terminal.
func (v *viewState) draw(w io.Writer) {
	v.hud.UpdateFPS()
	if v.status != "" && time.Since(v.statusAt) > 3*time.Second {
		v.status = ""
	}

	c := v.canvas
	c.Clear()
	ctrl := v.sess.Controller()
	proj := render.NewProjector(ctrl.ViewMatrix(), c.Width, c.Height)
	if b, ok := v.sess.DisplayBounds(); ok {
		render.DrawBounds(c, b, proj)
	}
	render.DrawMarker(c, ctrl.Capture().Target, proj, render.TargetRune)

	if v.showHUD {
		top, bottom := v.hud.Lines(v.sess, c.Width, v.status)
		c.Text(0, 0, top)
		c.Text(0, c.Height-1, bottom)
	}

	var sb strings.Builder
	for y := range c.Height {
		fmt.Fprintf(&sb, "\x1b[%d;1H", y+1)
		sb.WriteString(c.Row(y))
	}
	_, _ = io.WriteString(w, sb.String())
}

// cellsToPixels converts a pointer delta in terminal cells to pixels.
func cellsToPixels(d math3d.Vec2) math3d.Vec2 {
	return math3d.V2(d.X*cellWidthPx, d.Y*cellHeightPx)
}

func modifiers(m uv.KeyMod) camera.Modifiers {
	var mods camera.Modifiers
	if m&uv.ModShift != 0 {
		mods |= camera.ModShift
	}
	if m&uv.ModCtrl != 0 {
		mods |= camera.ModCtrl
	}
	if m&uv.ModAlt != 0 {
		mods |= camera.ModAlt
	}
	if m&(uv.ModMeta|uv.ModSuper) != 0 {
		mods |= camera.ModMeta
	}
	return mods
}
