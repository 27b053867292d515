// Package config loads orbitview settings from defaults, an optional
// orbitview.{yaml,json,toml} file and ORBITVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/loader"
	"github.com/taigrr/orbitview/pkg/store"
)

const (
	// Name is the config file base name and the per-user directory name.
	Name      = "orbitview"
	envPrefix = "ORBITVIEW"
)

// StoreConfig holds preference storage settings.
type StoreConfig struct {
	Type string `json:"type" mapstructure:"type"`
	Path string `json:"path" mapstructure:"path"`
}

// CameraConfig holds orbit controller tunables.
type CameraConfig struct {
	RotateSensitivity float64 `json:"rotateSensitivity" mapstructure:"rotateSensitivity"`
	PanSensitivity    float64 `json:"panSensitivity" mapstructure:"panSensitivity"`
	ZoomSensitivity   float64 `json:"zoomSensitivity" mapstructure:"zoomSensitivity"`
	MinRadius         float64 `json:"minRadius" mapstructure:"minRadius"`
	MaxRadius         float64 `json:"maxRadius" mapstructure:"maxRadius"`
	FallbackRadius    float64 `json:"fallbackRadius" mapstructure:"fallbackRadius"`
	Unbounded         bool    `json:"unbounded" mapstructure:"unbounded"`
	Framing           string  `json:"framing" mapstructure:"framing"`
	CaptureDefault    string  `json:"captureDefault" mapstructure:"captureDefault"`
}

type LoaderConfig struct {
	Policy string `json:"policy" mapstructure:"policy"`
}

// Config is the resolved configuration.
type Config struct {
	LogLevel       string       `json:"logLevel" mapstructure:"logLevel"`
	ViewportExtent float64      `json:"viewportExtent" mapstructure:"viewportExtent"`
	FPS            int          `json:"fps" mapstructure:"fps"`
	Store          StoreConfig  `json:"store" mapstructure:"store"`
	Camera         CameraConfig `json:"camera" mapstructure:"camera"`
	Loader         LoaderConfig `json:"loader" mapstructure:"loader"`

	// Dir is where the config file was looked up; relative store paths and
	// the default store file live there.
	Dir string `json:"-" mapstructure:"-"`
	// File is the config file that was read, if any.
	File string `json:"-" mapstructure:"-"`
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, Name)
}

func newViper() *viper.Viper {
	v := viper.New()
	cam := camera.DefaultConfig()

	v.SetDefault("logLevel", "info")
	v.SetDefault("viewportExtent", 4.0)
	v.SetDefault("fps", 60)

	v.SetDefault("store.type", string(store.TypeFile))
	v.SetDefault("store.path", "")

	v.SetDefault("camera.rotateSensitivity", cam.RotateSensitivity)
	v.SetDefault("camera.panSensitivity", cam.PanSensitivity)
	v.SetDefault("camera.zoomSensitivity", cam.ZoomSensitivity)
	v.SetDefault("camera.minRadius", cam.MinRadius)
	v.SetDefault("camera.maxRadius", cam.MaxRadius)
	v.SetDefault("camera.fallbackRadius", cam.FallbackRadius)
	v.SetDefault("camera.unbounded", false)
	v.SetDefault("camera.framing", camera.FramingCamera.String())
	v.SetDefault("camera.captureDefault", camera.CaptureOnFit.String())

	v.SetDefault("loader.policy", loader.LatestWins.String())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads orbitview.{yaml,json,toml} from dir. A missing file is not an
// error; defaults and environment still apply.
func Load(dir string) (Config, error) {
	v := newViper()
	v.SetConfigName(Name)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v, dir)
}

// LoadFile reads an explicit config file, which must exist.
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	return decode(v, filepath.Dir(path))
}

func decode(v *viper.Viper, dir string) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dir = dir
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every enumerated setting and the camera bounds.
func (c Config) Validate() error {
	if _, err := store.ParseType(c.Store.Type); err != nil {
		return err
	}
	if _, err := loader.ParsePolicy(c.Loader.Policy); err != nil {
		return err
	}
	if !(c.ViewportExtent > 0) {
		return fmt.Errorf("viewportExtent %v must be positive", c.ViewportExtent)
	}
	if _, err := c.CameraConfig(); err != nil {
		return err
	}
	return nil
}

// CameraConfig builds the controller configuration.
func (c Config) CameraConfig() (camera.Config, error) {
	cc := camera.DefaultConfig()
	cc.RotateSensitivity = c.Camera.RotateSensitivity
	cc.PanSensitivity = c.Camera.PanSensitivity
	cc.ZoomSensitivity = c.Camera.ZoomSensitivity
	cc.MinRadius = c.Camera.MinRadius
	cc.MaxRadius = c.Camera.MaxRadius
	cc.FallbackRadius = c.Camera.FallbackRadius
	cc.Unbounded = c.Camera.Unbounded

	var err error
	if cc.Framing, err = camera.ParseFramingPolicy(c.Camera.Framing); err != nil {
		return cc, err
	}
	if cc.Capture, err = camera.ParseCapturePolicy(c.Camera.CaptureDefault); err != nil {
		return cc, err
	}
	if err := cc.Validate(); err != nil {
		return cc, fmt.Errorf("camera: %w", err)
	}
	return cc, nil
}

// StoreConfig resolves the backend; an empty path becomes prefs.json or
// prefs.db in the config directory.
func (c Config) StoreConfig(log zerolog.Logger) store.Config {
	typ, err := store.ParseType(c.Store.Type)
	if err != nil {
		typ = store.TypeFile
	}

	path := c.Store.Path
	switch {
	case typ == store.TypeMemory:
		path = ""
	case path == "" && typ == store.TypeSQLite:
		path = filepath.Join(c.Dir, "prefs.db")
	case path == "":
		path = filepath.Join(c.Dir, "prefs.json")
	case !filepath.IsAbs(path) && c.Dir != "":
		path = filepath.Join(c.Dir, path)
	}
	return store.Config{Type: typ, Path: path, Logger: log}
}

func (c Config) LoaderPolicy() loader.Policy {
	p, _ := loader.ParsePolicy(c.Loader.Policy)
	return p
}
