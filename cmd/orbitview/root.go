package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/config"
	"github.com/taigrr/orbitview/pkg/logging"
	"github.com/taigrr/orbitview/pkg/prefs"
	"github.com/taigrr/orbitview/pkg/store"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	storeType  string
	storePath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "orbitview",
		Short: "Terminal orbit camera previewer",
		Long: `orbitview - Terminal orbit camera previewer

Frame OBJ, STL and glTF models with an orbit camera. Camera presets, the
last camera state and viewer settings are kept between runs.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default orbitview.{yaml,json,toml} in the user config dir)")
	pf.StringVar(&flags.storeType, "store", "", "Preference store backend (file, sqlite or memory)")
	pf.StringVar(&flags.storePath, "store-path", "", "Preference store location")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newViewCmd(flags),
		newInfoCmd(flags),
		newPresetCmd(flags),
		newStateCmd(flags),
		newSettingsCmd(flags),
	)
	return cmd
}

// env is what a command needs once configuration has been resolved.
type env struct {
	cfg   config.Config
	log   zerolog.Logger
	store store.Store
	prefs *prefs.Manager
}

func (f *globalFlags) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(config.DefaultDir())
	}
	if err != nil {
		return config.Config{}, err
	}

	if f.storeType != "" {
		cfg.Store.Type = f.storeType
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// open resolves config and opens the preference store. Callers close the
// returned env.
func (f *globalFlags) open() (*env, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	sc := cfg.StoreConfig(log)
	if sc.Type != store.TypeMemory && cfg.Store.Path == "" {
		if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
	}
	s, err := store.Open(sc)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("store", string(sc.Type)).Str("path", sc.Path).Msg("Opened preference store")

	return &env{
		cfg:   cfg,
		log:   log,
		store: s,
		prefs: prefs.NewManager(s, log),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func (e *env) controller() (*camera.Controller, error) {
	cc, err := e.cfg.CameraConfig()
	if err != nil {
		return nil, err
	}
	return camera.NewController(camera.WithConfig(cc)), nil
}

// withEnv runs fn with an opened env and closes it afterwards.
func withEnv(f *globalFlags, fn func(e *env) error) error {
	e, err := f.open()
	if err != nil {
		return err
	}
	return errors.Join(fn(e), e.Close())
}
