package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taigrr/orbitview/pkg/prefs"
)

func newSettingsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change viewer settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print all viewer settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				showSettings(cmd.OutOrStdout(), e.prefs)
				return nil
			})
		},
	}

	var (
		resolution string
		format     string
		hdr        bool
	)
	photoCmd := &cobra.Command{
		Use:   "photo",
		Short: "Change thumbnail capture settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				ps := e.prefs.PhotoSettings()
				fs := cmd.Flags()
				if fs.Changed("resolution") {
					r, err := prefs.ParseResolution(resolution)
					if err != nil {
						return err
					}
					ps.Resolution = r
				}
				if fs.Changed("format") {
					f, err := prefs.ParseImageFormat(format)
					if err != nil {
						return err
					}
					ps.Format = f
				}
				if fs.Changed("hdr") {
					ps.UseHDR = hdr
				}
				if err := e.prefs.SetPhotoSettings(ps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Photo: %s %s hdr=%t\n", ps.Resolution, ps.Format, ps.UseHDR)
				return nil
			})
		},
	}
	photoCmd.Flags().StringVar(&resolution, "resolution", "", "Capture resolution (256, 512, 1024 or 2048)")
	photoCmd.Flags().StringVar(&format, "format", "", "Image format (PNG or JPEG)")
	photoCmd.Flags().BoolVar(&hdr, "hdr", true, "Capture with HDR")

	lightingCmd := &cobra.Command{
		Use:       "lighting <standard|skybox>",
		Short:     "Select the lighting rig",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(prefs.LightingStandard), string(prefs.LightingSkybox)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				t, err := prefs.ParseLightingType(args[0])
				if err != nil {
					return err
				}
				if err := e.prefs.SetLightingSettings(prefs.LightingSettings{Type: t}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Lighting: %s\n", t)
				return nil
			})
		},
	}

	savePositionCmd := newToggleCmd(flags, "save-position",
		"Save the camera state when switching models or quitting",
		(*prefs.Manager).SetSaveCameraPosition)
	restoreCmd := newToggleCmd(flags, "restore",
		"Restore the saved camera state on the first model load",
		(*prefs.Manager).SetRestoreOnLaunch)

	cmd.AddCommand(showCmd, photoCmd, lightingCmd, savePositionCmd, restoreCmd)
	return cmd
}

func newToggleCmd(flags *globalFlags, name, short string, set func(*prefs.Manager, bool) error) *cobra.Command {
	return &cobra.Command{
		Use:       name + " <on|off>",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args[0])
			if err != nil {
				return err
			}
			return withEnv(flags, func(e *env) error {
				if err := set(e.prefs, on); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, onOff(on))
				return nil
			})
		},
	}
}

func parseToggle(s string) (bool, error) {
	switch s {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q (want on or off)", s)
	}
	return b, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func showSettings(w io.Writer, m *prefs.Manager) {
	ps := m.PhotoSettings()
	fmt.Fprintf(w, "Save position:  %s\n", onOff(m.SaveCameraPosition()))
	fmt.Fprintf(w, "Restore:        %s\n", onOff(m.RestoreOnLaunch()))
	fmt.Fprintf(w, "Photo:          %s %s hdr=%t\n", ps.Resolution, ps.Format, ps.UseHDR)
	fmt.Fprintf(w, "Lighting:       %s\n", m.LightingSettings().Type)
	fmt.Fprintf(w, "Presets:        %d\n", len(m.Presets()))
}
