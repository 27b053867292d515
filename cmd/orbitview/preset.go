package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/math3d"
)

func newPresetCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved camera presets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List presets in the order they were saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				listPresets(cmd.OutOrStdout(), e.prefs.Presets())
				return nil
			})
		},
	}

	var (
		fromState bool
		radius    float64
		azimuth   float64
		elevation float64
		target    string
	)
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a camera preset",
		Long: `Save a camera preset. With --from-state the last saved camera state is
used; otherwise the state is built from the home view and any of the
--radius, --azimuth, --elevation and --target flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				var st camera.State
				if fromState {
					var ok bool
					if st, ok = e.prefs.LoadState(); !ok {
						return fmt.Errorf("no saved camera state")
					}
				} else {
					ctrl, err := e.controller()
					if err != nil {
						return err
					}
					st = ctrl.HomeState()
					fs := cmd.Flags()
					if fs.Changed("radius") {
						st.Radius = radius
					}
					if fs.Changed("azimuth") {
						st.Azimuth = azimuth
					}
					if fs.Changed("elevation") {
						st.Elevation = elevation
					}
					if fs.Changed("target") {
						t, err := parseVec3(target)
						if err != nil {
							return err
						}
						st.Target = t
					}
					// Clamp through the controller like an interactive save would.
					ctrl.Apply(st)
					st = ctrl.Capture()
				}

				p, err := e.prefs.AddPreset(args[0], st)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
	addCmd.Flags().BoolVar(&fromState, "from-state", false, "Use the last saved camera state")
	addCmd.Flags().Float64Var(&radius, "radius", 0, "Orbit radius")
	addCmd.Flags().Float64Var(&azimuth, "azimuth", 0, "Azimuth in radians")
	addCmd.Flags().Float64Var(&elevation, "elevation", 0, "Elevation in radians")
	addCmd.Flags().StringVar(&target, "target", "", "Orbit target as x,y,z")
	addCmd.MarkFlagsMutuallyExclusive("from-state", "radius")
	addCmd.MarkFlagsMutuallyExclusive("from-state", "azimuth")
	addCmd.MarkFlagsMutuallyExclusive("from-state", "elevation")
	addCmd.MarkFlagsMutuallyExclusive("from-state", "target")

	rmCmd := &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				p, err := e.prefs.FindPreset(args[0])
				if err != nil {
					return err
				}
				if err := e.prefs.RemovePreset(p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed preset %q (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Print a preset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				p, err := e.prefs.FindPreset(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, rmCmd, showCmd)
	return cmd
}

func listPresets(w io.Writer, presets []camera.Preset) {
	if len(presets) == 0 {
		fmt.Fprintln(w, "No presets saved")
		return
	}
	for i, p := range presets {
		fmt.Fprintf(w, "%d  %s  %-20s %s\n", i+1, shortID(p.ID), p.Name, p.State)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseVec3(s string) (math3d.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math3d.Vec3{}, fmt.Errorf("invalid vector %q (want x,y,z)", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		v[i] = f
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
