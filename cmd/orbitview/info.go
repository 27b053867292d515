package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/orbitview/pkg/camera"
	"github.com/taigrr/orbitview/pkg/models"
)

func newInfoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.obj|model.glb|model.gltf|model.stl>",
		Short: "Display model information",
		Long:  "Display the format, vertex and triangle counts, bounding box, dimensions and the camera state auto-fit would frame the model with.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				return runInfo(cmd.Context(), cmd.OutOrStdout(), e, args[0])
			})
		},
	}
}

func runInfo(ctx context.Context, w io.Writer, e *env, modelPath string) error {
	st, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	info, err := models.LoadContext(ctx, modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	ctrl, err := e.controller()
	if err != nil {
		return err
	}
	fit := ctrl.AutoFit(info.Bounds, e.cfg.ViewportExtent)

	b := info.Bounds
	size := b.Size()
	center := b.Center()
	dims := info.Dimensions()

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(modelPath))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(string(info.Format)))
	fmt.Fprintf(w, "Size:       %.2f KB\n", float64(st.Size())/1024)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", info.Vertices)
	fmt.Fprintf(w, "Triangles:  %d\n", info.Triangles)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z)
	fmt.Fprintf(w, "Bounds Max: (%.3f, %.3f, %.3f)\n", b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Fprintf(w, "Extent:     %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	fmt.Fprintf(w, "Height:     %.3f\n", dims.Height)
	fmt.Fprintf(w, "Diameter:   %.3f\n", dims.Diameter)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Framing:    %s\n", ctrl.Config().Framing)
	fmt.Fprintf(w, "Camera:     %s\n", fit.State)
	if fit.ModelScale != 1 {
		fmt.Fprintf(w, "Scale:      %.3f\n", fit.ModelScale)
	}
	if errors.Is(fit.Err, camera.ErrDegenerateBounds) {
		fmt.Fprintf(w, "Warning:    %v, using fallback radius\n", fit.Err)
	}
	return nil
}
