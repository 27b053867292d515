// orbitview - Terminal orbit camera previewer
// Frame OBJ, STL and glTF models with an orbit camera and keep camera
// presets and viewer settings between runs.
//
// Controls (orbitview view):
//
//	Mouse drag        - Rotate around the target
//	Ctrl/Meta + drag  - Pan the target
//	Alt + drag        - Zoom
//	Scroll            - Zoom in/out
//	R                 - Reset to the home view
//	P                 - Save the current view as a preset
//	1-9               - Apply a saved preset
//	?                 - Toggle HUD overlay
//	Esc, Ctrl+C       - Quit
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}
