package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/internal/viewer"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

var (
	viewOps     string
	viewNotes   string
	viewCompact int
	viewNoSave  bool
	viewResume  string
	viewWidth   int
	viewHeight  int
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the cube in a window and turn it from the keyboard",
	Long: `Open a window with the animated cube. Typed face letters turn the cube:
uppercase clockwise, lowercase counter-clockwise, ctrl with the letter a
half turn. Drag with the left mouse button to orbit, right-click to reset
the view, Esc to quit.

Examples:
  cuberender view
  cuberender view --ops "R U R' U'"
  cuberender view --resume last`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewOps, "ops", "", "Ops to apply before the window opens")
	viewCmd.Flags().StringVar(&viewNotes, "notes", "", "Notes stored with the session")
	viewCmd.Flags().IntVar(&viewCompact, "compact", 0, "Compact the op log after this many ops (default: state file value)")
	viewCmd.Flags().BoolVar(&viewNoSave, "no-save", false, "Do not store the session")
	viewCmd.Flags().StringVar(&viewResume, "resume", "", "Resume an unfinished session (id, prefix or \"last\")")
	viewCmd.Flags().IntVar(&viewWidth, "width", 960, "Window width")
	viewCmd.Flags().IntVar(&viewHeight, "height", 720, "Window height")
}

func runView(cmd *cobra.Command, args []string) error {
	preload, err := types.ParseOps(viewOps)
	if err != nil {
		return fmt.Errorf("invalid --ops: %w", err)
	}

	r, err := newRecording(recordingOptions{
		source:  storage.SourceKeyboard,
		notes:   viewNotes,
		compact: viewCompact,
		noSave:  viewNoSave,
		resume:  viewResume,
	})
	if err != nil {
		return err
	}
	defer r.close()

	if len(preload) > 0 {
		if r.sess != nil {
			err = r.sess.RecordOps(preload...)
		} else {
			err = r.rec.RecordOp(preload...)
		}
		if err != nil {
			return fmt.Errorf("failed to apply --ops: %w", err)
		}
	}

	win := viewer.New(viewer.Config{
		Title:  "cuberender",
		Width:  viewWidth,
		Height: viewHeight,
		Input:  r.input(),
		Source: r.rec,
		Logger: logger,
	})
	if err := win.Run(); err != nil {
		return err
	}

	if r.sess != nil {
		fmt.Printf("Session %s: %d ops stored\n", shortID(r.sess.ID()), r.sess.OpCount())
	}
	return nil
}
