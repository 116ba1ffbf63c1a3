package cli

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/internal/scene"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

var (
	transformsSession string
	transformsFormat  string
	transformsOutput  string
	transformsModel   bool
)

var transformsCmd = &cobra.Command{
	Use:   "transforms [ops...]",
	Short: "Print the per-cubie transforms after a sequence of ops",
	Long: `Replay ops from a solved cube and print one 4x4 matrix per cubie.

Formats:
  text    one line per cubie with its slot and column-major matrix
  json    array of {cubie, slot, matrix}
  binary  27*16 little-endian float32 values, ready for upload

With --model the translation to each cubie's home position is included, so
the output holds the final model matrices.

Examples:
  cuberender transforms "R U R' U'"
  cuberender transforms --session last --format json
  cuberender transforms F2 B --format binary -o transforms.bin`,
	RunE: runTransforms,
}

func init() {
	rootCmd.AddCommand(transformsCmd)
	transformsCmd.Flags().StringVar(&transformsSession, "session", "", "Use the ops of a stored session (id, prefix or \"last\")")
	transformsCmd.Flags().StringVar(&transformsFormat, "format", "text", "Output format (text, json, binary)")
	transformsCmd.Flags().StringVarP(&transformsOutput, "output", "o", "", "Output file (default: stdout)")
	transformsCmd.Flags().BoolVar(&transformsModel, "model", false, "Include the home translation of each cubie")
}

func runTransforms(cmd *cobra.Command, args []string) error {
	var ops []types.Op
	var err error

	if transformsSession != "" {
		if len(args) > 0 {
			return fmt.Errorf("give either ops or --session, not both")
		}
		ops, err = loadSessionOps(transformsSession)
	} else {
		ops, err = types.ParseOps(strings.Join(args, " "))
	}
	if err != nil {
		return err
	}

	snap, err := operation.ReduceFrom(operation.Identity(), ops)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if transformsOutput != "" {
		dir := filepath.Dir(transformsOutput)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(transformsOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeTransforms(w, transformsFormat, snap, transformsModel); err != nil {
		return err
	}

	if transformsOutput != "" {
		fmt.Printf("Wrote transforms after %d ops to %s\n", len(ops), transformsOutput)
	}
	return nil
}

func loadSessionOps(ref string) ([]types.Op, error) {
	stateFile, err := loadState()
	if err != nil {
		return nil, err
	}
	db, err := openDB(stateFile)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	s, err := storage.NewSessionRepository(db).Resolve(ref)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("session not found: %s", ref)
	}
	return storage.NewOpRepository(db).Ops(s.SessionID)
}

type transformJSON struct {
	Cubie  int         `json:"cubie"`
	Slot   int         `json:"slot"`
	Matrix [16]float32 `json:"matrix"`
}

// writeTransforms writes the matrices of snap in the given format.
func writeTransforms(w io.Writer, format string, snap operation.Snapshot, model bool) error {
	matrices := snap.Transforms()
	if model {
		matrices = scene.InstanceMatrices(matrices)
	}

	switch strings.ToLower(format) {
	case "text", "txt":
		for i, m := range matrices {
			vals := make([]string, len(m))
			for k, v := range m {
				vals[k] = fmt.Sprintf("%g", v)
			}
			if _, err := fmt.Fprintf(w, "cubie %2d  slot %2d  [%s]\n", i, snap[i].Position, strings.Join(vals, " ")); err != nil {
				return err
			}
		}
		return nil

	case "json":
		out := make([]transformJSON, len(matrices))
		for i, m := range matrices {
			out[i] = transformJSON{Cubie: i, Slot: snap[i].Position, Matrix: m}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "binary", "bin":
		// Same layout as scene.InstanceBuffer.
		buf := make([]float32, 0, len(matrices)*scene.MatrixFloats)
		for _, m := range matrices {
			buf = append(buf, m[:]...)
		}
		return binary.Write(w, binary.LittleEndian, buf)

	default:
		return fmt.Errorf("unknown format: %s (use text, json or binary)", format)
	}
}
