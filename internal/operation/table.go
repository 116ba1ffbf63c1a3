// Package operation implements the cubie transform engine: the rotation and
// position tables for the 18 face-turn operations, the reducer that folds an
// operation history into 27 per-cubie matrices, and the append-only log that
// feeds it.
package operation

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// ErrInvalidOp is returned when an operation has no table entry.
var ErrInvalidOp = errors.New("operation: invalid operation")

// Entry is the rotation and slot permutation of one operation.
type Entry struct {
	Op        types.Op
	Rotation  mgl32.Mat4
	Positions PositionMap
}

// table is built once at startup and never mutated.
var table = buildTable()

// buildTable derives all 18 entries from the six clockwise ones. The
// counter-clockwise entry is the exact inverse of the clockwise one; the half
// turn is the clockwise entry applied twice.
func buildTable() [len(types.Faces)][len(types.Turns)]Entry {
	var t [len(types.Faces)][len(types.Turns)]Entry

	for fi, face := range types.Faces {
		cwRot, err := ClockwiseRotation(face)
		if err != nil {
			panic(err)
		}
		cwPos := newPositionMap(clockwisePositions[fi])

		t[fi][types.TurnCW.Index()] = Entry{
			Op:        types.Op{Face: face, Turn: types.TurnCW},
			Rotation:  cwRot,
			Positions: cwPos,
		}
		// The transpose of a rotation is its inverse.
		t[fi][types.TurnCCW.Index()] = Entry{
			Op:        types.Op{Face: face, Turn: types.TurnCCW},
			Rotation:  cwRot.Transpose(),
			Positions: cwPos.Invert(),
		}
		t[fi][types.Turn180.Index()] = Entry{
			Op:        types.Op{Face: face, Turn: types.Turn180},
			Rotation:  cwRot.Mul4(cwRot),
			Positions: cwPos.Then(cwPos),
		}
	}

	return t
}

// Lookup returns the table entry for op.
func Lookup(op types.Op) (Entry, error) {
	fi, ti := op.Face.Index(), op.Turn.Index()
	if fi < 0 || ti < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidOp, op.Notation())
	}
	return table[fi][ti], nil
}

// Entries returns all 18 entries, clockwise first, then counter-clockwise,
// then half turns.
func Entries() []Entry {
	entries := make([]Entry, 0, len(types.Faces)*len(types.Turns))
	for _, op := range types.AllOps() {
		e, _ := Lookup(op)
		entries = append(entries, e)
	}
	return entries
}
