package operation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// State tracks one cubie: the slot it currently occupies and its accumulated
// world-frame rotation.
type State struct {
	Position int
	Matrix   mgl32.Mat4
}

// Snapshot holds the state of every cubie, indexed by the slot the cubie
// started in.
type Snapshot [SlotCount]State

// Transforms holds the accumulated matrix of every cubie, indexed by the slot
// the cubie started in. Matrices are column-major.
type Transforms [SlotCount]mgl32.Mat4

// Identity returns the snapshot before any operation: every cubie in its own
// slot with an identity matrix.
func Identity() Snapshot {
	var s Snapshot
	for i := range s {
		s[i] = State{Position: i, Matrix: mgl32.Ident4()}
	}
	return s
}

// IdentityTransforms returns 27 identity matrices.
func IdentityTransforms() Transforms {
	return Identity().Transforms()
}

// Apply returns the snapshot after op. Cubies whose current slot is outside
// the op's permutation are left untouched; the others move to the mapped slot
// and have the op's rotation composed on the outside of their matrix.
func (s Snapshot) Apply(op types.Op) (Snapshot, error) {
	entry, err := Lookup(op)
	if err != nil {
		return s, err
	}

	for i, st := range s {
		next, ok := entry.Positions.Lookup(st.Position)
		if !ok {
			continue
		}
		s[i] = State{
			Position: next,
			Matrix:   entry.Rotation.Mul4(st.Matrix),
		}
	}
	return s, nil
}

// Transforms returns the matrices of the snapshot.
func (s Snapshot) Transforms() Transforms {
	var t Transforms
	for i, st := range s {
		t[i] = st.Matrix
	}
	return t
}

// Occupants returns, for every slot, the starting slot of the cubie that now
// occupies it.
func (s Snapshot) Occupants() [SlotCount]int {
	var occ [SlotCount]int
	for i, st := range s {
		occ[st.Position] = i
	}
	return occ
}

// ReduceFrom folds ops over base, earliest op first.
func ReduceFrom(base Snapshot, ops []types.Op) (Snapshot, error) {
	s := base
	for i, op := range ops {
		var err error
		s, err = s.Apply(op)
		if err != nil {
			return base, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return s, nil
}

// Reduce replays ops from the identity snapshot and returns the resulting
// per-cubie matrices. An empty history gives 27 identity matrices.
func Reduce(ops []types.Op) (Transforms, error) {
	s, err := ReduceFrom(Identity(), ops)
	if err != nil {
		return Transforms{}, err
	}
	return s.Transforms(), nil
}
