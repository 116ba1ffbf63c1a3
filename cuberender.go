// Package cuberender animates the 27 cubies of a 3x3x3 cube under face turns.
//
// # Features
//
//   - 18 face-turn operations (F, F', F2, ... D2) with exact rotation matrices
//   - Per-cubie world matrices replayed from an append-only operation log
//   - Keyboard mapping for interactive input
//   - Optional snapshot compaction for long-running sessions
//
// # Quick Start
//
//	rec := cuberender.NewRecorder()
//
//	// Keyboard input: uppercase = clockwise, lowercase = counter-clockwise,
//	// uppercase with ctrl = half turn.
//	rec.Record('F', false) // F
//	rec.Record('r', false) // R'
//	rec.Record('U', true)  // U2
//
//	// Or record operations directly
//	rec.RecordOp(cuberender.B2)
//
//	// Once per frame: each cubie matrix rotates the cubie about the cube
//	// centre, after it has been translated to its home slot.
//	for i, m := range rec.CurrentTransforms() {
//	    home := scene.Home(i)
//	    model := m.Mul4(mgl32.Translate3D(home.X(), home.Y(), home.Z()))
//	    ...
//	}
//
// # Stateless reduction
//
// Reduce replays a history from the identity state without a recorder:
//
//	ops, _ := cuberender.ParseOps("F R U' R'")
//	transforms, err := cuberender.Reduce(ops)
package cuberender
