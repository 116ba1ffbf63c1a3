package cuberender

import (
	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Op is a single face-turn operation token.
type Op = types.Op

// Face identifies one of the six cube faces.
type Face = types.Face

// Turn is the direction and magnitude of a face turn.
type Turn = types.Turn

// Transforms holds one column-major 4x4 matrix per cubie, indexed by the slot
// the cubie started in.
type Transforms = operation.Transforms

// Snapshot holds the slot and matrix of every cubie.
type Snapshot = operation.Snapshot

const (
	FaceF = types.FaceF
	FaceB = types.FaceB
	FaceL = types.FaceL
	FaceR = types.FaceR
	FaceU = types.FaceU
	FaceD = types.FaceD

	CW     = types.TurnCW
	CCW    = types.TurnCCW
	Double = types.Turn180
)

// Predefined operations.
//
// Example:
//
//	rec.RecordOp(cuberender.R, cuberender.U, cuberender.RPrime)
var (
	// Front face
	F      = Op{Face: FaceF, Turn: CW}     // Front clockwise
	FPrime = Op{Face: FaceF, Turn: CCW}    // Front counter-clockwise
	F2     = Op{Face: FaceF, Turn: Double} // Front 180

	// Back face
	B      = Op{Face: FaceB, Turn: CW}     // Back clockwise
	BPrime = Op{Face: FaceB, Turn: CCW}    // Back counter-clockwise
	B2     = Op{Face: FaceB, Turn: Double} // Back 180

	// Left face
	L      = Op{Face: FaceL, Turn: CW}     // Left clockwise
	LPrime = Op{Face: FaceL, Turn: CCW}    // Left counter-clockwise
	L2     = Op{Face: FaceL, Turn: Double} // Left 180

	// Right face
	R      = Op{Face: FaceR, Turn: CW}     // Right clockwise
	RPrime = Op{Face: FaceR, Turn: CCW}    // Right counter-clockwise
	R2     = Op{Face: FaceR, Turn: Double} // Right 180

	// Up face
	U      = Op{Face: FaceU, Turn: CW}     // Up clockwise
	UPrime = Op{Face: FaceU, Turn: CCW}    // Up counter-clockwise
	U2     = Op{Face: FaceU, Turn: Double} // Up 180

	// Down face
	D      = Op{Face: FaceD, Turn: CW}     // Down clockwise
	DPrime = Op{Face: FaceD, Turn: CCW}    // Down counter-clockwise
	D2     = Op{Face: FaceD, Turn: Double} // Down 180
)

// ParseOp parses a single token such as R, R' or R2.
func ParseOp(s string) (Op, error) {
	return types.ParseOp(s)
}

// ParseOps parses a space-separated sequence of tokens.
func ParseOps(s string) ([]Op, error) {
	return types.ParseOps(s)
}

// FormatOps formats ops as a space-separated notation string.
func FormatOps(ops []Op) string {
	return types.FormatOps(ops)
}

// Reduce replays ops from the identity state and returns the per-cubie
// matrices. It fails with ErrInvalidOp on a token without a table entry.
func Reduce(ops []Op) (Transforms, error) {
	return operation.Reduce(ops)
}

// Identity returns 27 identity matrices.
func Identity() Transforms {
	return operation.IdentityTransforms()
}
