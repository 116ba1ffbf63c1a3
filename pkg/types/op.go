// Package types contains the operation token shared by the transform engine,
// the input sources and storage.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNotation is returned when text cannot be parsed as an operation.
var ErrInvalidNotation = errors.New("types: invalid operation notation")

// Face represents a cube face in standard notation.
type Face string

const (
	FaceF Face = "F" // Front
	FaceB Face = "B" // Back
	FaceL Face = "L" // Left
	FaceR Face = "R" // Right
	FaceU Face = "U" // Up
	FaceD Face = "D" // Down
)

// Faces lists the six faces in table order.
var Faces = [...]Face{FaceF, FaceB, FaceL, FaceR, FaceU, FaceD}

// Index returns the table index of the face, or -1 for an unknown face.
func (f Face) Index() int {
	switch f {
	case FaceF:
		return 0
	case FaceB:
		return 1
	case FaceL:
		return 2
	case FaceR:
		return 3
	case FaceU:
		return 4
	case FaceD:
		return 5
	default:
		return -1
	}
}

// FaceFromLetter maps a face letter in either case to its Face.
func FaceFromLetter(r rune) (Face, bool) {
	switch r {
	case 'F', 'f':
		return FaceF, true
	case 'B', 'b':
		return FaceB, true
	case 'L', 'l':
		return FaceL, true
	case 'R', 'r':
		return FaceR, true
	case 'U', 'u':
		return FaceU, true
	case 'D', 'd':
		return FaceD, true
	default:
		return "", false
	}
}

// Turn represents the direction and magnitude of a face turn.
type Turn int

const (
	TurnCW  Turn = 1  // Clockwise quarter turn
	TurnCCW Turn = -1 // Counter-clockwise quarter turn
	Turn180 Turn = 2  // Half turn
)

// Turns lists the three turn kinds in table order.
var Turns = [...]Turn{TurnCW, TurnCCW, Turn180}

// Index returns the table index of the turn, or -1 for an unknown turn.
func (t Turn) Index() int {
	switch t {
	case TurnCW:
		return 0
	case TurnCCW:
		return 1
	case Turn180:
		return 2
	default:
		return -1
	}
}

// Op is a single face-turn operation token, e.g. F, F' or F2.
type Op struct {
	Face Face `json:"face"`
	Turn Turn `json:"turn"`
}

// Valid reports whether the op is one of the 18 known tokens.
func (o Op) Valid() bool {
	return o.Face.Index() >= 0 && o.Turn.Index() >= 0
}

// Notation returns the standard notation string for this op.
// Examples: F, F', F2
func (o Op) Notation() string {
	suffix := ""
	switch o.Turn {
	case TurnCCW:
		suffix = "'"
	case Turn180:
		suffix = "2"
	}
	return string(o.Face) + suffix
}

// String returns the notation string (alias for Notation).
func (o Op) String() string {
	return o.Notation()
}

// Inverse returns the op that undoes this one.
func (o Op) Inverse() Op {
	inv := o
	switch o.Turn {
	case TurnCW:
		inv.Turn = TurnCCW
	case TurnCCW:
		inv.Turn = TurnCW
	// Turn180 is its own inverse
	}
	return inv
}

// Merge combines two same-face ops into one. It returns nil when the faces
// differ or when the ops cancel out completely.
func (o Op) Merge(other Op) *Op {
	if o.Face != other.Face {
		return nil
	}

	quarter := func(t Turn) int {
		if t == Turn180 {
			return 2
		}
		return int(t)
	}

	combined := ((quarter(o.Turn)+quarter(other.Turn))%4 + 4) % 4
	switch combined {
	case 0:
		return nil
	case 1:
		return &Op{Face: o.Face, Turn: TurnCW}
	case 2:
		return &Op{Face: o.Face, Turn: Turn180}
	default:
		return &Op{Face: o.Face, Turn: TurnCCW}
	}
}

// AllOps returns the 18 operation tokens, clockwise first, then
// counter-clockwise, then half turns.
func AllOps() []Op {
	ops := make([]Op, 0, len(Faces)*len(Turns))
	for _, t := range Turns {
		for _, f := range Faces {
			ops = append(ops, Op{Face: f, Turn: t})
		}
	}
	return ops
}

// ParseOp parses a single token such as F, F' or F2.
// Face letters must be uppercase.
func ParseOp(s string) (Op, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return Op{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	face := Face(s[:1])
	if face.Index() < 0 {
		return Op{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	turn := TurnCW
	if len(s) == 2 {
		switch s[1] {
		case '\'', '`':
			turn = TurnCCW
		case '2':
			turn = Turn180
		default:
			return Op{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
		}
	}

	return Op{Face: face, Turn: turn}, nil
}

// ParseOps parses a whitespace-separated sequence of tokens.
// Example: "F R U' B2"
func ParseOps(s string) ([]Op, error) {
	parts := strings.Fields(s)
	ops := make([]Op, 0, len(parts))

	for i, part := range parts {
		op, err := ParseOp(part)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		ops = append(ops, op)
	}

	return ops, nil
}

// FormatOps formats ops as a space-separated notation string.
func FormatOps(ops []Op) string {
	if len(ops) == 0 {
		return ""
	}

	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.Notation()
	}

	return strings.Join(parts, " ")
}
