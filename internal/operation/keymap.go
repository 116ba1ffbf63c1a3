package operation

import (
	"unicode"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// KeyToOp maps a typed key to an operation:
//
//	lowercase face letter          -> counter-clockwise (f -> F')
//	uppercase face letter + ctrl   -> half turn        (F -> F2)
//	uppercase face letter          -> clockwise        (F -> F)
//
// Any other key reports false.
func KeyToOp(key rune, ctrlHeld bool) (types.Op, bool) {
	face, ok := types.FaceFromLetter(key)
	if !ok {
		return types.Op{}, false
	}

	switch {
	case unicode.IsLower(key):
		return types.Op{Face: face, Turn: types.TurnCCW}, true
	case ctrlHeld:
		return types.Op{Face: face, Turn: types.Turn180}, true
	default:
		return types.Op{Face: face, Turn: types.TurnCW}, true
	}
}
