package gocube

import (
	"fmt"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// ColorToFace maps GoCube centre colours to faces, holding the cube with
// white on top and green in front.
var ColorToFace = map[string]types.Face{
	"white":  types.FaceU,
	"yellow": types.FaceD,
	"green":  types.FaceF,
	"blue":   types.FaceB,
	"red":    types.FaceR,
	"orange": types.FaceL,
}

// RotationToOp converts a rotation event to a quarter-turn op.
func RotationToOp(rot RotationEvent) (types.Op, error) {
	face, ok := ColorToFace[rot.Color]
	if !ok {
		return types.Op{}, fmt.Errorf("no face for colour %q", rot.Color)
	}

	turn := types.TurnCCW
	if rot.Clockwise {
		turn = types.TurnCW
	}
	return types.Op{Face: face, Turn: turn}, nil
}

// RotationsToOps converts the events of one notification to ops, merging
// adjacent turns of the same face.
func RotationsToOps(rotations []RotationEvent) ([]types.Op, error) {
	if len(rotations) == 0 {
		return nil, nil
	}

	ops := make([]types.Op, 0, len(rotations))
	for _, rot := range rotations {
		op, err := RotationToOp(rot)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return MergeOps(ops), nil
}

// MergeOps merges adjacent same-face ops.
// For example: R R becomes R2, R R R becomes R', R R R R cancels out.
func MergeOps(ops []types.Op) []types.Op {
	if len(ops) <= 1 {
		return ops
	}

	result := make([]types.Op, 0, len(ops))
	for _, op := range ops {
		if len(result) == 0 {
			result = append(result, op)
			continue
		}

		last := &result[len(result)-1]
		if last.Face != op.Face {
			result = append(result, op)
			continue
		}

		if merged := last.Merge(op); merged == nil {
			// Cancelled out
			result = result[:len(result)-1]
		} else {
			*last = *merged
		}
	}

	return result
}
