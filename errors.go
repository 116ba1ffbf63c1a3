package cuberender

import (
	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Sentinel errors for the cuberender package.
var (
	// ErrInvalidOp is returned when an operation has no rotation or
	// permutation entry.
	ErrInvalidOp = operation.ErrInvalidOp

	// ErrInvalidNotation is returned when text cannot be parsed as an
	// operation.
	ErrInvalidNotation = types.ErrInvalidNotation
)
