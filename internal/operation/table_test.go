package operation

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

const tolerance = 1e-5

// near compares entry by entry with an absolute tolerance.
func near(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tolerance {
			return false
		}
	}
	return true
}

func nearMat(a, b mgl32.Mat4) bool { return near(a[:], b[:]) }

func mustLookup(t *testing.T, op types.Op) Entry {
	t.Helper()
	e, err := Lookup(op)
	if err != nil {
		t.Fatalf("Lookup(%v) failed: %v", op, err)
	}
	return e
}

// gridPoint returns the centred grid coordinates of a slot.
func gridPoint(slot int) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(slot/9 - 1),
		float32((slot/3)%3 - 1),
		float32(slot%3 - 1),
		1,
	}
}

func TestEveryOpHasEntry(t *testing.T) {
	entries := Entries()
	if len(entries) != 18 {
		t.Fatalf("expected 18 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Positions.Len() != 8 {
			t.Errorf("%v moves %d slots, want 8", e.Op, e.Positions.Len())
		}
	}
}

func TestLookupRejectsUnknownOp(t *testing.T) {
	for _, op := range []types.Op{{}, {Face: "M", Turn: types.TurnCW}, {Face: types.FaceF, Turn: 4}} {
		if _, err := Lookup(op); !errors.Is(err, ErrInvalidOp) {
			t.Errorf("Lookup(%#v) error = %v, want ErrInvalidOp", op, err)
		}
	}
}

func TestPermutationIsBijectionOnDomain(t *testing.T) {
	for _, e := range Entries() {
		domain := e.Positions.Domain()
		image := make(map[int]bool)
		for _, s := range domain {
			to, _ := e.Positions.Lookup(s)
			image[to] = true
		}
		if len(image) != len(domain) {
			t.Errorf("%v is not injective", e.Op)
		}
		for to := range image {
			if _, ok := e.Positions.Lookup(to); !ok {
				t.Errorf("%v maps into slot %d outside its domain", e.Op, to)
			}
		}
	}
}

func TestCoreAndCentresAreFixed(t *testing.T) {
	// The core and the six face centres are never listed.
	for _, slot := range []int{4, 10, 12, 13, 14, 16, 22} {
		for _, e := range Entries() {
			if _, ok := e.Positions.Lookup(slot); ok {
				t.Errorf("%v should not move slot %d", e.Op, slot)
			}
		}
	}
}

func TestCounterClockwiseIsInverse(t *testing.T) {
	for _, face := range types.Faces {
		cw := mustLookup(t, types.Op{Face: face, Turn: types.TurnCW})
		ccw := mustLookup(t, types.Op{Face: face, Turn: types.TurnCCW})

		if !cw.Positions.Then(ccw.Positions).IsIdentity() {
			t.Errorf("%s then %s' should be identity on the domain", face, face)
		}
		if !ccw.Positions.Then(cw.Positions).IsIdentity() {
			t.Errorf("%s' then %s should be identity on the domain", face, face)
		}
		for _, s := range cw.Positions.Domain() {
			to, _ := cw.Positions.Lookup(s)
			back, ok := ccw.Positions.Lookup(to)
			if !ok || back != s {
				t.Errorf("%s' should map %d back to %d, got %d", face, to, s, back)
			}
		}

		prod := cw.Rotation.Mul4(ccw.Rotation)
		if !nearMat(prod, mgl32.Ident4()) {
			t.Errorf("rotation(%s) * rotation(%s') = %v, want identity", face, face, prod)
		}
	}
}

func TestHalfTurnIsClockwiseTwice(t *testing.T) {
	for _, face := range types.Faces {
		cw := mustLookup(t, types.Op{Face: face, Turn: types.TurnCW})
		half := mustLookup(t, types.Op{Face: face, Turn: types.Turn180})

		for _, s := range cw.Positions.Domain() {
			mid, _ := cw.Positions.Lookup(s)
			want, _ := cw.Positions.Lookup(mid)
			got, ok := half.Positions.Lookup(s)
			if !ok || got != want {
				t.Errorf("%s2 maps %d to %d, want %d", face, s, got, want)
			}
		}

		if !half.Positions.Then(half.Positions).IsIdentity() {
			t.Errorf("%s2 twice should be identity on the domain", face)
		}

		twice := cw.Rotation.Mul4(cw.Rotation)
		if !nearMat(half.Rotation, twice) {
			t.Errorf("rotation(%s2) = %v, want %v", face, half.Rotation, twice)
		}

		axis, _ := AxisOf(face)
		direct := rotate(axis, math.Pi)
		if !nearMat(half.Rotation, direct) {
			t.Errorf("rotation(%s2) = %v, direct 180 construction = %v", face, half.Rotation, direct)
		}
	}
}

func TestFourQuarterTurnsAreIdentity(t *testing.T) {
	for _, face := range types.Faces {
		cw := mustLookup(t, types.Op{Face: face, Turn: types.TurnCW})

		p := cw.Positions
		m := cw.Rotation
		for i := 0; i < 3; i++ {
			p = p.Then(cw.Positions)
			m = cw.Rotation.Mul4(m)
		}
		if !p.IsIdentity() {
			t.Errorf("%s x4 should be the identity permutation", face)
		}
		if m != mgl32.Ident4() {
			t.Errorf("%s x4 rotation = %v, want exact identity", face, m)
		}
	}
}

func TestRotationMatchesPermutation(t *testing.T) {
	// Rotating the centre of a slot must land on the centre of the slot the
	// permutation sends it to.
	for _, e := range Entries() {
		for _, s := range e.Positions.Domain() {
			to, _ := e.Positions.Lookup(s)
			got := e.Rotation.Mul4x1(gridPoint(s))
			want := gridPoint(to)
			if !near(got[:], want[:]) {
				t.Errorf("%v: rotating slot %d gives %v, want slot %d at %v", e.Op, s, got, to, want)
			}
		}
	}
}

func TestClockwiseSeenFromOutside(t *testing.T) {
	// Looking at a face from outside along -n, a clockwise turn is a
	// negative rotation about the outward normal n.
	normals := map[types.Face]mgl32.Vec3{
		types.FaceF: {0, 0, 1},
		types.FaceB: {0, 0, -1},
		types.FaceL: {-1, 0, 0},
		types.FaceR: {1, 0, 0},
		types.FaceU: {0, 1, 0},
		types.FaceD: {0, -1, 0},
	}

	for face, n := range normals {
		rot, err := ClockwiseRotation(face)
		if err != nil {
			t.Fatalf("ClockwiseRotation(%s) failed: %v", face, err)
		}
		want := mgl32.HomogRotate3D(-math.Pi/2, n)
		if !nearMat(rot, want) {
			t.Errorf("%s rotation = %v, want %v", face, rot, want)
		}
	}
}

func TestClockwiseRotationUnknownFace(t *testing.T) {
	if _, err := ClockwiseRotation("X"); !errors.Is(err, ErrInvalidOp) {
		t.Errorf("expected ErrInvalidOp, got %v", err)
	}
}
