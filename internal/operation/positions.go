package operation

// SlotCount is the number of position slots in the 3x3x3 grid.
// Slot s has grid coordinates x = s/9, y = (s/3)%3, z = s%3.
const SlotCount = 27

// PositionMap is a partial slot-to-slot mapping. Slots outside its domain
// are fixed points.
type PositionMap struct {
	to [SlotCount]int8
}

func emptyPositionMap() PositionMap {
	var m PositionMap
	for i := range m.to {
		m.to[i] = -1
	}
	return m
}

func newPositionMap(pairs map[int]int) PositionMap {
	m := emptyPositionMap()
	for from, to := range pairs {
		m.to[from] = int8(to)
	}
	return m
}

// Lookup returns where the cubie in slot moves to, and whether slot is in
// the map's domain.
func (m PositionMap) Lookup(slot int) (int, bool) {
	if slot < 0 || slot >= SlotCount || m.to[slot] < 0 {
		return slot, false
	}
	return int(m.to[slot]), true
}

// Domain returns the mapped slots in ascending order.
func (m PositionMap) Domain() []int {
	var d []int
	for s, t := range m.to {
		if t >= 0 {
			d = append(d, s)
		}
	}
	return d
}

// Len returns the size of the domain.
func (m PositionMap) Len() int {
	n := 0
	for _, t := range m.to {
		if t >= 0 {
			n++
		}
	}
	return n
}

// Invert swaps domain and codomain of every mapped pair.
func (m PositionMap) Invert() PositionMap {
	inv := emptyPositionMap()
	for s, t := range m.to {
		if t >= 0 {
			inv.to[t] = int8(s)
		}
	}
	return inv
}

// Then returns the map that applies m first and next second.
func (m PositionMap) Then(next PositionMap) PositionMap {
	out := emptyPositionMap()
	for s := 0; s < SlotCount; s++ {
		mid, inFirst := m.Lookup(s)
		end, inSecond := next.Lookup(mid)
		if inFirst || inSecond {
			out.to[s] = int8(end)
		}
	}
	return out
}

// IsIdentity reports whether every mapped slot maps to itself.
func (m PositionMap) IsIdentity() bool {
	for s, t := range m.to {
		if t >= 0 && int(t) != s {
			return false
		}
	}
	return true
}

// Pairs returns the mapping as a Go map.
func (m PositionMap) Pairs() map[int]int {
	pairs := make(map[int]int)
	for s, t := range m.to {
		if t >= 0 {
			pairs[s] = int(t)
		}
	}
	return pairs
}

// clockwisePositions holds the hand-authored clockwise permutation of each
// face, indexed by types.Face.Index(). Only the eight corner and edge slots
// of the face are listed; the face centre is a fixed point.
//
// Unfolded, with F facing the viewer:
//
//	       6 15 24
//	       7 16 25
//	       8 17 26
//	6 7 8  8 17 26  26 25 24  24 15  6
//	3 4 5  5 14 23  23 22 21  21 12  3
//	0 1 2  2 11 20  20 19 18  18  9  0
//	       2 11 20
//	       1 10 19
//	       0  9 18
var clockwisePositions = [...]map[int]int{
	// F
	{2: 8, 5: 17, 8: 26, 11: 5, 17: 23, 20: 2, 23: 11, 26: 20},
	// B
	{0: 18, 3: 9, 6: 0, 9: 21, 15: 3, 18: 24, 21: 15, 24: 6},
	// L
	{0: 6, 3: 7, 6: 8, 1: 3, 7: 5, 2: 0, 5: 1, 8: 2},
	// R
	{20: 26, 23: 25, 26: 24, 19: 23, 25: 21, 18: 20, 21: 19, 24: 18},
	// U
	{8: 6, 7: 15, 6: 24, 17: 7, 15: 25, 26: 8, 25: 17, 24: 26},
	// D
	{0: 2, 1: 11, 2: 20, 9: 1, 11: 19, 18: 0, 19: 9, 20: 18},
}
