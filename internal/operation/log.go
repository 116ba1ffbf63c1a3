package operation

import (
	"fmt"
	"sync"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Log is an append-only operation history. Appends and reads may come from
// different goroutines (an input callback and a frame loop); a RWMutex
// serialises them.
//
// When compactAfter is positive, a live history longer than compactAfter is
// baked into the base snapshot and cleared. Quarter-turn matrices are exact,
// so compaction does not change the reduced transforms.
type Log struct {
	mu           sync.RWMutex
	base         Snapshot
	ops          []types.Op
	compacted    int
	compactAfter int
}

// NewLog creates an empty log. compactAfter <= 0 disables compaction.
func NewLog(compactAfter int) *Log {
	return &Log{
		base:         Identity(),
		compactAfter: compactAfter,
	}
}

// Append validates op and adds it to the history.
func (l *Log) Append(op types.Op) error {
	if _, err := Lookup(op); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ops = append(l.ops, op)
	if l.compactAfter > 0 && len(l.ops) > l.compactAfter {
		l.base = mustReduceFrom(l.base, l.ops)
		l.compacted += len(l.ops)
		l.ops = nil
	}
	return nil
}

// Ops returns a copy of the history recorded since the last compaction.
func (l *Log) Ops() []types.Op {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Op, len(l.ops))
	copy(out, l.ops)
	return out
}

// Len returns the total number of ops appended, compacted ones included.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.compacted + len(l.ops)
}

// Compacted returns how many ops have been baked into the base snapshot.
func (l *Log) Compacted() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.compacted
}

// Snapshot replays the live history over the base snapshot. It is recomputed
// on every call.
func (l *Log) Snapshot() Snapshot {
	l.mu.RLock()
	base, ops := l.base, l.ops
	l.mu.RUnlock()

	return mustReduceFrom(base, ops)
}

// Transforms returns the per-cubie matrices of the current history.
func (l *Log) Transforms() Transforms {
	return l.Snapshot().Transforms()
}

// Reset clears the history and the base snapshot.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.base = Identity()
	l.ops = nil
	l.compacted = 0
}

// mustReduceFrom is only called on histories that passed Append validation.
func mustReduceFrom(base Snapshot, ops []types.Op) Snapshot {
	s, err := ReduceFrom(base, ops)
	if err != nil {
		panic(fmt.Sprintf("operation: log holds an unvalidated op: %v", err))
	}
	return s
}
