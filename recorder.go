package cuberender

import (
	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender/internal/operation"
)

// Recorder is the operation log behind an animated cube. Input sources append
// to it; the frame loop reads CurrentTransforms once per frame.
//
// A Recorder is safe for concurrent use.
type Recorder struct {
	log    *operation.Log
	config *config
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Recorder{
		log:    operation.NewLog(cfg.compactAfter),
		config: cfg,
	}
}

// Record maps a typed key to an operation and appends it. Lowercase face
// letters record a counter-clockwise turn, uppercase letters with ctrl held a
// half turn, and uppercase letters a clockwise turn. Other keys are ignored.
// It returns the recorded operation and whether anything was recorded.
func (r *Recorder) Record(key rune, ctrlHeld bool) (Op, bool) {
	op, ok := operation.KeyToOp(key, ctrlHeld)
	if !ok {
		return Op{}, false
	}
	if err := r.append(op); err != nil {
		// KeyToOp only produces table ops.
		r.config.logger.WithError(err).Error("keyboard produced an invalid op")
		return Op{}, false
	}
	return op, true
}

// RecordOp appends operations in order. It stops at the first invalid
// operation and returns ErrInvalidOp; earlier operations stay recorded.
func (r *Recorder) RecordOp(ops ...Op) error {
	for _, op := range ops {
		if err := r.append(op); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) append(op Op) error {
	if err := r.log.Append(op); err != nil {
		return err
	}

	r.config.logger.WithFields(logrus.Fields{
		"op":    op.Notation(),
		"count": r.log.Len(),
	}).Debug("recorded op")

	if r.config.onRecord != nil {
		r.config.onRecord(op)
	}
	return nil
}

// CurrentTransforms replays the log and returns the per-cubie matrices. The
// result is recomputed on every call.
func (r *Recorder) CurrentTransforms() Transforms {
	return r.log.Transforms()
}

// CurrentState replays the log and returns slot and matrix of every cubie.
func (r *Recorder) CurrentState() Snapshot {
	return r.log.Snapshot()
}

// Ops returns the operations recorded since the last compaction.
func (r *Recorder) Ops() []Op {
	return r.log.Ops()
}

// Len returns the number of operations ever recorded.
func (r *Recorder) Len() int {
	return r.log.Len()
}

// Reset discards the log and returns every cubie to its home slot.
func (r *Recorder) Reset() {
	r.log.Reset()
	r.config.logger.Debug("recorder reset")
}
