// Package session persists the operations of a recorder to storage.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender"
	"github.com/SeamusWaldron/cuberender/internal/config"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Errors
var (
	ErrInProgress   = errors.New("session: already recording")
	ErrNotRecording = errors.New("session: not recording")
	ErrNotFound     = errors.New("session: not found")
	ErrAlreadyEnded = errors.New("session: already ended")
	ErrNoRecorder   = errors.New("session: no recorder")
)

// State represents the current state of a recording session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the session state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session binds a recorder to a stored session. Every op recorded through
// the session is appended to the recorder and written to the database.
type Session struct {
	sessions  *storage.SessionRepository
	ops       *storage.OpRepository
	stateFile *config.StateFile
	logger    logrus.FieldLogger

	mu        sync.Mutex
	state     State
	id        string
	startTime time.Time
	nextIndex int
	rec       *cuberender.Recorder
}

// New creates a session manager. stateFile may be nil.
func New(db *storage.DB, stateFile *config.StateFile, logger logrus.FieldLogger) *Session {
	return &Session{
		sessions:  storage.NewSessionRepository(db),
		ops:       storage.NewOpRepository(db),
		stateFile: stateFile,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the current session ID.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// OpCount returns the number of ops stored for the session.
func (s *Session) OpCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIndex
}

// ElapsedMs returns the time since the session started.
func (s *Session) ElapsedMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return 0
	}
	return time.Since(s.startTime).Milliseconds()
}

// Start begins a new stored session that records into rec.
func (s *Session) Start(rec *cuberender.Recorder, source, deviceName, notes string) (string, error) {
	if rec == nil {
		return "", ErrNoRecorder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return "", ErrInProgress
	}

	id, err := s.sessions.Create(source, deviceName, notes)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}

	s.id = id
	s.startTime = time.Now()
	s.nextIndex = 0
	s.rec = rec
	s.state = StateRecording

	s.setActive(id)
	s.logger.WithFields(logrus.Fields{"session": id, "source": source}).Info("session started")

	return id, nil
}

// Resume reopens an unfinished session. Its stored ops are replayed into rec
// from the identity state, and later ops continue the same log.
func (s *Session) Resume(rec *cuberender.Recorder, sessionID string) error {
	if rec == nil {
		return ErrNoRecorder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return ErrInProgress
	}

	stored, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if stored.EndedAt != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyEnded, sessionID)
	}

	ops, err := s.ops.Ops(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load ops: %w", err)
	}
	next, err := s.ops.NextIndex(sessionID)
	if err != nil {
		return err
	}

	rec.Reset()
	if err := rec.RecordOp(ops...); err != nil {
		return fmt.Errorf("failed to replay session %s: %w", sessionID, err)
	}

	s.id = sessionID
	s.startTime = stored.StartedAt
	s.nextIndex = next
	s.rec = rec
	s.state = StateRecording

	s.setActive(sessionID)
	s.logger.WithFields(logrus.Fields{"session": sessionID, "ops": len(ops)}).Info("session resumed")

	return nil
}

// End finishes the current session.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return ErrNotRecording
	}

	if err := s.sessions.End(s.id); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	s.state = StateEnded
	if s.stateFile != nil {
		if err := s.stateFile.ClearActiveSession(); err != nil {
			s.logger.WithError(err).Warn("failed to clear active session")
		}
	}
	s.logger.WithFields(logrus.Fields{"session": s.id, "ops": s.nextIndex}).Info("session ended")

	return nil
}

// Record maps a typed key through the recorder and stores the resulting op.
// Storage failures are logged; the op stays in the recorder.
func (s *Session) Record(key rune, ctrlHeld bool) (types.Op, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return types.Op{}, false
	}

	op, ok := s.rec.Record(key, ctrlHeld)
	if !ok || s.state != StateRecording {
		return op, ok
	}

	raw := string(key)
	if ctrlHeld {
		raw = "ctrl+" + raw
	}
	if err := s.store(op, raw); err != nil {
		s.logger.WithError(err).WithField("op", op.Notation()).Error("failed to store op")
	}
	return op, true
}

// RecordOps appends ops to the recorder and stores them in order.
func (s *Session) RecordOps(ops ...types.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return ErrNoRecorder
	}

	for _, op := range ops {
		if err := s.rec.RecordOp(op); err != nil {
			return err
		}
		if s.state != StateRecording {
			continue
		}
		if err := s.store(op, ""); err != nil {
			return err
		}
	}
	return nil
}

// store must be called with s.mu held.
func (s *Session) store(op types.Op, rawKey string) error {
	tsMs := time.Since(s.startTime).Milliseconds()
	if _, err := s.ops.Create(s.id, s.nextIndex, tsMs, op, rawKey); err != nil {
		return fmt.Errorf("failed to store op %d: %w", s.nextIndex, err)
	}
	s.nextIndex++
	return nil
}

func (s *Session) setActive(id string) {
	if s.stateFile == nil {
		return
	}
	if err := s.stateFile.SetActiveSession(id); err != nil {
		s.logger.WithError(err).Warn("failed to save active session")
	}
}
