package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session sources
const (
	SourceKeyboard = "keyboard"
	SourceGoCube   = "gocube"
	SourceImport   = "import"
)

// ErrAmbiguousID is returned when an id prefix matches more than one session.
var ErrAmbiguousID = errors.New("storage: ambiguous session id prefix")

// Session represents a recording session in the database.
type Session struct {
	SessionID  string
	StartedAt  time.Time
	EndedAt    *time.Time
	DurationMs *int64
	Source     string
	DeviceName *string
	Notes      *string
	OpCount    int
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create creates a new session and returns its ID.
func (r *SessionRepository) Create(source, deviceName, notes string) (string, error) {
	id := uuid.New().String()

	_, err := r.db.Exec(`
		INSERT INTO sessions (session_id, started_at, source, device_name, notes)
		VALUES (?, ?, ?, ?, ?)
	`, id, formatTime(time.Now()), source, nullable(deviceName), nullable(notes))
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

// End marks a session as complete.
func (r *SessionRepository) End(sessionID string) error {
	var startedAtStr string
	err := r.db.QueryRow("SELECT started_at FROM sessions WHERE session_id = ?", sessionID).Scan(&startedAtStr)
	if err != nil {
		return fmt.Errorf("failed to get session start time: %w", err)
	}

	endedAt := time.Now()
	durationMs := endedAt.Sub(parseTime(startedAtStr)).Milliseconds()

	_, err = r.db.Exec(`
		UPDATE sessions
		SET ended_at = ?, duration_ms = ?
		WHERE session_id = ?
	`, formatTime(endedAt), durationMs, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	return nil
}

const sessionColumns = `
	s.session_id, s.started_at, s.ended_at, s.duration_ms, s.source, s.device_name, s.notes,
	(SELECT COUNT(*) FROM ops o WHERE o.session_id = s.session_id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var startedAtStr string
	var endedAtStr sql.NullString

	err := row.Scan(
		&s.SessionID, &startedAtStr, &endedAtStr, &s.DurationMs,
		&s.Source, &s.DeviceName, &s.Notes, &s.OpCount,
	)
	if err != nil {
		return nil, err
	}

	s.StartedAt = parseTime(startedAtStr)
	if endedAtStr.Valid {
		t := parseTime(endedAtStr.String)
		s.EndedAt = &t
	}
	return &s, nil
}

// Get retrieves a session by ID. It returns nil when there is no such
// session.
func (r *SessionRepository) Get(sessionID string) (*Session, error) {
	row := r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions s WHERE s.session_id = ?`, sessionID)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// GetLast retrieves the most recent session.
func (r *SessionRepository) GetLast() (*Session, error) {
	row := r.db.QueryRow(`
		SELECT ` + sessionColumns + ` FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT 1
	`)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last session: %w", err)
	}
	return s, nil
}

// Resolve finds a session by full ID or unique ID prefix. "last" names the
// most recent session.
func (r *SessionRepository) Resolve(ref string) (*Session, error) {
	if ref == "last" {
		return r.GetLast()
	}

	rows, err := r.db.Query(`SELECT session_id FROM sessions WHERE session_id LIKE ? || '%' LIMIT 2`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	switch len(ids) {
	case 0:
		return nil, nil
	case 1:
		return r.Get(ids[0])
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
	}
}

// List retrieves the most recent sessions, newest first.
func (r *SessionRepository) List(limit int) ([]Session, error) {
	rows, err := r.db.Query(`
		SELECT `+sessionColumns+` FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

// Delete deletes a session and its ops.
func (r *SessionRepository) Delete(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
