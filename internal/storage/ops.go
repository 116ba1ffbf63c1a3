package storage

import (
	"database/sql"
	"fmt"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// OpRecord is a recorded operation in the database.
type OpRecord struct {
	OpID      int64
	SessionID string
	OpIndex   int
	TsMs      int64
	Face      string
	Turn      int
	Notation  string
	RawKey    *string
}

// Op returns the operation token of the record.
func (r OpRecord) Op() types.Op {
	return types.Op{Face: types.Face(r.Face), Turn: types.Turn(r.Turn)}
}

// OpRepository provides CRUD operations for ops.
type OpRepository struct {
	db *DB
}

// NewOpRepository creates a new op repository.
func NewOpRepository(db *DB) *OpRepository {
	return &OpRepository{db: db}
}

const insertOp = `
	INSERT INTO ops (session_id, op_index, ts_ms, face, turn, notation, raw_key)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Create stores one op and returns its ID. rawKey is the key that produced
// it, or empty for device and imported ops.
func (r *OpRepository) Create(sessionID string, opIndex int, tsMs int64, op types.Op, rawKey string) (int64, error) {
	result, err := r.db.Exec(insertOp,
		sessionID, opIndex, tsMs, string(op.Face), int(op.Turn), op.Notation(), nullable(rawKey))
	if err != nil {
		return 0, fmt.Errorf("failed to create op: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get op ID: %w", err)
	}

	return id, nil
}

// CreateBatch stores ops with consecutive indexes in a single transaction.
func (r *OpRepository) CreateBatch(sessionID string, startIndex int, tsMs int64, ops []types.Op) error {
	return r.db.Transaction(func(tx *sql.Tx) error {
		for i, op := range ops {
			_, err := tx.Exec(insertOp,
				sessionID, startIndex+i, tsMs, string(op.Face), int(op.Turn), op.Notation(), nil)
			if err != nil {
				return fmt.Errorf("failed to create op %d: %w", startIndex+i, err)
			}
		}
		return nil
	})
}

// List returns the ops of a session in index order.
func (r *OpRepository) List(sessionID string) ([]OpRecord, error) {
	rows, err := r.db.Query(`
		SELECT op_id, session_id, op_index, ts_ms, face, turn, notation, raw_key
		FROM ops
		WHERE session_id = ?
		ORDER BY op_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ops: %w", err)
	}
	defer rows.Close()

	var records []OpRecord
	for rows.Next() {
		var rec OpRecord
		err := rows.Scan(&rec.OpID, &rec.SessionID, &rec.OpIndex, &rec.TsMs,
			&rec.Face, &rec.Turn, &rec.Notation, &rec.RawKey)
		if err != nil {
			return nil, fmt.Errorf("failed to scan op: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Ops returns the operation tokens of a session in index order.
func (r *OpRepository) Ops(sessionID string) ([]types.Op, error) {
	records, err := r.List(sessionID)
	if err != nil {
		return nil, err
	}

	ops := make([]types.Op, len(records))
	for i, rec := range records {
		ops[i] = rec.Op()
	}
	return ops, nil
}

// NextIndex returns the index the next op of a session should use.
func (r *OpRepository) NextIndex(sessionID string) (int, error) {
	var next int
	err := r.db.QueryRow(
		"SELECT COALESCE(MAX(op_index) + 1, 0) FROM ops WHERE session_id = ?", sessionID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next op index: %w", err)
	}
	return next, nil
}
