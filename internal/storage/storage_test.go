package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustOps(t *testing.T, s string) []types.Op {
	t.Helper()
	ops, err := types.ParseOps(s)
	if err != nil {
		t.Fatalf("ParseOps(%q): %v", s, err)
	}
	return ops
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
	v, err := db.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if v != LatestVersion() {
		t.Errorf("version = %d, want %d", v, LatestVersion())
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	ops := NewOpRepository(db)

	id, err := sessions.Create(SourceKeyboard, "", "warm-up")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := ops.Create(id, 0, 100, types.Op{Face: types.FaceF, Turn: types.TurnCW}, "F"); err != nil {
		t.Fatalf("ops.Create: %v", err)
	}
	if err := ops.CreateBatch(id, 1, 200, mustOps(t, "R U' B2")); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := sessions.End(id); err != nil {
		t.Fatalf("End: %v", err)
	}

	s, err := sessions.Get(id)
	if err != nil || s == nil {
		t.Fatalf("Get = %v, %v", s, err)
	}
	if s.Source != SourceKeyboard || s.Notes == nil || *s.Notes != "warm-up" {
		t.Errorf("session = %+v", s)
	}
	if s.DeviceName != nil {
		t.Errorf("DeviceName = %q, want nil", *s.DeviceName)
	}
	if s.EndedAt == nil || s.DurationMs == nil {
		t.Error("ended session should have end time and duration")
	}
	if s.OpCount != 4 {
		t.Errorf("OpCount = %d, want 4", s.OpCount)
	}

	got, err := ops.Ops(id)
	if err != nil {
		t.Fatalf("Ops: %v", err)
	}
	if types.FormatOps(got) != "F R U' B2" {
		t.Errorf("ops = %q", types.FormatOps(got))
	}

	records, err := ops.List(id)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records[0].RawKey == nil || *records[0].RawKey != "F" {
		t.Error("first op should keep its raw key")
	}
	if records[1].RawKey != nil {
		t.Error("batch ops should have no raw key")
	}

	next, err := ops.NextIndex(id)
	if err != nil || next != 4 {
		t.Errorf("NextIndex = %d, %v, want 4", next, err)
	}
}

func TestOps_DuplicateIndexRejected(t *testing.T) {
	db := openTestDB(t)
	id, _ := NewSessionRepository(db).Create(SourceKeyboard, "", "")
	ops := NewOpRepository(db)

	if _, err := ops.Create(id, 0, 0, types.Op{Face: types.FaceU, Turn: types.TurnCW}, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ops.Create(id, 0, 0, types.Op{Face: types.FaceD, Turn: types.TurnCW}, ""); err == nil {
		t.Error("duplicate op index should fail")
	}

	// A failing batch rolls back entirely.
	err := ops.CreateBatch(id, 1, 0, []types.Op{
		{Face: types.FaceL, Turn: types.TurnCW},
		{Face: "X", Turn: types.TurnCW},
	})
	if err == nil {
		t.Fatal("batch with invalid face should fail")
	}
	if next, _ := ops.NextIndex(id); next != 1 {
		t.Errorf("NextIndex after rollback = %d, want 1", next)
	}
}

func TestSessions_ListResolveDelete(t *testing.T) {
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	ops := NewOpRepository(db)

	first, _ := sessions.Create(SourceKeyboard, "", "")
	second, _ := sessions.Create(SourceGoCube, "GoCube_1234", "")
	if err := ops.CreateBatch(second, 0, 0, mustOps(t, "F F'")); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	list, err := sessions.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].SessionID != second {
		t.Fatalf("List = %+v, want newest first", list)
	}

	last, err := sessions.Resolve("last")
	if err != nil || last == nil || last.SessionID != second {
		t.Errorf("Resolve(last) = %+v, %v", last, err)
	}

	byPrefix, err := sessions.Resolve(first[:8])
	if err != nil || byPrefix == nil || byPrefix.SessionID != first {
		t.Errorf("Resolve(prefix) = %+v, %v", byPrefix, err)
	}

	if _, err := sessions.Resolve(""); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("Resolve(\"\") err = %v, want ErrAmbiguousID", err)
	}

	missing, err := sessions.Resolve("zzzz")
	if err != nil || missing != nil {
		t.Errorf("Resolve(zzzz) = %+v, %v", missing, err)
	}

	if err := sessions.Delete(second); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s, _ := sessions.Get(second); s != nil {
		t.Error("deleted session still present")
	}
	if left, _ := ops.Ops(second); len(left) != 0 {
		t.Errorf("ops of deleted session = %v, want none", left)
	}
}
