package session

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender"
	"github.com/SeamusWaldron/cuberender/internal/config"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T) (*storage.DB, *config.StateFile) {
	t.Helper()
	dir := t.TempDir()

	db, err := storage.OpenAndMigrate(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sf, err := config.NewStateFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("NewStateFile: %v", err)
	}
	return db, sf
}

func TestSession_RecordsAndStores(t *testing.T) {
	db, sf := setup(t)
	s := New(db, sf, quietLogger())
	rec := cuberender.NewRecorder()

	id, err := s.Start(rec, storage.SourceKeyboard, "", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sf.ActiveSessionID() != id {
		t.Errorf("active session = %q, want %q", sf.ActiveSessionID(), id)
	}

	s.Record('R', false)
	s.Record('u', false)
	s.Record('x', false) // ignored
	s.Record('F', true)
	if err := s.RecordOps(cuberender.B, cuberender.DPrime); err != nil {
		t.Fatalf("RecordOps: %v", err)
	}

	if s.OpCount() != 5 {
		t.Errorf("OpCount = %d, want 5", s.OpCount())
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if sf.ActiveSessionID() != "" {
		t.Error("End should clear the active session")
	}

	records, err := storage.NewOpRepository(db).List(id)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ops []types.Op
	for _, r := range records {
		ops = append(ops, r.Op())
	}
	if got := types.FormatOps(ops); got != "R U' F2 B D'" {
		t.Errorf("stored ops = %q", got)
	}
	if records[2].RawKey == nil || *records[2].RawKey != "ctrl+F" {
		t.Error("ctrl key should be stored as ctrl+F")
	}
	if records[3].RawKey != nil {
		t.Error("direct ops should have no raw key")
	}

	if err := s.End(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("second End err = %v, want ErrNotRecording", err)
	}
}

func TestSession_StartTwice(t *testing.T) {
	db, _ := setup(t)
	s := New(db, nil, quietLogger())
	rec := cuberender.NewRecorder()

	if _, err := s.Start(rec, storage.SourceKeyboard, "", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Start(rec, storage.SourceKeyboard, "", ""); !errors.Is(err, ErrInProgress) {
		t.Errorf("second Start err = %v, want ErrInProgress", err)
	}
	if _, err := New(db, nil, quietLogger()).Start(nil, storage.SourceKeyboard, "", ""); !errors.Is(err, ErrNoRecorder) {
		t.Errorf("Start(nil) err = %v, want ErrNoRecorder", err)
	}
}

func TestSession_Resume(t *testing.T) {
	db, sf := setup(t)

	first := New(db, sf, quietLogger())
	original := cuberender.NewRecorder()
	id, err := first.Start(original, storage.SourceGoCube, "GoCube_1", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	seq, _ := types.ParseOps("F R U' L2")
	if err := first.RecordOps(seq...); err != nil {
		t.Fatalf("RecordOps: %v", err)
	}

	// The process dies here without End.
	resumed := New(db, sf, quietLogger())
	rec := cuberender.NewRecorder()
	if err := resumed.Resume(rec, id); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if rec.CurrentTransforms() != original.CurrentTransforms() {
		t.Error("resumed transforms differ from the original recorder")
	}

	if err := resumed.RecordOps(cuberender.D); err != nil {
		t.Fatalf("RecordOps after resume: %v", err)
	}
	if resumed.OpCount() != 5 {
		t.Errorf("OpCount = %d, want 5", resumed.OpCount())
	}
	if err := resumed.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	if err := New(db, nil, quietLogger()).Resume(cuberender.NewRecorder(), id); !errors.Is(err, ErrAlreadyEnded) {
		t.Errorf("Resume of ended session err = %v, want ErrAlreadyEnded", err)
	}
	if err := New(db, nil, quietLogger()).Resume(cuberender.NewRecorder(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resume of missing session err = %v, want ErrNotFound", err)
	}
}

func TestSession_IdleRecordsWithoutStoring(t *testing.T) {
	db, _ := setup(t)
	s := New(db, nil, quietLogger())

	if _, ok := s.Record('F', false); ok {
		t.Error("Record without a recorder should do nothing")
	}
	if err := s.RecordOps(cuberender.F); !errors.Is(err, ErrNoRecorder) {
		t.Errorf("RecordOps err = %v, want ErrNoRecorder", err)
	}
}
