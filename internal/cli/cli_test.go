package cli

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SeamusWaldron/cuberender"
	"github.com/SeamusWaldron/cuberender/internal/ble"
	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/internal/scene"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

func snapshotAfter(t *testing.T, notation string) operation.Snapshot {
	t.Helper()
	ops, err := types.ParseOps(notation)
	if err != nil {
		t.Fatalf("ParseOps(%q): %v", notation, err)
	}
	snap, err := operation.ReduceFrom(operation.Identity(), ops)
	if err != nil {
		t.Fatalf("ReduceFrom(%q): %v", notation, err)
	}
	return snap
}

func TestKeyInput(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		wantKey  rune
		wantCtrl bool
		wantOK   bool
	}{
		{"uppercase", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'F'}}, 'F', false, true},
		{"lowercase", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}}, 'u', false, true},
		{"other rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, 'x', false, true},
		{"ctrl+f", tea.KeyMsg{Type: tea.KeyCtrlF}, 'F', true, true},
		{"ctrl+b", tea.KeyMsg{Type: tea.KeyCtrlB}, 'B', true, true},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, 'D', true, true},
		{"ctrl+r", tea.KeyMsg{Type: tea.KeyCtrlR}, 'R', true, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, 0, false, false},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, 0, false, false},
		{"alt+f", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}, Alt: true}, 0, false, false},
	}

	for _, tt := range tests {
		key, ctrl, ok := keyInput(tt.msg)
		if key != tt.wantKey || ctrl != tt.wantCtrl || ok != tt.wantOK {
			t.Errorf("%s: keyInput = (%q, %v, %v), want (%q, %v, %v)",
				tt.name, key, ctrl, ok, tt.wantKey, tt.wantCtrl, tt.wantOK)
		}
	}
}

func TestKeyInput_DrivesRecorder(t *testing.T) {
	rec := cuberender.NewRecorder()

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'R'}},
		{Type: tea.KeyRunes, Runes: []rune{'u'}},
		{Type: tea.KeyCtrlF},
		{Type: tea.KeyRunes, Runes: []rune{'x'}},
	}
	for _, k := range keys {
		if key, ctrl, ok := keyInput(k); ok {
			rec.Record(key, ctrl)
		}
	}

	if got := types.FormatOps(rec.Ops()); got != "R U' F2" {
		t.Errorf("ops = %q, want %q", got, "R U' F2")
	}
}

func TestRenderOccupancy(t *testing.T) {
	out := renderOccupancy(operation.Identity())
	for _, want := range []string{"up", "middle", "down", "26", "13"} {
		if !strings.Contains(out, want) {
			t.Errorf("occupancy view missing %q:\n%s", want, out)
		}
	}
}

func TestDisplaced(t *testing.T) {
	tests := []struct {
		ops  string
		want int
	}{
		{"", 0},
		{"R", 8},
		{"R R'", 0},
		{"R2 R2", 0},
		{"F B", 16},
	}

	for _, tt := range tests {
		if got := displaced(snapshotAfter(t, tt.ops)); got != tt.want {
			t.Errorf("displaced(%q) = %d, want %d", tt.ops, got, tt.want)
		}
	}
}

func TestRenderOps(t *testing.T) {
	if got := renderOps(nil, 4); !strings.Contains(got, "no ops") {
		t.Errorf("renderOps(nil) = %q", got)
	}

	ops, _ := types.ParseOps("R U R' U' F2 B")
	got := renderOps(ops, 2)
	if !strings.HasPrefix(got, "... ") || !strings.Contains(got, "F2 B") {
		t.Errorf("renderOps tail = %q", got)
	}
	if strings.Contains(got, "U'") {
		t.Errorf("renderOps should drop old ops: %q", got)
	}
}

func TestWriteTransforms_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTransforms(&buf, "text", operation.Identity(), false); err != nil {
		t.Fatalf("writeTransforms: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != operation.SlotCount {
		t.Fatalf("got %d lines, want %d", len(lines), operation.SlotCount)
	}
	want := "cubie  0  slot  0  [1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1]"
	if lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
}

func TestWriteTransforms_JSON(t *testing.T) {
	snap := snapshotAfter(t, "R U")

	var buf bytes.Buffer
	if err := writeTransforms(&buf, "json", snap, false); err != nil {
		t.Fatalf("writeTransforms: %v", err)
	}

	var out []transformJSON
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != operation.SlotCount {
		t.Fatalf("got %d entries", len(out))
	}
	for i, e := range out {
		if e.Cubie != i || e.Slot != snap[i].Position {
			t.Errorf("entry %d = cubie %d slot %d, want slot %d", i, e.Cubie, e.Slot, snap[i].Position)
		}
		if e.Matrix != [16]float32(snap[i].Matrix) {
			t.Errorf("entry %d matrix differs", i)
		}
	}
}

func TestWriteTransforms_BinaryMatchesInstanceBuffer(t *testing.T) {
	snap := snapshotAfter(t, "F2 L' D")

	var buf bytes.Buffer
	if err := writeTransforms(&buf, "binary", snap, true); err != nil {
		t.Fatalf("writeTransforms: %v", err)
	}
	if buf.Len() != operation.SlotCount*scene.MatrixFloats*4 {
		t.Fatalf("wrote %d bytes", buf.Len())
	}

	got := make([]float32, operation.SlotCount*scene.MatrixFloats)
	if err := binary.Read(&buf, binary.LittleEndian, got); err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := scene.InstanceBuffer(snap.Transforms())
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("float %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteTransforms_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTransforms(&buf, "yaml", operation.Identity(), false); err == nil {
		t.Error("unknown format should fail")
	}
}

func records(t *testing.T, notation string, ts ...int64) []storage.OpRecord {
	t.Helper()
	ops, err := types.ParseOps(notation)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]storage.OpRecord, len(ops))
	for i, op := range ops {
		out[i] = storage.OpRecord{OpIndex: i, TsMs: ts[i], Face: string(op.Face), Turn: int(op.Turn), Notation: op.Notation()}
	}
	return out
}

func TestPlayer_StepBackRestart(t *testing.T) {
	p := newPlayer(records(t, "R U R' U'", 0, 400, 900, 1000), 1)

	for i := 0; i < 3; i++ {
		if !p.Step() {
			t.Fatalf("step %d reported the end", i)
		}
	}
	want, _ := cuberender.Reduce([]types.Op{cuberender.R, cuberender.U, cuberender.RPrime})
	if p.CurrentTransforms() != want {
		t.Error("transforms after three steps differ from Reduce")
	}

	p.Back()
	if p.Pos() != 2 {
		t.Errorf("Pos after Back = %d, want 2", p.Pos())
	}
	want, _ = cuberender.Reduce([]types.Op{cuberender.R, cuberender.U})
	if p.CurrentTransforms() != want {
		t.Error("transforms after Back differ from Reduce")
	}

	p.Step()
	p.Step()
	if !p.Done() || p.Step() {
		t.Error("player should be done after four ops")
	}

	p.Restart()
	if p.Pos() != 0 || p.CurrentTransforms() != cuberender.Identity() {
		t.Error("Restart should return to the solved cube")
	}
	p.Back()
	if p.Pos() != 0 {
		t.Error("Back at the start should do nothing")
	}
}

func TestPlayer_Delay(t *testing.T) {
	p := newPlayer(records(t, "R U R' U'", 0, 400, 900, 10000), 2)

	if d := p.Delay(); d != minStep {
		t.Errorf("first delay = %v, want %v", d, minStep)
	}
	p.Step()
	if d := p.Delay(); d != 200*time.Millisecond {
		t.Errorf("delay at 2x = %v, want 200ms", d)
	}
	p.Step()
	if d := p.Delay(); d != 250*time.Millisecond {
		t.Errorf("delay at 2x = %v, want 250ms", d)
	}
	p.Step()
	if d := p.Delay(); d != maxStep {
		t.Errorf("long gap = %v, want clamped to %v", d, maxStep)
	}

	imported := newPlayer(records(t, "F B", 0, 0), 1)
	imported.Step()
	if d := imported.Delay(); d != minStep {
		t.Errorf("untimed delay = %v, want %v", d, minStep)
	}
}

func TestPickDevice(t *testing.T) {
	results := []ble.ScanResult{
		{Name: "GoCube_A", UUID: "aa"},
		{Name: "GoCube_B", UUID: "bb"},
	}

	if got := pickDevice(results, "bb"); got.Name != "GoCube_B" {
		t.Errorf("pickDevice(last=bb) = %s", got.Name)
	}
	if got := pickDevice(results, "zz"); got.Name != "GoCube_A" {
		t.Errorf("pickDevice(last=zz) = %s", got.Name)
	}
	if got := pickDevice(results, ""); got.Name != "GoCube_A" {
		t.Errorf("pickDevice(no last) = %s", got.Name)
	}
}

func TestImportOps(t *testing.T) {
	db, err := storage.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	defer db.Close()

	ops, _ := types.ParseOps("R U R' U'")
	id, err := importOps(db, ops, "trigger")
	if err != nil {
		t.Fatalf("importOps: %v", err)
	}

	s, err := storage.NewSessionRepository(db).Get(id)
	if err != nil || s == nil {
		t.Fatalf("Get: %v, %v", s, err)
	}
	if s.Source != storage.SourceImport || s.EndedAt == nil || s.OpCount != 4 {
		t.Errorf("imported session = %+v", s)
	}

	stored, err := storage.NewOpRepository(db).Ops(id)
	if err != nil {
		t.Fatalf("Ops: %v", err)
	}
	if types.FormatOps(stored) != "R U R' U'" {
		t.Errorf("stored ops = %q", types.FormatOps(stored))
	}

	row := formatSessionRow(*s, "")
	if !strings.HasPrefix(row, shortID(id)) || !strings.Contains(row, "import") || !strings.Contains(row, "trigger") {
		t.Errorf("row = %q", row)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}
