package gocube

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

func TestBuildParseMessage_RoundTrip(t *testing.T) {
	payload := []byte{0x04, 0x00, 0x06, 0x03}
	frame := BuildMessage(MsgTypeRotation, payload)

	msg, err := ParseMessage(frame)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Type != MsgTypeRotation {
		t.Errorf("Type = 0x%02X, want 0x%02X", msg.Type, MsgTypeRotation)
	}
	if string(msg.Payload) != string(payload) {
		t.Errorf("Payload = %v, want %v", msg.Payload, payload)
	}
	if msg.RawBase64 == "" {
		t.Error("RawBase64 should be set")
	}
}

func TestParseMessage_Errors(t *testing.T) {
	good := BuildMessage(MsgTypeBattery, []byte{80})

	badPrefix := append([]byte(nil), good...)
	badPrefix[0] = 0x00

	badSum := append([]byte(nil), good...)
	badSum[len(badSum)-3]++

	badSuffix := append([]byte(nil), good...)
	badSuffix[len(badSuffix)-1] = 0x00

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte{0x2A, 0x01}, ErrMessageTooShort},
		{"prefix", badPrefix, ErrInvalidPrefix},
		{"checksum", badSum, ErrInvalidChecksum},
		{"suffix", badSuffix, ErrInvalidSuffix},
		{"truncated", good[:len(good)-1], ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeRotation(t *testing.T) {
	// white clockwise, red counter-clockwise
	events, err := DecodeRotation([]byte{0x04, 0x00, 0x09, 0x03})
	if err != nil {
		t.Fatalf("DecodeRotation: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Color != "white" || !events[0].Clockwise {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Color != "red" || events[1].Clockwise || events[1].CenterOrientation != 0x03 {
		t.Errorf("event 1 = %+v", events[1])
	}

	if _, err := DecodeRotation([]byte{0x04}); err == nil {
		t.Error("odd-length payload should fail")
	}
	if _, err := DecodeRotation([]byte{0x0C, 0x00}); err == nil {
		t.Error("face code 0x0C should fail")
	}
}

func TestRotationsToOps(t *testing.T) {
	tests := []struct {
		name  string
		codes []byte
		want  string
	}{
		{"single", []byte{0x04, 0}, "U"},
		{"ccw", []byte{0x03, 0}, "F'"},
		{"merged", []byte{0x08, 0, 0x08, 0}, "R2"},
		{"three merge to prime", []byte{0x08, 0, 0x08, 0, 0x08, 0}, "R'"},
		{"cancel", []byte{0x0A, 0, 0x0B, 0}, ""},
		{"different faces", []byte{0x00, 0, 0x06, 0}, "B D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := DecodeRotation(tt.codes)
			if err != nil {
				t.Fatalf("DecodeRotation: %v", err)
			}
			ops, err := RotationsToOps(events)
			if err != nil {
				t.Fatalf("RotationsToOps: %v", err)
			}
			if got := types.FormatOps(ops); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeOrientation(t *testing.T) {
	e, err := DecodeOrientation([]byte("0#0#0#1000\x7f\r\n"))
	if err != nil {
		t.Fatalf("DecodeOrientation: %v", err)
	}
	if e.W != 1000 || e.X != 0 {
		t.Errorf("event = %+v", e)
	}

	q := e.Quat()
	if math.Abs(float64(q.W-1)) > 1e-6 || q.V.Len() > 1e-6 {
		t.Errorf("Quat = %v, want identity", q)
	}

	if _, err := DecodeOrientation([]byte("1#2#3")); err == nil {
		t.Error("three-part payload should fail")
	}
}

func TestDecodeBatteryAndStats(t *testing.T) {
	b, err := DecodeBattery([]byte{87})
	if err != nil || b.Level != 87 {
		t.Errorf("DecodeBattery = %+v, %v", b, err)
	}
	if _, err := DecodeBattery(nil); err == nil {
		t.Error("empty battery payload should fail")
	}

	s, err := DecodeOfflineStats([]byte("120#95#3"))
	if err != nil {
		t.Fatalf("DecodeOfflineStats: %v", err)
	}
	if s.Moves != 120 || s.Time != 95 || s.Solves != 3 {
		t.Errorf("stats = %+v", s)
	}

	ct, err := DecodeCubeType([]byte{0x01})
	if err != nil || ct.TypeName != "edge" {
		t.Errorf("DecodeCubeType = %+v, %v", ct, err)
	}
}

func TestFeed_Handle(t *testing.T) {
	var (
		gotOps     []types.Op
		gotBattery = -1
		oriented   bool
	)
	feed := &Feed{
		OnOps:         func(ops []types.Op) { gotOps = append(gotOps, ops...) },
		OnBattery:     func(level int) { gotBattery = level },
		OnOrientation: func(mgl32.Quat) { oriented = true },
	}

	frames := [][]byte{
		BuildMessage(MsgTypeRotation, []byte{0x08, 0, 0x08, 0}),
		BuildMessage(MsgTypeRotation, []byte{0x05, 0}),
		BuildMessage(MsgTypeBattery, []byte{64}),
		BuildMessage(MsgTypeOrientation, []byte("1#0#0#1")),
		BuildMessage(MsgTypeCubeType, []byte{0x00}),
		BuildMessage(MsgTypeRotation, []byte{0x05}),
	}
	for _, frame := range frames {
		msg, err := ParseMessage(frame)
		if err != nil {
			t.Fatalf("ParseMessage: %v", err)
		}
		feed.Handle(msg)
	}

	if got := types.FormatOps(gotOps); got != "R2 U'" {
		t.Errorf("ops = %q, want %q", got, "R2 U'")
	}
	if gotBattery != 64 {
		t.Errorf("battery = %d, want 64", gotBattery)
	}
	if !oriented {
		t.Error("orientation callback not called")
	}
}
