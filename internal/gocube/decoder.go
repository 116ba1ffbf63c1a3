package gocube

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// RotationEvent is a single quarter turn reported by the cube.
type RotationEvent struct {
	FaceCode          byte   // Raw face+direction code (0x00-0x0B)
	CenterOrientation byte   // Center piece orientation
	Clockwise         bool   // Direction of rotation
	Color             string // Centre colour of the turned face
}

// BatteryEvent is a battery level notification.
type BatteryEvent struct {
	Level int // 0-100 percentage
}

// CubeTypeEvent is a cube type notification.
type CubeTypeEvent struct {
	TypeCode byte
	TypeName string
}

// OrientationEvent is the raw orientation quaternion of the cube body.
type OrientationEvent struct {
	X, Y, Z, W float64
}

// OfflineStatsEvent holds the counters the cube keeps while disconnected.
type OfflineStatsEvent struct {
	Moves  int
	Time   int // seconds
	Solves int
}

// Colour index of each face code pair.
var colorNames = [...]string{
	0: "blue",
	1: "green",
	2: "white",
	3: "yellow",
	4: "red",
	5: "orange",
}

// DecodeRotation decodes a rotation payload of [face_dir] [center_orientation]
// byte pairs. Even face codes turn clockwise, odd codes counter-clockwise.
func DecodeRotation(payload []byte) ([]RotationEvent, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("rotation payload must have even length, got %d", len(payload))
	}

	events := make([]RotationEvent, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		faceCode := payload[i]
		colorIdx := int(faceCode / 2)
		if colorIdx >= len(colorNames) {
			return nil, fmt.Errorf("unknown color index %d from face code 0x%02X", colorIdx, faceCode)
		}

		events = append(events, RotationEvent{
			FaceCode:          faceCode,
			CenterOrientation: payload[i+1],
			Clockwise:         faceCode%2 == 0,
			Color:             colorNames[colorIdx],
		})
	}

	return events, nil
}

// DecodeBattery decodes a battery payload.
func DecodeBattery(payload []byte) (*BatteryEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("battery payload too short")
	}
	return &BatteryEvent{Level: int(payload[0])}, nil
}

// DecodeCubeType decodes a cube type payload.
func DecodeCubeType(payload []byte) (*CubeTypeEvent, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("cube type payload too short")
	}

	typeName := "standard"
	if payload[0] == 0x01 {
		typeName = "edge"
	}

	return &CubeTypeEvent{TypeCode: payload[0], TypeName: typeName}, nil
}

// DecodeOrientation decodes an orientation payload of the ASCII form
// "x#y#z#w". Trailing bytes after the last number are ignored.
func DecodeOrientation(payload []byte) (*OrientationEvent, error) {
	parts := strings.Split(string(payload), "#")
	if len(parts) != 4 {
		return nil, fmt.Errorf("orientation payload must have 4 parts, got %d", len(parts))
	}
	parts[3] = leadingNumber(parts[3])

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %c value: %w", "xyzw"[i], err)
		}
		v[i] = f
	}

	return &OrientationEvent{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
}

// Quat returns the normalized orientation. The cube reports raw integers.
func (e OrientationEvent) Quat() mgl32.Quat {
	q := mgl32.Quat{W: float32(e.W), V: mgl32.Vec3{float32(e.X), float32(e.Y), float32(e.Z)}}
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}

func leadingNumber(s string) string {
	end := 0
	for i, r := range s {
		if (r == '-' && i == 0) || r == '.' || (r >= '0' && r <= '9') {
			end = i + 1
			continue
		}
		break
	}
	return s[:end]
}

// DecodeOfflineStats decodes an offline stats payload of the form
// "moves#time#solves".
func DecodeOfflineStats(payload []byte) (*OfflineStatsEvent, error) {
	parts := strings.Split(string(payload), "#")
	if len(parts) != 3 {
		return nil, fmt.Errorf("offline stats payload must have 3 parts, got %d", len(parts))
	}

	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid offline stats field %d: %w", i, err)
		}
		v[i] = n
	}

	return &OfflineStatsEvent{Moves: v[0], Time: v[1], Solves: v[2]}, nil
}
