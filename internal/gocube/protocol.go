// Package gocube decodes the GoCube smart-cube BLE protocol into face-turn
// operations.
package gocube

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// GoCube BLE Service and Characteristic UUIDs
const (
	ServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	TxCharUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // Notify
	RxCharUUID  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // Write
)

// Message type constants
const (
	MsgTypeRotation     byte = 0x01
	MsgTypeState        byte = 0x02
	MsgTypeOrientation  byte = 0x03
	MsgTypeBattery      byte = 0x05
	MsgTypeOfflineStats byte = 0x07
	MsgTypeCubeType     byte = 0x08
)

// Command codes for writing to RX characteristic
const (
	CmdRequestBattery       byte = 0x32
	CmdRequestState         byte = 0x33
	CmdReboot               byte = 0x34
	CmdResetSolved          byte = 0x35
	CmdDisableOrientation   byte = 0x37
	CmdEnableOrientation    byte = 0x38
	CmdRequestOfflineStats  byte = 0x39
	CmdFlashBacklight       byte = 0x41
	CmdToggleAnimatedBL     byte = 0x42
	CmdSlowFlashBacklight   byte = 0x43
	CmdToggleBacklight      byte = 0x44
	CmdRequestCubeType      byte = 0x56
	CmdCalibrateOrientation byte = 0x57
)

// Message frame constants
const (
	FramePrefix  byte = 0x2A // '*'
	FrameSuffix1 byte = 0x0D // CR
	FrameSuffix2 byte = 0x0A // LF
)

// Errors
var (
	ErrInvalidPrefix   = errors.New("gocube: invalid message prefix")
	ErrInvalidSuffix   = errors.New("gocube: invalid message suffix")
	ErrInvalidChecksum = errors.New("gocube: invalid checksum")
	ErrMessageTooShort = errors.New("gocube: message too short")
	ErrInvalidLength   = errors.New("gocube: invalid message length")
)

// Message is one parsed notification frame.
type Message struct {
	Type      byte   // Message type identifier
	Payload   []byte // Payload without frame overhead
	RawBase64 string // Whole frame, base64 encoded
}

// ParseMessage parses a raw BLE notification.
//
// Frame format: [0x2A] [length] [type] [payload...] [checksum] [0x0D 0x0A]
//
// length counts every byte after itself. The checksum is the byte sum of
// everything before it.
func ParseMessage(data []byte) (*Message, error) {
	if len(data) < 6 {
		return nil, ErrMessageTooShort
	}

	if data[0] != FramePrefix {
		return nil, ErrInvalidPrefix
	}

	length := int(data[1])
	frameLen := 2 + length
	if length < 4 || len(data) < frameLen {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidLength, frameLen, len(data))
	}

	if data[frameLen-2] != FrameSuffix1 || data[frameLen-1] != FrameSuffix2 {
		return nil, ErrInvalidSuffix
	}

	checksumIdx := frameLen - 3
	want := checksum(data[:checksumIdx])
	if want != data[checksumIdx] {
		return nil, fmt.Errorf("%w: frame has 0x%02X, computed 0x%02X", ErrInvalidChecksum, data[checksumIdx], want)
	}

	return &Message{
		Type:      data[2],
		Payload:   data[3:checksumIdx],
		RawBase64: base64.StdEncoding.EncodeToString(data[:frameLen]),
	}, nil
}

// BuildMessage frames a message. ParseMessage(BuildMessage(t, p)) returns t
// and p.
func BuildMessage(msgType byte, payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+6)
	frame = append(frame, FramePrefix, byte(len(payload)+4), msgType)
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame))
	return append(frame, FrameSuffix1, FrameSuffix2)
}

// BuildCommand creates a command to write to the RX characteristic.
// Commands are a single byte.
func BuildCommand(cmdCode byte) []byte {
	return []byte{cmdCode}
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// MessageTypeName returns a human-readable name for the message type.
func MessageTypeName(msgType byte) string {
	switch msgType {
	case MsgTypeRotation:
		return "rotation"
	case MsgTypeState:
		return "state"
	case MsgTypeOrientation:
		return "orientation"
	case MsgTypeBattery:
		return "battery"
	case MsgTypeOfflineStats:
		return "offline_stats"
	case MsgTypeCubeType:
		return "cube_type"
	default:
		return fmt.Sprintf("unknown_0x%02X", msgType)
	}
}
