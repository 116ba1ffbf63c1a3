package gocube

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Feed turns parsed messages into ops and device state updates. Its
// callbacks run on the goroutine that calls Handle.
type Feed struct {
	OnOps         func([]types.Op)
	OnOrientation func(mgl32.Quat)
	OnBattery     func(level int)

	Logger logrus.FieldLogger
}

// Handle dispatches one message. Undecodable payloads are logged and
// dropped.
func (f *Feed) Handle(msg *Message) {
	log := f.logger().WithField("type", MessageTypeName(msg.Type))

	switch msg.Type {
	case MsgTypeRotation:
		events, err := DecodeRotation(msg.Payload)
		if err != nil {
			log.WithError(err).Warn("bad rotation payload")
			return
		}
		ops, err := RotationsToOps(events)
		if err != nil {
			log.WithError(err).Warn("unmapped rotation")
			return
		}
		if len(ops) > 0 && f.OnOps != nil {
			f.OnOps(ops)
		}

	case MsgTypeOrientation:
		e, err := DecodeOrientation(msg.Payload)
		if err != nil {
			log.WithError(err).Debug("bad orientation payload")
			return
		}
		if f.OnOrientation != nil {
			f.OnOrientation(e.Quat())
		}

	case MsgTypeBattery:
		e, err := DecodeBattery(msg.Payload)
		if err != nil {
			log.WithError(err).Debug("bad battery payload")
			return
		}
		if f.OnBattery != nil {
			f.OnBattery(e.Level)
		}

	default:
		log.Debug("ignored message")
	}
}

func (f *Feed) logger() logrus.FieldLogger {
	if f.Logger != nil {
		return f.Logger
	}
	return logrus.StandardLogger()
}
