package cuberender

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a Recorder.
type Option func(*config)

type config struct {
	compactAfter int
	onRecord     func(Op)
	logger       logrus.FieldLogger
}

func defaultConfig() *config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &config{
		compactAfter: 0,
		logger:       discard,
	}
}

// WithCompactAfter bakes the operation log into a snapshot whenever it grows
// past n entries. The transforms are unchanged; only the per-frame replay
// cost is bounded. n <= 0 (the default) keeps the full log.
func WithCompactAfter(n int) Option {
	return func(c *config) {
		c.compactAfter = n
	}
}

// WithOnRecord registers a callback that runs after every recorded operation.
// It runs synchronously on the recording goroutine.
func WithOnRecord(cb func(Op)) Option {
	return func(c *config) {
		c.onRecord = cb
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = l
	}
}
