package ble

import (
	"errors"
	"testing"
)

func TestCommandsRequireConnection(t *testing.T) {
	c := &Client{battery: -1}

	cmds := map[string]func() error{
		"RequestBattery":     c.RequestBattery,
		"ResetSolved":        c.ResetSolved,
		"FlashBacklight":     c.FlashBacklight,
		"EnableOrientation":  c.EnableOrientation,
		"DisableOrientation": c.DisableOrientation,
	}
	for name, send := range cmds {
		if err := send(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("%s: err = %v, want ErrNotConnected", name, err)
		}
	}

	if c.IsConnected() {
		t.Error("new client should not be connected")
	}
	if c.Battery() != -1 {
		t.Errorf("Battery() = %d, want -1", c.Battery())
	}
}
