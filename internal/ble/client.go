// Package ble provides low-level BLE communication with GoCube devices.
package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/SeamusWaldron/cuberender/internal/gocube"
)

// Errors
var (
	ErrNotConnected     = errors.New("ble: not connected to device")
	ErrAlreadyConnected = errors.New("ble: already connected to a device")
	ErrDeviceNotFound   = errors.New("ble: device not found")
	ErrServiceNotFound  = errors.New("ble: GoCube service not found")
)

// ConnectTimeout bounds the scan for a device named by address.
const ConnectTimeout = 10 * time.Second

// BLE UUIDs
var (
	serviceUUID = bluetooth.NewUUID(uuid.MustParse(gocube.ServiceUUID))
	txCharUUID  = bluetooth.NewUUID(uuid.MustParse(gocube.TxCharUUID))
	rxCharUUID  = bluetooth.NewUUID(uuid.MustParse(gocube.RxCharUUID))
)

// ScanResult represents a discovered GoCube device.
type ScanResult struct {
	Name    string
	UUID    string
	RSSI    int16
	Address bluetooth.Address
}

// Client manages the BLE connection to a GoCube device.
type Client struct {
	adapter *bluetooth.Adapter
	device  bluetooth.Device
	rxChar  bluetooth.DeviceCharacteristic
	logger  logrus.FieldLogger

	mu         sync.RWMutex
	connected  bool
	deviceName string
	deviceUUID string
	battery    int

	onMessage func(*gocube.Message)
}

// NewClient enables the default adapter and returns a client.
func NewClient(logger logrus.FieldLogger) (*Client, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}

	return &Client{
		adapter: adapter,
		logger:  logger,
		battery: -1,
	}, nil
}

// SetMessageCallback sets the callback for parsed notification frames.
func (c *Client) SetMessageCallback(cb func(*gocube.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = cb
}

// Scan scans for GoCube devices until timeout or ctx is done.
func (c *Client) Scan(ctx context.Context, timeout time.Duration) ([]ScanResult, error) {
	if c.IsConnected() {
		return nil, ErrAlreadyConnected
	}

	var (
		mu      sync.Mutex
		results []ScanResult
		seen    = make(map[string]bool)
		done    = make(chan struct{})
	)

	go func() {
		defer close(done)
		err := c.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			addr := result.Address.String()
			name := result.LocalName()

			mu.Lock()
			defer mu.Unlock()
			if seen[addr] {
				return
			}
			seen[addr] = true

			if strings.HasPrefix(strings.ToLower(name), "gocube") {
				results = append(results, ScanResult{
					Name:    name,
					UUID:    addr,
					RSSI:    result.RSSI,
					Address: result.Address,
				})
			}
		})
		if err != nil {
			c.logger.WithError(err).Warn("scan stopped")
		}
	}()

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
	}

	c.adapter.StopScan()
	<-done

	mu.Lock()
	defer mu.Unlock()
	return results, nil
}

// Connect scans for the device with the given address and connects to it.
func (c *Client) Connect(ctx context.Context, deviceUUID string) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}

	var (
		target    ScanResult
		found     = make(chan struct{})
		foundOnce sync.Once
	)

	go func() {
		c.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.Address.String() != deviceUUID {
				return
			}
			foundOnce.Do(func() {
				target = ScanResult{
					Name:    result.LocalName(),
					UUID:    deviceUUID,
					RSSI:    result.RSSI,
					Address: result.Address,
				}
				close(found)
			})
		})
	}()

	select {
	case <-found:
		c.adapter.StopScan()
	case <-time.After(ConnectTimeout):
		c.adapter.StopScan()
		return ErrDeviceNotFound
	case <-ctx.Done():
		c.adapter.StopScan()
		return ctx.Err()
	}

	return c.ConnectToResult(ctx, target)
}

// ConnectToResult connects directly to a device from a scan result.
func (c *Client) ConnectToResult(ctx context.Context, result ScanResult) error {
	if c.IsConnected() {
		return ErrAlreadyConnected
	}

	device, err := c.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	rxChar, err := c.subscribe(device)
	if err != nil {
		device.Disconnect()
		return err
	}

	c.mu.Lock()
	c.device = device
	c.rxChar = rxChar
	c.connected = true
	c.deviceName = result.Name
	c.deviceUUID = result.UUID
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"device": result.Name,
		"addr":   result.UUID,
	}).Info("connected")

	if err := c.RequestBattery(); err != nil {
		c.logger.WithError(err).Debug("battery request failed")
	}
	return nil
}

func (c *Client) subscribe(device bluetooth.Device) (bluetooth.DeviceCharacteristic, error) {
	var rxChar bluetooth.DeviceCharacteristic

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		return rxChar, fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		return rxChar, ErrServiceNotFound
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{txCharUUID, rxCharUUID})
	if err != nil {
		return rxChar, fmt.Errorf("failed to discover characteristics: %w", err)
	}

	var txChar bluetooth.DeviceCharacteristic
	for _, ch := range chars {
		switch ch.UUID() {
		case txCharUUID:
			txChar = ch
		case rxCharUUID:
			rxChar = ch
		}
	}

	if err := txChar.EnableNotifications(c.handleNotification); err != nil {
		return rxChar, fmt.Errorf("failed to enable notifications: %w", err)
	}
	return rxChar, nil
}

// Disconnect disconnects from the current device.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	err := c.device.Disconnect()
	c.connected = false
	c.deviceName = ""
	c.deviceUUID = ""
	c.battery = -1

	return err
}

// IsConnected returns true if connected to a device.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// DeviceName returns the connected device name.
func (c *Client) DeviceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceName
}

// DeviceUUID returns the connected device address.
func (c *Client) DeviceUUID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceUUID
}

// Battery returns the last known battery level (-1 if unknown).
func (c *Client) Battery() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.battery
}

// SendCommand writes a command to the cube.
func (c *Client) SendCommand(cmd byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	if _, err := c.rxChar.WriteWithoutResponse(gocube.BuildCommand(cmd)); err != nil {
		return fmt.Errorf("failed to send command 0x%02x: %w", cmd, err)
	}
	return nil
}

// RequestBattery requests the battery level from the cube.
func (c *Client) RequestBattery() error {
	return c.SendCommand(gocube.CmdRequestBattery)
}

// ResetSolved tells the cube to treat its current state as solved.
func (c *Client) ResetSolved() error {
	return c.SendCommand(gocube.CmdResetSolved)
}

// FlashBacklight flashes the cube backlight three times.
func (c *Client) FlashBacklight() error {
	return c.SendCommand(gocube.CmdFlashBacklight)
}

// EnableOrientation enables orientation tracking on the cube.
func (c *Client) EnableOrientation() error {
	return c.SendCommand(gocube.CmdEnableOrientation)
}

// DisableOrientation disables orientation tracking on the cube.
func (c *Client) DisableOrientation() error {
	return c.SendCommand(gocube.CmdDisableOrientation)
}

func (c *Client) handleNotification(data []byte) {
	msg, err := gocube.ParseMessage(data)
	if err != nil {
		c.logger.WithError(err).Debug("dropping notification")
		return
	}

	if msg.Type == gocube.MsgTypeBattery {
		if battery, err := gocube.DecodeBattery(msg.Payload); err == nil {
			c.mu.Lock()
			c.battery = battery.Level
			c.mu.Unlock()
		}
	}

	c.mu.RLock()
	cb := c.onMessage
	c.mu.RUnlock()

	if cb != nil {
		cb(msg)
	}
}
