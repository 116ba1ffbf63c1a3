// Package config manages the persistent application state file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DirName is the application directory inside the user's home directory.
const DirName = ".cuberender"

// AppState represents the persistent application state.
type AppState struct {
	DBPath          string `json:"db_path,omitempty"`
	ActiveSessionID string `json:"active_session_id,omitempty"`
	LastDeviceID    string `json:"last_device_id,omitempty"`
	LastDeviceName  string `json:"last_device_name,omitempty"`
	CompactAfter    int    `json:"compact_after,omitempty"`
}

// StateFile manages the application state file.
type StateFile struct {
	path string

	mu    sync.RWMutex
	state AppState
}

// DefaultDir returns the application directory, creating it if needed.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// DefaultStatePath returns the default state file path.
func DefaultStatePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// NewStateFile loads the state file at path. A missing file yields an empty
// state.
func NewStateFile(path string) (*StateFile, error) {
	sf := &StateFile{path: path}

	if err := sf.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return sf, nil
}

// NewDefaultStateFile creates a state file manager with the default path.
func NewDefaultStateFile() (*StateFile, error) {
	path, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return NewStateFile(path)
}

// Path returns the state file path.
func (sf *StateFile) Path() string {
	return sf.path
}

// Load loads the state from disk.
func (sf *StateFile) Load() error {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return err
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse state file %s: %w", sf.path, err)
	}

	sf.mu.Lock()
	sf.state = state
	sf.mu.Unlock()
	return nil
}

func (sf *StateFile) update(fn func(*AppState)) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	fn(&sf.state)

	data, err := json.MarshalIndent(sf.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(sf.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// State returns the current state.
func (sf *StateFile) State() AppState {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.state
}

// SetDBPath sets the database path.
func (sf *StateFile) SetDBPath(path string) error {
	return sf.update(func(s *AppState) { s.DBPath = path })
}

// SetActiveSession sets the active session ID.
func (sf *StateFile) SetActiveSession(sessionID string) error {
	return sf.update(func(s *AppState) { s.ActiveSessionID = sessionID })
}

// ClearActiveSession clears the active session ID.
func (sf *StateFile) ClearActiveSession() error {
	return sf.SetActiveSession("")
}

// SetLastDevice sets the last connected device.
func (sf *StateFile) SetLastDevice(deviceID, deviceName string) error {
	return sf.update(func(s *AppState) {
		s.LastDeviceID = deviceID
		s.LastDeviceName = deviceName
	})
}

// SetCompactAfter sets the recorder compaction threshold.
func (sf *StateFile) SetCompactAfter(n int) error {
	return sf.update(func(s *AppState) { s.CompactAfter = n })
}

// ActiveSessionID returns the active session ID.
func (sf *StateFile) ActiveSessionID() string {
	return sf.State().ActiveSessionID
}

// DBPath returns the configured database path, or "" for the default.
func (sf *StateFile) DBPath() string {
	return sf.State().DBPath
}
