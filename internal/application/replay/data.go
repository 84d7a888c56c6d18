// Package replay records and plays back input sessions. A session is the
// per-frame key transition log plus the frame durations; feeding it back
// into a fresh world reproduces the run bit for bit, which Run uses to
// verify determinism across machines.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version is the session file format version.
const Version = "1.0"

// Event is one key transition. T is "d" for down, "u" for up.
type Event struct {
	T string `json:"t"`
	K string `json:"k"`
}

// Frame is one host frame: its duration and the key transitions that
// arrived before it.
type Frame struct {
	F  int     `json:"f"`
	DT float64 `json:"dt"`
	E  []Event `json:"e,omitempty"`
}

// Session is a complete recorded run.
type Session struct {
	Version   string  `json:"version"`
	Map       string  `json:"map"`
	StartTime string  `json:"startTime"`
	Frames    []Frame `json:"frames"`
}

// NewSession starts an empty session for the named map.
func NewSession(mapName string) Session {
	return Session{
		Version:   Version,
		Map:       mapName,
		StartTime: time.Now().Format(time.RFC3339),
	}
}

// Load reads a session from a file.
func Load(filename string) (*Session, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var s Session
	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("unsupported replay version %q", s.Version)
	}
	return &s, nil
}

// Save writes a session to a file.
func Save(filename string, s Session) error {
	data, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write replay: %w", err)
	}
	return nil
}
