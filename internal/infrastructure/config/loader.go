// Package config loads game configuration: JSON tuning and YAML entity
// prefabs, from any fs.FS (embedded assets or an on-disk override dir).
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config bundles everything the game needs at startup.
type Config struct {
	Tuning  Tuning
	Prefabs Prefabs
}

// Loader reads configuration files from a filesystem.
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a loader reading from a directory on disk.
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a loader reading from the given filesystem.
// basePath is only used in error messages.
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// LoadTuning reads and validates tuning.json.
func (l *Loader) LoadTuning() (*Tuning, error) {
	data, err := fs.ReadFile(l.fsys, "tuning.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning config: %w", err)
	}

	var t Tuning
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}
	return &t, nil
}

// LoadPrefabs reads entities.yaml.
func (l *Loader) LoadPrefabs() (*Prefabs, error) {
	data, err := fs.ReadFile(l.fsys, "entities.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read entity prefabs: %w", err)
	}

	var p Prefabs
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse entity prefabs: %w", err)
	}
	return &p, nil
}

// LoadAll loads every configuration file.
func (l *Loader) LoadAll() (*Config, error) {
	tuning, err := l.LoadTuning()
	if err != nil {
		return nil, err
	}
	prefabs, err := l.LoadPrefabs()
	if err != nil {
		return nil, err
	}
	return &Config{Tuning: *tuning, Prefabs: *prefabs}, nil
}

// Validate rejects tunings the simulation cannot run on.
func (t *Tuning) Validate() error {
	if t.Physics.QuantumHz <= 0 {
		return fmt.Errorf("physics.quantumHz must be positive, got %d", t.Physics.QuantumHz)
	}
	if t.Physics.MaxStepSeconds <= 0 {
		return fmt.Errorf("physics.maxStepSeconds must be positive, got %g", t.Physics.MaxStepSeconds)
	}
	if t.Player.Width <= 0 || t.Player.Height <= 0 {
		return fmt.Errorf("player extents must be positive, got %gx%g", t.Player.Width, t.Player.Height)
	}
	if t.Combat.BaseMaxHP < 1 {
		return fmt.Errorf("combat.baseMaxHP must be at least 1, got %d", t.Combat.BaseMaxHP)
	}
	for _, action := range []string{"left", "right", "jump"} {
		if len(t.Input.Bindings[action]) == 0 {
			return fmt.Errorf("input.bindings.%s must not be empty", action)
		}
	}
	return nil
}
