package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcast/caldera/internal/application/engine"
	"github.com/hollowcast/caldera/internal/application/system"
	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

func createTestSession() Session {
	s := NewSession("test.tmx")
	s.StartTime = "2026-01-01T00:00:00Z"
	s.Frames = []Frame{
		{F: 0, DT: 1.0 / 60.0, E: []Event{{T: "d", K: "ArrowRight"}}},
		{F: 1, DT: 1.0 / 60.0},
		{F: 2, DT: 1.0 / 60.0, E: []Event{{T: "u", K: "ArrowRight"}, {T: "d", K: "z"}}},
	}
	return s
}

// flat runway world, enough for input to have visible consequences
func createTestWorld() *engine.World {
	const w, h = 10, 4
	lvl := &entity.Level{Width: w, Height: h, Tiles: make([]entity.Tile, w*h)}
	for x := 0; x < w; x++ {
		lvl.Tiles[(h-1)*w+x] = entity.Tile{Kind: entity.TileSolid, Solid: true}
	}
	lvl.Spawn = entity.Marker{ID: 1, Kind: entity.MarkerSpawn, CellX: 0, CellY: h - 2}

	tuning := config.Tuning{
		Display:  config.DisplayConfig{ScreenWidth: 960, ScreenHeight: 540, Scale: 1, Framerate: 60},
		Physics:  config.PhysicsConfig{QuantumHz: 240, MaxStepSeconds: 0.1, Gravity: 60, TerminalVelocity: 30},
		Movement: config.MovementConfig{MaxSpeed: 15, GroundAccel: 150, AirAccel: 25, GroundDecayRate: 60, AirDecayRate: 5, DropThroughTime: 0.2},
		Jump:     config.JumpConfig{Impulse: 22, VelocityBonus: 0.2, CoyoteTime: 0.1, CutFactor: 0.01, WallGrace: 0.3},
		Dash:     config.DashConfig{Speed: 30, Duration: 0.3, Cooldown: 0.5},
		Water:    config.WaterConfig{MaxSpeed: 10, Gravity: 20, TerminalVelocity: 15, AccelFactor: 0.2, JumpFactor: 0.5, VerticalDragRate: 2, AirSeconds: 8, AirSecondsFinned: 16, DrownPeriod: 2},
		Combat:   config.CombatConfig{HazardDamage: 1, KnockbackX: 10, KnockbackY: 12, Iframes: 1.0, BaseMaxHP: 3},
		Player:   config.PlayerConfig{Width: 1.25, Height: 2.5, SmallWidth: 0.75, SmallHeight: 0.75},
		Input: config.InputConfig{Bindings: map[string][]string{
			system.ActionLeft:  {"ArrowLeft"},
			system.ActionRight: {"ArrowRight"},
			system.ActionDown:  {"ArrowDown"},
			system.ActionJump:  {"z"},
			system.ActionDash:  {"Shift"},
		}},
	}
	prefabs := config.Prefabs{
		MovingPlatform: config.PlatformPrefab{Speed: 4, Width: 3, Height: 0.5},
		Thwump:         config.ThwumpPrefab{SlamSpeed: 40, RetractSpeed: 6, RestSeconds: 1, TriggerRange: 6, Width: 2, Height: 2},
		Turret:         config.TurretPrefab{FirePeriod: 1.5, Width: 1, Height: 1},
		Projectile:     config.ProjectilePrefab{Speed: 7, MaxRange: 30, Width: 0.375, Height: 0.375},
		Laser:          config.LaserPrefab{AngularSpeed: 1.57, BeamLength: 8},
		VanishBlock:    config.VanishPrefab{CrumbleSeconds: 0.5, Width: 1, Height: 1},
	}
	return engine.NewWorld(lvl, "test.tmx", tuning, prefabs)
}

func TestSessionSaveLoad(t *testing.T) {
	s := createTestSession()
	path := filepath.Join(t.TempDir(), "run.json")

	require.NoError(t, Save(path, s))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, *loaded)
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"9.9","frames":[]}`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported replay version")
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to decode replay")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestNewSession(t *testing.T) {
	s := NewSession("cavern.tmx")
	assert.Equal(t, Version, s.Version)
	assert.Equal(t, "cavern.tmx", s.Map)
	assert.NotEmpty(t, s.StartTime)
	assert.Empty(t, s.Frames)
}

func TestReplayerNext(t *testing.T) {
	r := NewReplayer(createTestSession())

	events, dt, ok := r.Next()
	require.True(t, ok)
	assert.InDelta(t, 1.0/60.0, dt, 1e-12)
	require.Len(t, events, 1)
	assert.Equal(t, system.KeyDown, events[0].Kind)
	assert.Equal(t, "ArrowRight", events[0].Key)

	events, _, ok = r.Next()
	require.True(t, ok)
	assert.Empty(t, events)

	events, _, ok = r.Next()
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.Equal(t, system.KeyUp, events[0].Kind)
	assert.Equal(t, system.KeyDown, events[1].Kind)
	assert.Equal(t, "z", events[1].Key)

	_, _, ok = r.Next()
	assert.False(t, ok)
}

func TestReplayerReset(t *testing.T) {
	r := NewReplayer(createTestSession())
	assert.Equal(t, 3, r.TotalFrames())

	r.Next()
	r.Next()
	assert.Equal(t, 2, r.CurrentFrame())

	r.Reset()
	assert.Equal(t, 0, r.CurrentFrame())
	events, _, ok := r.Next()
	require.True(t, ok)
	assert.Len(t, events, 1)
}

func TestRunReproducesARun(t *testing.T) {
	s := NewSession("test.tmx")
	s.Frames = append(s.Frames, Frame{F: 0, DT: 1.0 / 60.0, E: []Event{{T: "d", K: "ArrowRight"}}})
	for i := 1; i < 120; i++ {
		f := Frame{F: i, DT: 1.0 / 60.0}
		if i == 60 {
			f.E = []Event{{T: "d", K: "z"}}
		}
		s.Frames = append(s.Frames, f)
	}

	first := Run(createTestWorld(), s)
	second := Run(createTestWorld(), s)
	assert.Equal(t, first, second, "identical sessions diverged")

	idle := NewSession("test.tmx")
	for i := 0; i < 120; i++ {
		idle.Frames = append(idle.Frames, Frame{F: i, DT: 1.0 / 60.0})
	}
	assert.NotEqual(t, first, Run(createTestWorld(), idle), "input had no effect on the outcome")
}
