package engine

import (
	"fmt"

	"github.com/hollowcast/caldera/internal/application/system"
	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// fullCell is the hazard outline of a spike that covers its whole cell.
var fullCell = geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// buildTestLevel renders a rune sketch straight into a Level, skipping the
// map parser (the loader has its own tests). Marker ids are assigned in
// row-major order starting at 1, matching the loader. Spawn cells need two
// empty rows above them so the full-size body fits.
func buildTestLevel(rows []string) *entity.Level {
	w := len(rows[0])
	lvl := &entity.Level{Width: w, Height: len(rows), Tiles: make([]entity.Tile, w*len(rows))}
	nextID := 1
	marker := func(kind entity.MarkerKind, cx, cy int) entity.Marker {
		m := entity.Marker{ID: nextID, Kind: kind, CellX: cx, CellY: cy}
		nextID++
		return m
	}
	for cy, row := range rows {
		if len(row) != w {
			panic(fmt.Sprintf("ragged test level row %q", row))
		}
		for cx, r := range row {
			i := cy*w + cx
			switch r {
			case '.':
			case '#':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileSolid, Solid: true}
			case '^':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileSpike, Hazard: fullCell}
			case '~':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileWater}
			case 'L':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileLava}
			case 'w':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileCoinWall, Solid: true, Count: 5}
			case 'n':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileNarrowGap}
			case '-':
				lvl.Tiles[i] = entity.Tile{Kind: entity.TileOneWay}
			case 'S':
				lvl.Spawn = marker(entity.MarkerSpawn, cx, cy)
			case 'c':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerCoin, cx, cy))
			case 'R':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerRareCoin, cx, cy))
			case 'H':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerHpUp, cx, cy))
			case 'P':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerSavePoint, cx, cy))
			case 'D':
				m := marker(entity.MarkerPowerup, cx, cy)
				m.Powerup = entity.AbilityDash
				lvl.Markers = append(lvl.Markers, m)
			case 'F':
				m := marker(entity.MarkerPowerup, cx, cy)
				m.Powerup = entity.AbilityLava
				lvl.Markers = append(lvl.Markers, m)
			case 'p':
				m := marker(entity.MarkerMovingPlatform, cx, cy)
				m.Dir = geom.Vec2{X: 1}
				m.Range = 4
				lvl.Markers = append(lvl.Markers, m)
			case 'T':
				m := marker(entity.MarkerThwump, cx, cy)
				m.Dir = geom.Vec2{Y: 1}
				lvl.Markers = append(lvl.Markers, m)
			case 't':
				m := marker(entity.MarkerTurret, cx, cy)
				m.Dir = geom.Vec2{X: -1}
				lvl.Markers = append(lvl.Markers, m)
			case 'l':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerLaser, cx, cy))
			case 'V':
				lvl.Markers = append(lvl.Markers, marker(entity.MarkerVanishBlock, cx, cy))
			default:
				panic(fmt.Sprintf("unknown test level rune %q", r))
			}
		}
	}
	if lvl.Spawn.ID == 0 {
		panic("test level has no spawn")
	}
	return lvl
}

// testTuning mirrors the shipped tuning file.
func testTuning() config.Tuning {
	return config.Tuning{
		Display: config.DisplayConfig{ScreenWidth: 960, ScreenHeight: 540, Scale: 1, Framerate: 60},
		Physics: config.PhysicsConfig{
			QuantumHz:        240,
			MaxStepSeconds:   0.1,
			Gravity:          60,
			TerminalVelocity: 30,
		},
		Movement: config.MovementConfig{
			MaxSpeed:        15,
			GroundAccel:     150,
			AirAccel:        25,
			GroundDecayRate: 60,
			AirDecayRate:    5,
			DropThroughTime: 0.2,
		},
		Jump: config.JumpConfig{
			Impulse:       22,
			VelocityBonus: 0.2,
			CoyoteTime:    0.1,
			CutFactor:     0.01,
			WallGrace:     0.3,
		},
		Dash: config.DashConfig{Speed: 30, Duration: 0.3, Cooldown: 0.5},
		Water: config.WaterConfig{
			MaxSpeed:         10,
			Gravity:          20,
			TerminalVelocity: 15,
			AccelFactor:      0.2,
			JumpFactor:       0.5,
			VerticalDragRate: 2,
			AirSeconds:       8,
			AirSecondsFinned: 16,
			DrownPeriod:      2,
		},
		Combat: config.CombatConfig{
			HazardDamage: 1,
			KnockbackX:   10,
			KnockbackY:   12,
			Iframes:      1.0,
			BaseMaxHP:    3,
		},
		Player: config.PlayerConfig{Width: 1.25, Height: 2.5, SmallWidth: 0.75, SmallHeight: 0.75},
		Input: config.InputConfig{Bindings: map[string][]string{
			system.ActionLeft:  {"ArrowLeft"},
			system.ActionRight: {"ArrowRight"},
			system.ActionDown:  {"ArrowDown"},
			system.ActionJump:  {"z", " "},
			system.ActionDash:  {"Shift"},
		}},
	}
}

// testPrefabs mirrors the shipped entity prefab file.
func testPrefabs() config.Prefabs {
	return config.Prefabs{
		MovingPlatform: config.PlatformPrefab{Speed: 4, Width: 3, Height: 0.5},
		Thwump:         config.ThwumpPrefab{SlamSpeed: 40, RetractSpeed: 6, RestSeconds: 1, TriggerRange: 6, Width: 2, Height: 2},
		Turret:         config.TurretPrefab{FirePeriod: 1.5, Width: 1, Height: 1},
		Projectile:     config.ProjectilePrefab{Speed: 7, MaxRange: 30, Width: 0.375, Height: 0.375},
		Laser:          config.LaserPrefab{AngularSpeed: 1.57, BeamLength: 8},
		VanishBlock:    config.VanishPrefab{CrumbleSeconds: 0.5, Width: 1, Height: 1},
	}
}

func newTestWorld(rows []string) *World {
	return NewWorld(buildTestLevel(rows), "test.tmx", testTuning(), testPrefabs())
}

func press(w *World, key string) {
	w.ApplyInput(system.KeyEvent{Kind: system.KeyDown, Key: key})
}

func release(w *World, key string) {
	w.ApplyInput(system.KeyEvent{Kind: system.KeyUp, Key: key})
}

// stepFor advances the world in 1/60s frames for the given seconds.
func stepFor(w *World, seconds float64) {
	const dt = 1.0 / 60.0
	for t := 0.0; t < seconds; t += dt {
		w.Step(dt)
	}
}

// stepUntil advances until cond holds or the deadline passes; reports
// whether cond was reached.
func stepUntil(w *World, seconds float64, cond func() bool) bool {
	const dt = 1.0 / 60.0
	for t := 0.0; t < seconds; t += dt {
		if cond() {
			return true
		}
		w.Step(dt)
	}
	return cond()
}
