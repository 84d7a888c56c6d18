package system

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// testRuneGIDs maps map-sketch runes to gids in testTilesetTSX (firstgid 1).
var testRuneGIDs = map[rune]uint32{
	'.': 0,  // empty
	'#': 1,  // ground
	'^': 2,  // spike
	'~': 3,  // water
	'L': 4,  // lava
	'w': 5,  // coin wall, count 5
	'n': 6,  // narrow gap
	'-': 7,  // one-way platform
	'S': 8,  // spawn
	'c': 9,  // coin
	'R': 10, // rare coin
	'J': 11, // powerup wall_jump
	'D': 12, // powerup dash
	'W': 13, // powerup water
	'M': 14, // powerup small
	'F': 15, // powerup lava
	'2': 16, // powerup double_jump
	'H': 17, // hp up
	'P': 18, // save point
	'p': 19, // moving platform, right, range 4
	'T': 20, // thwump, down
	't': 21, // turret, left
	'l': 22, // laser
	'V': 23, // vanish block
	'e': 24, // moving platform, up, range 2
	'g': 25, // turret, right
	'x': 26, // moving platform, range 0
}

const testTilesetTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="world" tilewidth="32" tileheight="32" tilecount="26">
 <tile id="0"><properties><property name="kind" value="ground"/></properties></tile>
 <tile id="1">
  <properties><property name="kind" value="spike"/></properties>
  <objectgroup><object id="1" x="0" y="16" width="32" height="16"><polygon points="0,16 16,0 32,16"/></object></objectgroup>
 </tile>
 <tile id="2"><properties><property name="kind" value="water"/></properties></tile>
 <tile id="3"><properties><property name="kind" value="lava"/></properties></tile>
 <tile id="4"><properties><property name="kind" value="coin_wall"/><property name="count" type="int" value="5"/></properties></tile>
 <tile id="5"><properties><property name="kind" value="narrow_gap"/></properties></tile>
 <tile id="6"><properties><property name="kind" value="platform"/></properties></tile>
 <tile id="7"><properties><property name="kind" value="spawn"/></properties></tile>
 <tile id="8"><properties><property name="kind" value="coin"/></properties></tile>
 <tile id="9"><properties><property name="kind" value="rare_coin"/></properties></tile>
 <tile id="10"><properties><property name="kind" value="powerup"/><property name="powerup" value="wall_jump"/></properties></tile>
 <tile id="11"><properties><property name="kind" value="powerup"/><property name="powerup" value="dash"/></properties></tile>
 <tile id="12"><properties><property name="kind" value="powerup"/><property name="powerup" value="water"/></properties></tile>
 <tile id="13"><properties><property name="kind" value="powerup"/><property name="powerup" value="small"/></properties></tile>
 <tile id="14"><properties><property name="kind" value="powerup"/><property name="powerup" value="lava"/></properties></tile>
 <tile id="15"><properties><property name="kind" value="powerup"/><property name="powerup" value="double_jump"/></properties></tile>
 <tile id="16"><properties><property name="kind" value="hp_up"/></properties></tile>
 <tile id="17"><properties><property name="kind" value="save_point"/></properties></tile>
 <tile id="18"><properties><property name="kind" value="moving_platform"/><property name="orientation" value="right"/><property name="range" type="int" value="4"/></properties></tile>
 <tile id="19"><properties><property name="kind" value="thwump"/><property name="orientation" value="down"/></properties></tile>
 <tile id="20"><properties><property name="kind" value="turret"/><property name="orientation" value="left"/></properties></tile>
 <tile id="21"><properties><property name="kind" value="laser"/></properties></tile>
 <tile id="22"><properties><property name="kind" value="vanish_block"/></properties></tile>
 <tile id="23"><properties><property name="kind" value="moving_platform"/><property name="orientation" value="up"/><property name="range" type="int" value="2"/></properties></tile>
 <tile id="24"><properties><property name="kind" value="turret"/><property name="orientation" value="right"/></properties></tile>
 <tile id="25"><properties><property name="kind" value="moving_platform"/><property name="range" type="int" value="0"/></properties></tile>
</tileset>`

// buildTestMap renders a rune sketch into map resources. Every row must have
// the same width.
func buildTestMap(rows []string) map[string][]byte {
	w := len(rows[0])
	cells := make([]string, 0, w*len(rows))
	for _, row := range rows {
		if len(row) != w {
			panic(fmt.Sprintf("ragged test map row %q", row))
		}
		for _, r := range row {
			gid, ok := testRuneGIDs[r]
			if !ok {
				panic(fmt.Sprintf("unknown test map rune %q", r))
			}
			cells = append(cells, strconv.Itoa(int(gid)))
		}
	}
	return buildTestMapCSV(w, len(rows), strings.Join(cells, ","))
}

// buildTestMapCSV wraps a raw CSV payload for tests that need to inject bad
// cell data directly.
func buildTestMapCSV(w, h int, csv string) map[string][]byte {
	tmx := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="%d" height="%d" tilewidth="32" tileheight="32">
 <tileset firstgid="1" source="world.tsx"/>
 <layer name="Main" width="%d" height="%d">
  <data encoding="csv">%s</data>
 </layer>
</map>`, w, h, w, h, csv)
	return map[string][]byte{
		"map.tmx":   []byte(tmx),
		"world.tsx": []byte(testTilesetTSX),
	}
}

// testTuning mirrors the shipped tuning file so simulation tests run against
// the real movement numbers.
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
			ActionLeft:  {"ArrowLeft"},
			ActionRight: {"ArrowRight"},
			ActionDown:  {"ArrowDown"},
			ActionJump:  {"z", " "},
			ActionDash:  {"Shift"},
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
