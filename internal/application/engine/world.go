// Package engine owns the live simulation. A World value aggregates the
// immutable level, the player, the inventory, and the machine population,
// and advances them in fixed integration quanta. The host shell talks to
// the simulation exclusively through this package: key events in, draw
// commands and snapshots out, opaque save blobs both ways.
package engine

import (
	"fmt"
	"sort"

	"github.com/hollowcast/caldera/internal/application/system"
	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
	"github.com/hollowcast/caldera/internal/infrastructure/save"
)

// timeEps absorbs float drift in the step accumulator so a span of time
// always resolves to the same quantum count regardless of how callers
// partition it.
const timeEps = 1e-9

// World is one live simulation. It is not safe for concurrent use; the host
// calls Step once per frame and every mutation happens inside Step,
// ApplySaveData, or Reset.
type World struct {
	tuning  *config.Tuning
	prefabs *config.Prefabs
	level   *entity.Level
	mapName string

	player     *entity.Player
	inv        *entity.Inventory
	dynamics   []*entity.Dynamic
	translator *system.Translator

	physics *system.PhysicsSystem
	motion  *system.MotionSystem
	hazards *system.HazardSystem

	markerKind map[int]entity.MarkerKind

	accumulator float64
	pending     system.Intent
	anchorID    int // save point the player respawns at, 0 = spawn marker
	nextID      int
}

// Load builds a World from raw map resources. mapName selects the .tmx
// entry in resources; tilesets it references must be present under their
// own names. Fails with *entity.MalformedMapError when no valid world can
// be constructed.
func Load(resources map[string][]byte, mapName string, tuning config.Tuning, prefabs config.Prefabs) (*World, error) {
	level, err := system.BuildLevel(resources, mapName)
	if err != nil {
		return nil, err
	}
	return NewWorld(level, mapName, tuning, prefabs), nil
}

// NewWorld builds a World over an already-constructed level. Tests use this
// to run many small worlds without going through map parsing.
func NewWorld(level *entity.Level, mapName string, tuning config.Tuning, prefabs config.Prefabs) *World {
	w := &World{
		tuning:  &tuning,
		prefabs: &prefabs,
		level:   level,
		mapName: mapName,
	}
	w.physics = system.NewPhysicsSystem(w.tuning, level)
	w.motion = system.NewMotionSystem(w.prefabs, level)
	w.hazards = system.NewHazardSystem(w.tuning, w.prefabs, level, w.motion)
	w.translator = system.NewTranslator(tuning.Input.Bindings)

	w.markerKind = make(map[int]entity.MarkerKind, len(level.Markers)+1)
	w.markerKind[level.Spawn.ID] = entity.MarkerSpawn
	for _, m := range level.Markers {
		w.markerKind[m.ID] = m.Kind
	}

	w.Reset()
	return w
}

// MapName returns the name of the loaded map resource.
func (w *World) MapName() string { return w.mapName }

// Level returns the immutable level geometry.
func (w *World) Level() *entity.Level { return w.level }

// Reset discards all progress and rebuilds the level-default world: fresh
// inventory, player at the spawn marker, every machine back at its origin.
func (w *World) Reset() {
	w.inv = entity.NewInventory(w.tuning.Combat.BaseMaxHP)
	w.player = w.newPlayerAt(w.spawnPos())
	w.dynamics = system.SpawnDynamics(w.level, w.prefabs)
	w.nextID = w.transientIDBase()
	w.anchorID = 0
	w.accumulator = 0
	w.pending = system.Intent{}
	w.translator.Reset()
}

// ApplyInput feeds one key transition into the input translator. Duplicate
// down events and unbound keys are ignored.
func (w *World) ApplyInput(ev system.KeyEvent) {
	w.translator.Apply(ev)
}

// Step advances the simulation by dt seconds, clamped to the tuning's
// per-call ceiling. Time is consumed in fixed quanta; a remainder carries to
// the next call, and press edges arriving during a too-short step are held
// until a quantum runs.
func (w *World) Step(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if max := w.tuning.Physics.MaxStepSeconds; dt > max {
		dt = max
	}
	intent := w.translator.ConsumeIntent()
	intent.MergeEdges(w.pending)
	w.pending = system.Intent{}

	w.accumulator += dt
	h := w.tuning.Physics.Quantum()
	n := int((w.accumulator + timeEps) / h)
	if n == 0 {
		w.pending = intent
		return
	}
	for i := 0; i < n; i++ {
		w.substep(intent, h)
		intent.ClearEdges()
	}
	w.accumulator -= float64(n) * h
	if w.accumulator < timeEps {
		w.accumulator = 0
	}
}

// substep runs one quantum in the fixed order: platform kinematics, player
// integration, machine programs, then the hazard/pickup overlap pass.
func (w *World) substep(intent system.Intent, h float64) {
	w.motion.UpdatePlatforms(w.dynamics, h)
	if w.player.Dead {
		if intent.JumpPressed {
			w.respawn()
		}
	} else {
		w.physics.Update(w.player, w.inv, intent, w.dynamics, h)
	}
	spawned := w.motion.UpdateMachines(w.dynamics, w.player.Rect(), w.player.RidingPlatform, w.allocID, h)
	w.dynamics = append(w.dynamics, spawned...)
	w.pruneProjectiles()

	ev := w.hazards.Update(w.player, w.inv, w.dynamics, h)
	if ev.SavePointID != 0 {
		w.anchorID = ev.SavePointID
	}
}

// respawn puts a dead player back at the anchor with full HP. Progress is
// kept; transient machines reset to their level defaults.
func (w *World) respawn() {
	w.resetTransients()
	w.inv.HealFull()
	w.player = w.newPlayerAt(w.anchorPos())
}

// resetTransients rebuilds the machine population from markers, keeping only
// the persistent mutation: destroyed vanish blocks stay destroyed.
func (w *World) resetTransients() {
	vanished := w.vanishedIDs()
	w.dynamics = system.SpawnDynamics(w.level, w.prefabs)
	w.markVanished(vanished)
	w.nextID = w.transientIDBase()
}

func (w *World) pruneProjectiles() {
	kept := w.dynamics[:0]
	for _, d := range w.dynamics {
		if d.Kind == entity.KindProjectile && d.Phase == entity.PhaseDestroyed {
			continue
		}
		kept = append(kept, d)
	}
	w.dynamics = kept
}

func (w *World) allocID() int {
	id := w.nextID
	w.nextID++
	return id
}

// transientIDBase returns the first id free for spawned transients, past
// every marker id the loader assigned.
func (w *World) transientIDBase() int {
	base := w.level.Spawn.ID
	for _, m := range w.level.Markers {
		if m.ID > base {
			base = m.ID
		}
	}
	return base + 1
}

// newPlayerAt creates a full-size player body centered at pos.
func (w *World) newPlayerAt(pos geom.Vec2) *entity.Player {
	p := entity.NewPlayer(pos, w.physics.NormalHalf())
	p.Air = w.hazards.MaxAir(w.inv)
	return p
}

// spawnPos is the spawn marker cell with the player's feet on the cell
// floor.
func (w *World) spawnPos() geom.Vec2 {
	return w.standOnCell(w.level.Spawn)
}

// anchorPos is the respawn position: the touched save point, or spawn when
// none has been reached.
func (w *World) anchorPos() geom.Vec2 {
	if w.anchorID != 0 {
		for _, m := range w.level.Markers {
			if m.ID == w.anchorID {
				return w.standOnCell(m)
			}
		}
	}
	return w.spawnPos()
}

func (w *World) standOnCell(m entity.Marker) geom.Vec2 {
	half := w.physics.NormalHalf()
	return geom.Vec2{X: float64(m.CellX) + 0.5, Y: float64(m.CellY+1) - half.Y}
}

// CharacterState is the HUD-facing player summary.
type CharacterState struct {
	HP       int
	MaxHP    int
	PowerUps []string
}

// CharacterState returns HP and the unlocked ability names, sorted.
func (w *World) CharacterState() CharacterState {
	return CharacterState{
		HP:       w.inv.HP,
		MaxHP:    w.inv.MaxHP(),
		PowerUps: w.inv.AbilityList(),
	}
}

// InfoLine returns the one-line status the shell prints each frame.
func (w *World) InfoLine() string {
	return fmt.Sprintf("Coins: %3d   Rare Coins: %3d", w.inv.CoinCount(), w.inv.RareCoinCount())
}

// AnchorID returns the marker id of the active respawn point, 0 when the
// spawn marker is still the anchor. The shell autosaves when it changes.
func (w *World) AnchorID() int { return w.anchorID }

// SaveData serializes the persistent subset of world state into an opaque
// blob. Two calls on identical progress yield identical bytes.
func (w *World) SaveData() string {
	return save.Encode(save.Data{
		PlayerX:   w.player.Pos.X,
		PlayerY:   w.player.Pos.Y,
		HP:        w.inv.HP,
		Coins:     setKeys(w.inv.Coins),
		RareCoins: setKeys(w.inv.RareCoins),
		HpUps:     setKeys(w.inv.HpUps),
		PowerUps:  w.inv.AbilityList(),
		Vanished:  w.vanishedIDs(),
		AnchorID:  w.anchorID,
	})
}

// ApplySaveData restores persisted progress from a blob. On any decode
// failure the world is left exactly as it was and the error wraps
// save.ErrCorruptSave. Marker ids that no longer exist in the level are
// dropped silently; fields outside the persisted set reset to level
// defaults.
func (w *World) ApplySaveData(raw string) error {
	d, err := save.Decode(raw)
	if err != nil {
		return err
	}

	inv := entity.NewInventory(w.tuning.Combat.BaseMaxHP)
	for _, id := range d.Coins {
		if w.markerKind[id] == entity.MarkerCoin {
			inv.Coins[id] = struct{}{}
		}
	}
	for _, id := range d.RareCoins {
		if w.markerKind[id] == entity.MarkerRareCoin {
			inv.RareCoins[id] = struct{}{}
		}
	}
	for _, id := range d.HpUps {
		if w.markerKind[id] == entity.MarkerHpUp {
			inv.HpUps[id] = struct{}{}
		}
	}
	for _, a := range d.PowerUps {
		inv.Grant(a)
	}
	inv.HP = clampInt(d.HP, 1, inv.MaxHP())

	w.inv = inv
	w.anchorID = 0
	if w.markerKind[d.AnchorID] == entity.MarkerSavePoint {
		w.anchorID = d.AnchorID
	}
	w.dynamics = system.SpawnDynamics(w.level, w.prefabs)
	var vanished []int
	for _, id := range d.Vanished {
		if w.markerKind[id] == entity.MarkerVanishBlock {
			vanished = append(vanished, id)
		}
	}
	w.markVanished(vanished)
	w.nextID = w.transientIDBase()
	w.player = w.newPlayerAt(geom.Vec2{X: d.PlayerX, Y: d.PlayerY})
	w.accumulator = 0
	w.pending = system.Intent{}
	return nil
}

// SetTuning swaps in a new tuning mid-session, for live config reload. The
// value is validated first; key bindings are rebuilt, which releases any
// currently held keys.
func (w *World) SetTuning(t config.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	*w.tuning = t
	w.translator = system.NewTranslator(t.Input.Bindings)
	return nil
}

func (w *World) vanishedIDs() []int {
	var out []int
	for _, d := range w.dynamics {
		if d.Kind == entity.KindVanishBlock && d.Phase == entity.PhaseDestroyed {
			out = append(out, d.ID)
		}
	}
	sort.Ints(out)
	return out
}

func (w *World) markVanished(ids []int) {
	for _, d := range w.dynamics {
		if d.Kind != entity.KindVanishBlock {
			continue
		}
		for _, id := range ids {
			if d.ID == id {
				d.Phase = entity.PhaseDestroyed
				d.Timer = 0
			}
		}
	}
}

func setKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
