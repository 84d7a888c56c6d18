package engine

import (
	"math"

	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
)

// Sink receives the draw commands of one frame in paint order: terrain
// first, then pickups, machines, beams, and the player last.
type Sink interface {
	Emit(Command)
}

// Command is one blit in pixel space. Sprite names the thing to draw; the
// shell owns how it looks. Beams carry their endpoint in End and a zero
// Size.
type Command struct {
	Sprite string
	Pos    geom.Vec2 // top-left, pixels
	Size   geom.Vec2 // pixels
	End    geom.Vec2 // beam segment endpoint, beams only
	Flip   bool      // horizontal mirror
	Blink  bool      // damage-flash / crumble flash
}

// DrawFrame emits the current frame's draw command list. It never mutates
// the world; two consecutive calls emit identical commands.
func (w *World) DrawFrame(sink Sink) {
	w.drawTiles(sink)
	w.drawMarkers(sink)
	w.drawDynamics(sink)
	w.drawPlayer(sink)
}

func (w *World) drawTiles(sink Sink) {
	for cy := 0; cy < w.level.Height; cy++ {
		for cx := 0; cx < w.level.Width; cx++ {
			t := w.level.TileAt(cx, cy)
			if t.Kind == entity.TileEmpty || t.Kind == entity.TileMarker {
				continue
			}
			if t.Kind == entity.TileCoinWall && w.inv.CoinCount() >= t.Count {
				continue // open walls are invisible as well as passable
			}
			sink.Emit(Command{
				Sprite: t.Kind.String(),
				Pos:    geom.Vec2{X: float64(cx * entity.TilePixels), Y: float64(cy * entity.TilePixels)},
				Size:   geom.Vec2{X: entity.TilePixels, Y: entity.TilePixels},
			})
		}
	}
}

// drawMarkers emits the pickups still on the map. Consumed markers vanish;
// save points are always visible.
func (w *World) drawMarkers(sink Sink) {
	for _, m := range w.level.Markers {
		var sprite string
		switch m.Kind {
		case entity.MarkerCoin:
			if _, taken := w.inv.Coins[m.ID]; taken {
				continue
			}
			sprite = "coin"
		case entity.MarkerRareCoin:
			if _, taken := w.inv.RareCoins[m.ID]; taken {
				continue
			}
			sprite = "rare_coin"
		case entity.MarkerHpUp:
			if _, taken := w.inv.HpUps[m.ID]; taken {
				continue
			}
			sprite = "hp_up"
		case entity.MarkerPowerup:
			if w.inv.Has(m.Powerup) {
				continue
			}
			sprite = "powerup"
		case entity.MarkerSavePoint:
			sprite = "save_point"
		default:
			continue
		}
		sink.Emit(Command{
			Sprite: sprite,
			Pos:    geom.Vec2{X: float64(m.CellX * entity.TilePixels), Y: float64(m.CellY * entity.TilePixels)},
			Size:   geom.Vec2{X: entity.TilePixels, Y: entity.TilePixels},
		})
	}
}

func (w *World) drawDynamics(sink Sink) {
	for _, d := range w.dynamics {
		if d.Phase == entity.PhaseDestroyed {
			continue
		}
		r := d.Rect()
		sink.Emit(Command{
			Sprite: d.Kind.String(),
			Pos:    r.Pos.Scale(entity.TilePixels),
			Size:   r.Size.Scale(entity.TilePixels),
			Flip:   d.Dir.X < 0,
			Blink:  d.Kind == entity.KindVanishBlock && d.Phase == entity.PhaseTriggered,
		})
		if d.Kind == entity.KindLaser {
			from, to := w.motion.LaserBeam(d)
			sink.Emit(Command{
				Sprite: "laser_beam",
				Pos:    from.Scale(entity.TilePixels),
				End:    to.Scale(entity.TilePixels),
			})
		}
	}
}

func (w *World) drawPlayer(sink Sink) {
	if w.player.Dead {
		return
	}
	r := w.player.Rect()
	blink := w.player.IsInvincible() && int(w.player.IframeTimer*10)%2 == 0
	sink.Emit(Command{
		Sprite: "player",
		Pos:    r.Pos.Scale(entity.TilePixels),
		Size:   r.Size.Scale(entity.TilePixels),
		Flip:   !w.player.FacingRight,
		Blink:  blink,
	})
}

// Snapshot is the read-only world summary used by the shell for camera and
// HUD work, and by tests for assertions.
type Snapshot struct {
	PlayerPos geom.Vec2 // tile units, body center
	PlayerVel geom.Vec2
	Dead      bool
	OnGround  bool
	HP        int
	MaxHP     int
	Air       float64
	Coins     int
	RareCoins int
	PowerUps  []string
	AnchorID  int
}

// Snapshot returns the current frame's summary without mutating anything.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		PlayerPos: w.player.Pos,
		PlayerVel: w.player.Vel,
		Dead:      w.player.Dead,
		OnGround:  w.player.OnGround,
		HP:        w.inv.HP,
		MaxHP:     w.inv.MaxHP(),
		Air:       w.player.Air,
		Coins:     w.inv.CoinCount(),
		RareCoins: w.inv.RareCoinCount(),
		PowerUps:  w.inv.AbilityList(),
		AnchorID:  w.anchorID,
	}
}

// StateHash folds the full simulation state into an order-stable 64-bit
// value. Two worlds that stepped through the same quanta with the same
// inputs hash identically, which is what the replay verifier and the
// determinism tests compare.
func (w *World) StateHash() uint64 {
	h := uint64(17)
	mix := func(v uint64) { h = h*31 + v }
	mixF := func(v float64) { mix(math.Float64bits(v)) }
	mixS := func(s string) {
		for i := 0; i < len(s); i++ {
			mix(uint64(s[i]))
		}
		mix(0xff)
	}

	mixF(w.player.Pos.X)
	mixF(w.player.Pos.Y)
	mixF(w.player.Vel.X)
	mixF(w.player.Vel.Y)
	mixF(w.player.Air)
	mix(boolBit(w.player.Dead))
	mix(boolBit(w.player.FacingRight))
	mix(boolBit(w.player.OnGround))
	mix(uint64(w.inv.HP))
	mix(uint64(w.inv.MaxHP()))
	for _, id := range setKeys(w.inv.Coins) {
		mix(uint64(id))
	}
	mix(0xff)
	for _, id := range setKeys(w.inv.RareCoins) {
		mix(uint64(id))
	}
	mix(0xff)
	for _, id := range setKeys(w.inv.HpUps) {
		mix(uint64(id))
	}
	mix(0xff)
	for _, a := range w.inv.AbilityList() {
		mixS(a)
	}
	mix(uint64(w.anchorID))
	for _, d := range w.dynamics {
		mix(uint64(d.ID))
		mix(uint64(d.Kind))
		mix(uint64(d.Phase))
		mixF(d.Pos.X)
		mixF(d.Pos.Y)
		mixF(d.Vel.X)
		mixF(d.Vel.Y)
		mixF(d.Timer)
		mixF(d.Angle)
		mixF(d.Dist)
	}
	return h
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
