package system

import (
	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// contactPad inflates the player box for lethal-contact checks so a body
// held flush against a slamming face still counts as touching it.
const contactPad = 0.01

// HazardSystem runs the post-movement overlap pass: pickups, save points,
// damage sources and the air meter. At most one damage event lands per
// substep, and invulnerability frames suppress repeats.
type HazardSystem struct {
	tuning  *config.Tuning
	prefabs *config.Prefabs
	level   *entity.Level
	motion  *MotionSystem
}

// NewHazardSystem creates a hazard system. It borrows the motion system for
// laser beam geometry.
func NewHazardSystem(tuning *config.Tuning, prefabs *config.Prefabs, level *entity.Level, motion *MotionSystem) *HazardSystem {
	return &HazardSystem{tuning: tuning, prefabs: prefabs, level: level, motion: motion}
}

// Events is what one overlap pass observed.
type Events struct {
	SavePointID int // save point currently overlapped, 0 when none
	Died        bool
}

// Update resolves overlaps for one quantum. Dead players are inert.
func (s *HazardSystem) Update(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic, h float64) Events {
	var ev Events
	if p.Dead {
		return ev
	}
	r := p.Rect()
	s.updateAir(p, inv, h)
	s.collectPickups(inv, r, &ev)
	s.applyDamage(p, inv, dynamics, r)
	ev.Died = p.Dead
	return ev
}

// updateAir drains the meter while submerged and deals a drowning tick each
// period once it is empty. Surfacing refills instantly.
func (s *HazardSystem) updateAir(p *entity.Player, inv *entity.Inventory, h float64) {
	if !p.Submerged {
		p.Air = s.MaxAir(inv)
		p.DrownTimer = 0
		return
	}
	p.Air -= h
	if p.Air > 0 {
		return
	}
	p.Air = 0
	p.DrownTimer -= h
	if p.DrownTimer <= 0 {
		s.hurt(p, inv, geom.Vec2{})
		p.DrownTimer = s.tuning.Water.DrownPeriod
	}
}

// MaxAir returns the air meter capacity in seconds.
func (s *HazardSystem) MaxAir(inv *entity.Inventory) float64 {
	if inv.Has(entity.AbilityWater) {
		return s.tuning.Water.AirSecondsFinned
	}
	return s.tuning.Water.AirSeconds
}

// collectPickups banks every pickup marker the player overlaps. Collection
// is idempotent per marker id, so lingering in a cell never double-counts.
func (s *HazardSystem) collectPickups(inv *entity.Inventory, r geom.Rect, ev *Events) {
	for _, m := range s.level.Markers {
		cell := geom.Rect{
			Pos:  geom.Vec2{X: float64(m.CellX), Y: float64(m.CellY)},
			Size: geom.Vec2{X: 1, Y: 1},
		}
		if !r.Overlaps(cell) {
			continue
		}
		switch m.Kind {
		case entity.MarkerCoin:
			inv.CollectCoin(m.ID)
		case entity.MarkerRareCoin:
			inv.CollectRareCoin(m.ID)
		case entity.MarkerHpUp:
			inv.CollectHpUp(m.ID)
		case entity.MarkerPowerup:
			inv.Grant(m.Powerup)
		case entity.MarkerSavePoint:
			inv.HealFull()
			ev.SavePointID = m.ID
		}
	}
}

func (s *HazardSystem) applyDamage(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic, r geom.Rect) {
	// a slamming thwump crushes regardless of invulnerability frames
	touch := geom.Rect{
		Pos:  geom.Vec2{X: r.Pos.X - contactPad, Y: r.Pos.Y - contactPad},
		Size: geom.Vec2{X: r.Size.X + 2*contactPad, Y: r.Size.Y + 2*contactPad},
	}
	for _, d := range dynamics {
		if d.Kind == entity.KindThwump && d.Slamming() && touch.Overlaps(d.Rect()) {
			s.kill(p)
			return
		}
	}
	if p.IsInvincible() {
		return
	}

	if knock, hit := s.tileHazard(p, inv, r); hit {
		s.hurt(p, inv, knock)
		return
	}
	for _, d := range dynamics {
		if d.Kind != entity.KindProjectile || d.Phase == entity.PhaseDestroyed {
			continue
		}
		if !r.Overlaps(d.Rect()) {
			continue
		}
		d.Phase = entity.PhaseDestroyed
		s.hurt(p, inv, s.knockFrom(p, d.Pos.X))
		return
	}
	for _, d := range dynamics {
		if d.Kind != entity.KindLaser {
			continue
		}
		from, to := s.motion.LaserBeam(d)
		if r.IntersectsSegment(from, to) {
			s.hurt(p, inv, s.knockFrom(p, d.Pos.X))
			return
		}
	}
}

// tileHazard scans the overlapped cells for lava and spike damage, returning
// the knockback away from the struck cell.
func (s *HazardSystem) tileHazard(p *entity.Player, inv *entity.Inventory, r geom.Rect) (geom.Vec2, bool) {
	x0, y0, x1, y1 := s.level.CellRange(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			t := s.level.TileAt(cx, cy)
			switch t.Kind {
			case entity.TileLava:
				if inv.Has(entity.AbilityLava) {
					continue
				}
				return s.knockFrom(p, float64(cx)+0.5), true
			case entity.TileSpike:
				world := t.Hazard.Translate(geom.Vec2{X: float64(cx), Y: float64(cy)})
				if world.OverlapsRect(r) {
					return s.knockFrom(p, float64(cx)+0.5), true
				}
			}
		}
	}
	return geom.Vec2{}, false
}

// knockFrom builds the knockback impulse pushing the player up and away from
// a source x position.
func (s *HazardSystem) knockFrom(p *entity.Player, sourceX float64) geom.Vec2 {
	dir := 1.0
	if p.Pos.X < sourceX {
		dir = -1
	}
	return geom.Vec2{X: dir * s.tuning.Combat.KnockbackX, Y: -s.tuning.Combat.KnockbackY}
}

// hurt applies one damage event: HP loss, invulnerability window, knockback.
// A zero knock vector keeps the current velocity (drowning).
func (s *HazardSystem) hurt(p *entity.Player, inv *entity.Inventory, knock geom.Vec2) {
	inv.Damage(s.tuning.Combat.HazardDamage)
	p.IframeTimer = s.tuning.Combat.Iframes
	if knock != (geom.Vec2{}) {
		p.Vel = knock
	}
	if inv.HP <= 0 {
		s.kill(p)
	}
}

func (s *HazardSystem) kill(p *entity.Player) {
	p.Dead = true
	p.Vel = geom.Vec2{}
}
