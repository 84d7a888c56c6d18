package system

import (
	"math"

	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// MotionSystem runs the per-quantum programs of the map machines: platform
// ping-pong, thwump slam cycles, turret fire timers, laser sweep, vanish
// crumble and projectile flight.
type MotionSystem struct {
	prefabs *config.Prefabs
	level   *entity.Level
}

// NewMotionSystem creates a motion system bound to a level.
func NewMotionSystem(prefabs *config.Prefabs, level *entity.Level) *MotionSystem {
	return &MotionSystem{prefabs: prefabs, level: level}
}

// SpawnDynamics builds the machine population from level markers. Machines
// reuse their marker ids, so persisted machine state survives a reload of
// the same map.
func SpawnDynamics(level *entity.Level, prefabs *config.Prefabs) []*entity.Dynamic {
	var out []*entity.Dynamic
	for _, m := range level.Markers {
		switch m.Kind {
		case entity.MarkerMovingPlatform:
			pf := prefabs.MovingPlatform
			d := &entity.Dynamic{
				ID:     m.ID,
				Kind:   entity.KindMovingPlatform,
				Phase:  entity.PhaseActive,
				Pos:    m.Cell(),
				Origin: m.Cell(),
				Dir:    m.Dir,
				Half:   geom.Vec2{X: pf.Width / 2, Y: pf.Height / 2},
				Travel: m.Range,
			}
			if d.Travel > 0 {
				d.Vel = m.Dir.Scale(pf.Speed)
			}
			out = append(out, d)
		case entity.MarkerThwump:
			pf := prefabs.Thwump
			out = append(out, &entity.Dynamic{
				ID:     m.ID,
				Kind:   entity.KindThwump,
				Phase:  entity.PhaseIdle,
				Pos:    m.Cell(),
				Origin: m.Cell(),
				Dir:    m.Dir,
				Half:   geom.Vec2{X: pf.Width / 2, Y: pf.Height / 2},
			})
		case entity.MarkerTurret:
			pf := prefabs.Turret
			out = append(out, &entity.Dynamic{
				ID:     m.ID,
				Kind:   entity.KindTurret,
				Phase:  entity.PhaseActive,
				Pos:    m.Cell(),
				Origin: m.Cell(),
				Dir:    m.Dir,
				Half:   geom.Vec2{X: pf.Width / 2, Y: pf.Height / 2},
				Timer:  pf.FirePeriod,
			})
		case entity.MarkerLaser:
			out = append(out, &entity.Dynamic{
				ID:     m.ID,
				Kind:   entity.KindLaser,
				Phase:  entity.PhaseActive,
				Pos:    m.Cell(),
				Origin: m.Cell(),
			})
		case entity.MarkerVanishBlock:
			pf := prefabs.VanishBlock
			out = append(out, &entity.Dynamic{
				ID:     m.ID,
				Kind:   entity.KindVanishBlock,
				Phase:  entity.PhaseIdle,
				Pos:    m.Cell(),
				Origin: m.Cell(),
				Half:   geom.Vec2{X: pf.Width / 2, Y: pf.Height / 2},
			})
		}
	}
	return out
}

// UpdatePlatforms advances moving platforms one quantum. They run before the
// player so riders integrate with this quantum's carry velocity.
func (s *MotionSystem) UpdatePlatforms(dynamics []*entity.Dynamic, h float64) {
	for _, d := range dynamics {
		if d.Kind == entity.KindMovingPlatform {
			s.stepPlatform(d, h)
		}
	}
}

// UpdateMachines advances every non-platform machine one quantum and returns
// newly fired projectiles. It runs after the player has moved: ridingID
// names the machine the player now stands on, playerRect is the settled
// position trigger zones test against. allocID hands out ids for spawned
// transients.
func (s *MotionSystem) UpdateMachines(dynamics []*entity.Dynamic, playerRect geom.Rect, ridingID int, allocID func() int, h float64) []*entity.Dynamic {
	var spawned []*entity.Dynamic
	for _, d := range dynamics {
		switch d.Kind {
		case entity.KindThwump:
			s.stepThwump(d, playerRect, h)
		case entity.KindTurret:
			spawned = append(spawned, s.stepTurret(d, allocID, h)...)
		case entity.KindLaser:
			s.stepLaser(d, h)
		case entity.KindVanishBlock:
			s.stepVanish(d, ridingID, h)
		case entity.KindProjectile:
			s.stepProjectile(d, h)
		}
	}
	return spawned
}

// stepPlatform ping-pongs between the anchor and anchor+dir*travel, snapping
// to the endpoints so the cycle length is exact.
func (s *MotionSystem) stepPlatform(d *entity.Dynamic, h float64) {
	if d.Travel <= 0 {
		return // zero range degrades to a static platform
	}
	d.Pos = d.Pos.Add(d.Vel.Scale(h))
	speed := s.prefabs.MovingPlatform.Speed
	progress := d.Pos.Sub(d.Origin).Dot(d.Dir)
	if progress >= d.Travel {
		d.Pos = d.Origin.Add(d.Dir.Scale(d.Travel))
		d.Vel = d.Dir.Scale(-speed)
	} else if progress <= 0 {
		d.Pos = d.Origin
		d.Vel = d.Dir.Scale(speed)
	}
}

func (s *MotionSystem) stepThwump(d *entity.Dynamic, playerRect geom.Rect, h float64) {
	pf := s.prefabs.Thwump
	switch d.Phase {
	case entity.PhaseIdle:
		if s.thwumpTriggerZone(d, pf).Overlaps(playerRect) {
			d.Phase = entity.PhaseTriggered
			d.Vel = d.Dir.Scale(pf.SlamSpeed)
		}
	case entity.PhaseTriggered:
		if s.slamUntilWall(d, h) {
			d.Phase = entity.PhaseActive
			d.Timer = pf.RestSeconds
			d.Vel = geom.Vec2{}
		}
	case entity.PhaseActive:
		if d.Timer > 0 {
			d.Timer -= h
			if d.Timer > 0 {
				return
			}
			d.Timer = 0
			d.Vel = d.Dir.Scale(-pf.RetractSpeed)
		}
		d.Pos = d.Pos.Add(d.Vel.Scale(h))
		if d.Pos.Sub(d.Origin).Dot(d.Dir) <= 0 {
			d.Pos = d.Origin
			d.Vel = geom.Vec2{}
			d.Phase = entity.PhaseIdle
		}
	}
}

// thwumpTriggerZone is the body rect extended along the slam direction.
func (s *MotionSystem) thwumpTriggerZone(d *entity.Dynamic, pf config.ThwumpPrefab) geom.Rect {
	r := d.Rect()
	lo, hi := r.Pos, r.Max()
	ext := d.Dir.Scale(pf.TriggerRange)
	if ext.X > 0 {
		hi.X += ext.X
	} else {
		lo.X += ext.X
	}
	if ext.Y > 0 {
		hi.Y += ext.Y
	} else {
		lo.Y += ext.Y
	}
	return geom.Rect{Pos: lo, Size: hi.Sub(lo)}
}

// slamUntilWall advances the slam and reports whether the thwump struck the
// grid and came to rest. Only cells past the leading face count; the launch
// wall behind the body never stops a slam.
func (s *MotionSystem) slamUntilWall(d *entity.Dynamic, h float64) bool {
	prev := d.Rect()
	d.Pos = d.Pos.Add(d.Vel.Scale(h))
	x0, y0, x1, y1 := s.level.CellRange(d.Rect())
	hit := false
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if !s.level.TileAt(cx, cy).Solid || !aheadOfSlam(d.Dir, prev, cx, cy) {
				continue
			}
			hit = true
			switch {
			case d.Dir.X > 0:
				if lim := float64(cx) - d.Half.X; lim < d.Pos.X {
					d.Pos.X = lim
				}
			case d.Dir.X < 0:
				if lim := float64(cx+1) + d.Half.X; lim > d.Pos.X {
					d.Pos.X = lim
				}
			case d.Dir.Y > 0:
				if lim := float64(cy) - d.Half.Y; lim < d.Pos.Y {
					d.Pos.Y = lim
				}
			case d.Dir.Y < 0:
				if lim := float64(cy+1) + d.Half.Y; lim > d.Pos.Y {
					d.Pos.Y = lim
				}
			}
		}
	}
	return hit
}

// aheadOfSlam reports whether a cell lies past the slam's leading face as it
// stood before this substep.
func aheadOfSlam(dir geom.Vec2, prev geom.Rect, cx, cy int) bool {
	const eps = 1e-9
	switch {
	case dir.X > 0:
		return float64(cx) >= prev.Max().X-eps
	case dir.X < 0:
		return float64(cx+1) <= prev.Pos.X+eps
	case dir.Y > 0:
		return float64(cy) >= prev.Max().Y-eps
	default:
		return float64(cy+1) <= prev.Pos.Y+eps
	}
}

// stepTurret fires along the facing direction on a fixed period. The timer
// accumulates across substeps, so the cadence is independent of step sizes.
func (s *MotionSystem) stepTurret(d *entity.Dynamic, allocID func() int, h float64) []*entity.Dynamic {
	pf := s.prefabs.Turret
	if pf.FirePeriod <= 0 {
		return nil // broken prefab degrades to an inert turret
	}
	proj := s.prefabs.Projectile
	d.Timer -= h
	var spawned []*entity.Dynamic
	for d.Timer <= 0 {
		d.Timer += pf.FirePeriod
		half := geom.Vec2{X: proj.Width / 2, Y: proj.Height / 2}
		muzzle := math.Abs(d.Dir.X)*(d.Half.X+half.X) + math.Abs(d.Dir.Y)*(d.Half.Y+half.Y)
		spawned = append(spawned, &entity.Dynamic{
			ID:     allocID(),
			Kind:   entity.KindProjectile,
			Phase:  entity.PhaseActive,
			Pos:    d.Pos.Add(d.Dir.Scale(muzzle + 0.01)),
			Vel:    d.Dir.Scale(proj.Speed),
			Half:   half,
			Dir:    d.Dir,
			Origin: d.Pos,
		})
	}
	return spawned
}

func (s *MotionSystem) stepLaser(d *entity.Dynamic, h float64) {
	d.Angle += s.prefabs.Laser.AngularSpeed * h
	for d.Angle >= 2*math.Pi {
		d.Angle -= 2 * math.Pi
	}
	for d.Angle < 0 {
		d.Angle += 2 * math.Pi
	}
}

// stepVanish starts the crumble when the player stands on the block and
// destroys it once the timer runs out. Destroyed blocks never come back.
func (s *MotionSystem) stepVanish(d *entity.Dynamic, ridingID int, h float64) {
	switch d.Phase {
	case entity.PhaseIdle:
		if d.ID == ridingID {
			d.Phase = entity.PhaseTriggered
			d.Timer = s.prefabs.VanishBlock.CrumbleSeconds
		}
	case entity.PhaseTriggered:
		d.Timer -= h
		if d.Timer <= 0 {
			d.Timer = 0
			d.Phase = entity.PhaseDestroyed
		}
	}
}

func (s *MotionSystem) stepProjectile(d *entity.Dynamic, h float64) {
	if d.Phase == entity.PhaseDestroyed {
		return
	}
	step := d.Vel.Scale(h)
	d.Pos = d.Pos.Add(step)
	d.Dist += step.Len()
	if d.Dist >= s.prefabs.Projectile.MaxRange {
		d.Phase = entity.PhaseDestroyed
		return
	}
	cx := int(math.Floor(d.Pos.X))
	cy := int(math.Floor(d.Pos.Y))
	if s.level.TileAt(cx, cy).Solid {
		d.Phase = entity.PhaseDestroyed
	}
}

// LaserBeam returns the world-space beam segment of a laser, cut short where
// it strikes solid terrain.
func (s *MotionSystem) LaserBeam(d *entity.Dynamic) (geom.Vec2, geom.Vec2) {
	dir := geom.Vec2{X: math.Cos(d.Angle), Y: math.Sin(d.Angle)}
	length := s.prefabs.Laser.BeamLength
	if dist, hit := geom.RaycastGrid(d.Pos, dir, length, func(cx, cy int) bool {
		return s.level.TileAt(cx, cy).Solid
	}); hit {
		length = dist
	}
	return d.Pos, d.Pos.Add(dir.Scale(length))
}
