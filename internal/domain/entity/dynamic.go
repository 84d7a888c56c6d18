package entity

import "github.com/hollowcast/caldera/internal/domain/geom"

// DynamicKind tags the variant of a Dynamic entity.
type DynamicKind int

const (
	KindMovingPlatform DynamicKind = iota
	KindThwump
	KindTurret
	KindLaser
	KindVanishBlock
	KindProjectile
)

// String returns the sprite-facing name of the kind.
func (k DynamicKind) String() string {
	switch k {
	case KindMovingPlatform:
		return "moving_platform"
	case KindThwump:
		return "thwump"
	case KindTurret:
		return "turret"
	case KindLaser:
		return "laser"
	case KindVanishBlock:
		return "vanish_block"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// Phase is a dynamic entity's lifecycle state. Not every kind uses every
// phase; thwumps read Triggered as "slamming" and Active as "rest/retract",
// vanish blocks read Triggered as "crumbling".
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseTriggered
	PhaseDestroyed
)

// Dynamic is any non-player world object with its own motion or trigger
// program: moving platforms, thwumps, turrets, rotating lasers, vanish
// blocks, projectiles. One struct covers every kind — the per-kind stepper
// is a single exhaustive switch, not a method set.
type Dynamic struct {
	ID    int
	Kind  DynamicKind
	Phase Phase

	Pos  geom.Vec2 // center, tile units
	Vel  geom.Vec2
	Half geom.Vec2

	Origin geom.Vec2 // anchor the program returns to
	Dir    geom.Vec2 // facing / travel direction
	Travel float64   // platform one-way travel distance, tiles
	Angle  float64   // laser beam angle, radians
	Timer  float64   // kind-specific countdown
	Dist   float64   // projectile distance flown
}

// Rect returns the entity's collision box.
func (d *Dynamic) Rect() geom.Rect {
	return geom.RectAround(d.Pos, d.Half)
}

// BlocksPlayer reports whether the entity is solid to movement in its
// current phase.
func (d *Dynamic) BlocksPlayer() bool {
	switch d.Kind {
	case KindMovingPlatform, KindThwump:
		return d.Phase != PhaseDestroyed
	case KindVanishBlock:
		return d.Phase == PhaseIdle || d.Phase == PhaseTriggered
	default:
		return false
	}
}

// Slamming reports whether a thwump is in its lethal slam phase.
func (d *Dynamic) Slamming() bool {
	return d.Kind == KindThwump && d.Phase == PhaseTriggered
}
