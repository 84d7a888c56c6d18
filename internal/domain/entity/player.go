package entity

import "github.com/hollowcast/caldera/internal/domain/geom"

// Player is the simulated character body. Position is the center of the
// collision box, in tile units. The physics step is the only writer.
type Player struct {
	Pos         geom.Vec2
	Vel         geom.Vec2
	Half        geom.Vec2 // current collision half extents
	FacingRight bool

	// Contact state, refreshed every substep.
	OnGround    bool
	OnCeiling   bool
	OnWallLeft  bool
	OnWallRight bool
	WasOnGround bool
	InWater     bool
	Submerged   bool
	Squeezing   bool // small-form contraction while in a narrow gap

	Dead bool

	// Countdown timers, in seconds.
	CoyoteTimer    float64 // jump allowed while > 0 after leaving ground
	WallLeftTimer  float64 // wall jump allowed while > 0 after left contact
	WallRightTimer float64
	DashTimer      float64 // dash active while > 0
	DashCooldown   float64
	IframeTimer    float64 // damage ignored while > 0
	DropTimer      float64 // one-way platforms pass-through while > 0
	DrownTimer     float64 // next drown tick when it reaches 0
	Air            float64 // breath remaining while submerged

	AirJumpUsed bool
	DashCharge  bool // one dash per airtime, recharged on landing

	// Entity id of the platform currently stood on, 0 when none.
	RidingPlatform int
}

// NewPlayer places a body at the given center with the given half extents.
func NewPlayer(pos geom.Vec2, half geom.Vec2) *Player {
	return &Player{
		Pos:         pos,
		Half:        half,
		FacingRight: true,
		DashCharge:  true,
	}
}

// Rect returns the player's current collision box.
func (p *Player) Rect() geom.Rect {
	return geom.RectAround(p.Pos, p.Half)
}

// IsInvincible reports whether damage is currently ignored.
func (p *Player) IsInvincible() bool {
	return p.IframeTimer > 0
}

// CanCoyoteJump reports whether a ground jump is still allowed.
func (p *Player) CanCoyoteJump() bool {
	return p.OnGround || p.CoyoteTimer > 0
}

// WallContact returns the wall-jump push direction (+1 pushes right, -1
// pushes left) and whether a wall jump is currently allowed.
func (p *Player) WallContact() (float64, bool) {
	switch {
	case p.OnWallLeft || p.WallLeftTimer > 0:
		return 1, true
	case p.OnWallRight || p.WallRightTimer > 0:
		return -1, true
	default:
		return 0, false
	}
}

// TickTimers advances every countdown by dt.
func (p *Player) TickTimers(dt float64) {
	p.CoyoteTimer = tickDown(p.CoyoteTimer, dt)
	p.WallLeftTimer = tickDown(p.WallLeftTimer, dt)
	p.WallRightTimer = tickDown(p.WallRightTimer, dt)
	p.DashTimer = tickDown(p.DashTimer, dt)
	p.DashCooldown = tickDown(p.DashCooldown, dt)
	p.IframeTimer = tickDown(p.IframeTimer, dt)
	p.DropTimer = tickDown(p.DropTimer, dt)
}

func tickDown(t, dt float64) float64 {
	t -= dt
	if t < 0 {
		return 0
	}
	return t
}
