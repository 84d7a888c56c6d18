package system

import (
	"math"

	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/config"
)

// PhysicsSystem integrates the player over one fixed quantum: acceleration,
// gravity, jump and dash impulses, then axis-separated collision against the
// tile grid and the blocking machines.
type PhysicsSystem struct {
	tuning *config.Tuning
	level  *entity.Level
}

// NewPhysicsSystem creates a physics system. The tuning pointer is shared so
// a live tuning reload reaches the running simulation.
func NewPhysicsSystem(tuning *config.Tuning, level *entity.Level) *PhysicsSystem {
	return &PhysicsSystem{tuning: tuning, level: level}
}

// Update advances the player by the quantum h.
func (s *PhysicsSystem) Update(p *entity.Player, inv *entity.Inventory, intent Intent, dynamics []*entity.Dynamic, h float64) {
	p.WasOnGround = p.OnGround
	p.TickTimers(h)

	s.updateWaterState(p)
	s.updateSize(p, inv, intent)
	s.applyMovement(p, inv, intent, h)
	s.applyGravity(p, inv, intent, h)
	s.applyActions(p, inv, intent)

	carry := s.carryVelocity(p, dynamics)
	s.integrate(p, inv, dynamics, carry, h)
}

// NormalHalf returns the player's full-size collision half extents.
func (s *PhysicsSystem) NormalHalf() geom.Vec2 {
	return geom.Vec2{X: s.tuning.Player.Width / 2, Y: s.tuning.Player.Height / 2}
}

func (s *PhysicsSystem) smallHalf() geom.Vec2 {
	return geom.Vec2{X: s.tuning.Player.SmallWidth / 2, Y: s.tuning.Player.SmallHeight / 2}
}

func (s *PhysicsSystem) updateWaterState(p *entity.Player) {
	p.InWater = s.level.OverlapsKind(p.Rect(), entity.TileWater)
	headX := int(math.Floor(p.Pos.X))
	headY := int(math.Floor(p.Pos.Y - p.Half.Y*0.5))
	p.Submerged = s.level.KindAt(headX, headY) == entity.TileWater
}

// updateSize shrinks the player while the small form is held and grows back
// only where the full box fits again.
func (s *PhysicsSystem) updateSize(p *entity.Player, inv *entity.Inventory, intent Intent) {
	normal := s.NormalHalf()
	small := s.smallHalf()

	if inv.Has(entity.AbilitySmall) && intent.Down {
		if !p.Squeezing {
			// shrink toward the feet so the floor contact is kept
			p.Pos.Y += normal.Y - small.Y
			p.Half = small
			p.Squeezing = true
		}
		return
	}
	if !p.Squeezing {
		return
	}
	grown := geom.Vec2{X: p.Pos.X, Y: p.Pos.Y - (normal.Y - p.Half.Y)}
	if s.solidRect(geom.RectAround(grown, normal), inv) {
		return // still inside a gap, stay small until there is headroom
	}
	p.Pos = grown
	p.Half = normal
	p.Squeezing = false
}

func (s *PhysicsSystem) applyMovement(p *entity.Player, inv *entity.Inventory, intent Intent, h float64) {
	if p.DashTimer > 0 {
		return // dash locks horizontal velocity
	}
	mv := s.tuning.Movement
	maxSpeed := mv.MaxSpeed
	accel := mv.AirAccel
	decay := mv.AirDecayRate
	if p.OnGround {
		accel = mv.GroundAccel
		decay = mv.GroundDecayRate
	}
	if p.InWater {
		maxSpeed = s.tuning.Water.MaxSpeed
		if !inv.Has(entity.AbilityWater) {
			accel *= s.tuning.Water.AccelFactor
		}
	}

	if intent.MoveX != 0 {
		p.Vel.X += intent.MoveX * accel * h
		p.FacingRight = intent.MoveX > 0
	} else {
		p.Vel.X *= math.Pow(0.5, decay*h)
	}
	if p.Vel.X > maxSpeed {
		p.Vel.X = maxSpeed
	}
	if p.Vel.X < -maxSpeed {
		p.Vel.X = -maxSpeed
	}
}

func (s *PhysicsSystem) applyGravity(p *entity.Player, inv *entity.Inventory, intent Intent, h float64) {
	if p.DashTimer > 0 {
		p.Vel.Y = 0
		return
	}
	gravity := s.tuning.Physics.Gravity
	terminal := s.tuning.Physics.TerminalVelocity
	buoyant := p.InWater && inv.Has(entity.AbilityWater)
	if buoyant {
		gravity = s.tuning.Water.Gravity
		terminal = s.tuning.Water.TerminalVelocity
	}

	p.Vel.Y += gravity * h
	if buoyant {
		p.Vel.Y *= math.Pow(0.5, s.tuning.Water.VerticalDragRate*h)
	}
	// releasing jump mid-rise bleeds off the remaining impulse
	if p.Vel.Y < 0 && !intent.Jump {
		p.Vel.Y *= math.Pow(s.tuning.Jump.CutFactor, h)
	}
	if p.Vel.Y > terminal {
		p.Vel.Y = terminal
	}
}

func (s *PhysicsSystem) applyActions(p *entity.Player, inv *entity.Inventory, intent Intent) {
	if intent.JumpPressed {
		s.tryJump(p, inv)
	}
	if intent.DashPressed {
		s.tryDash(p, inv)
	}
	if intent.Down && p.OnGround && s.standingOnOneWay(p) {
		p.DropTimer = s.tuning.Movement.DropThroughTime
	}
}

func (s *PhysicsSystem) tryJump(p *entity.Player, inv *entity.Inventory) {
	impulse := -(s.tuning.Jump.Impulse + s.tuning.Jump.VelocityBonus*math.Abs(p.Vel.X))
	if p.InWater {
		impulse *= s.tuning.Water.JumpFactor
	}
	switch {
	case p.CanCoyoteJump():
		p.Vel.Y = impulse
		p.OnGround = false
		p.CoyoteTimer = 0
	case s.tryWallJump(p, inv, impulse):
	case inv.Has(entity.AbilityDoubleJump) && !p.AirJumpUsed:
		p.Vel.Y = impulse
		p.AirJumpUsed = true
	}
}

// tryWallJump kicks the player up and away from a touched wall. Reports
// whether a wall jump happened.
func (s *PhysicsSystem) tryWallJump(p *entity.Player, inv *entity.Inventory, impulse float64) bool {
	if !inv.Has(entity.AbilityWallJump) {
		return false
	}
	dir, ok := p.WallContact()
	if !ok {
		return false
	}
	p.Vel.Y = impulse
	p.Vel.X = dir * s.tuning.Movement.MaxSpeed
	p.FacingRight = dir > 0
	p.WallLeftTimer = 0
	p.WallRightTimer = 0
	return true
}

func (s *PhysicsSystem) tryDash(p *entity.Player, inv *entity.Inventory) {
	if !inv.Has(entity.AbilityDash) {
		return
	}
	if p.DashTimer > 0 || p.DashCooldown > 0 || !p.DashCharge {
		return
	}
	dir := 1.0
	if !p.FacingRight {
		dir = -1
	}
	p.Vel.X = dir * s.tuning.Dash.Speed
	p.Vel.Y = 0
	p.DashTimer = s.tuning.Dash.Duration
	p.DashCooldown = s.tuning.Dash.Cooldown
	p.DashCharge = false
}

func (s *PhysicsSystem) standingOnOneWay(p *entity.Player) bool {
	bottom := p.Pos.Y + p.Half.Y
	probe := geom.Rect{
		Pos:  geom.Vec2{X: p.Pos.X - p.Half.X, Y: bottom},
		Size: geom.Vec2{X: p.Half.X * 2, Y: 0.1},
	}
	return s.level.OverlapsKind(probe, entity.TileOneWay)
}

// carryVelocity returns the velocity of the machine the player stood on last
// substep, so riders move with their platform instead of trailing it.
func (s *PhysicsSystem) carryVelocity(p *entity.Player, dynamics []*entity.Dynamic) geom.Vec2 {
	if p.RidingPlatform == 0 {
		return geom.Vec2{}
	}
	for _, d := range dynamics {
		if d.ID == p.RidingPlatform && d.BlocksPlayer() {
			return d.Vel
		}
	}
	return geom.Vec2{}
}

func (s *PhysicsSystem) integrate(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic, carry geom.Vec2, h float64) {
	p.OnGround = false
	p.OnCeiling = false
	p.OnWallLeft = false
	p.OnWallRight = false
	p.RidingPlatform = 0

	total := p.Vel.Add(carry)
	s.moveX(p, inv, dynamics, total.X*h)
	s.moveY(p, inv, dynamics, total.Y*h)
	s.resolveOverlap(p, inv, dynamics)
}

// moveX advances horizontally and snaps back to the nearest blocking face.
func (s *PhysicsSystem) moveX(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic, dx float64) {
	if dx == 0 {
		return
	}
	p.Pos.X += dx
	r := p.Rect()

	limit := math.Inf(1)
	if dx < 0 {
		limit = math.Inf(-1)
	}
	hit := false

	x0, y0, x1, y1 := s.level.CellRange(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if !s.solidAt(cx, cy, inv) {
				continue
			}
			hit = true
			if dx > 0 {
				limit = math.Min(limit, float64(cx))
			} else {
				limit = math.Max(limit, float64(cx+1))
			}
		}
	}
	for _, d := range dynamics {
		if !d.BlocksPlayer() || !r.Overlaps(d.Rect()) {
			continue
		}
		hit = true
		if dx > 0 {
			limit = math.Min(limit, d.Rect().Pos.X)
		} else {
			limit = math.Max(limit, d.Rect().Max().X)
		}
	}
	if !hit {
		return
	}

	if dx > 0 {
		p.Pos.X = limit - p.Half.X
		p.OnWallRight = true
		p.WallRightTimer = s.tuning.Jump.WallGrace
	} else {
		p.Pos.X = limit + p.Half.X
		p.OnWallLeft = true
		p.WallLeftTimer = s.tuning.Jump.WallGrace
	}
	p.Vel.X = 0
}

// moveY advances vertically. Falling collides with solids, blocking machines
// and, unless dropping through, one-way platforms crossed from above. Rising
// only collides with solids and machines.
func (s *PhysicsSystem) moveY(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic, dy float64) {
	if dy == 0 {
		return
	}
	prevBottom := p.Pos.Y + p.Half.Y
	prevTop := p.Pos.Y - p.Half.Y
	p.Pos.Y += dy
	r := p.Rect()
	x0, y0, x1, y1 := s.level.CellRange(r)

	if dy > 0 {
		limit := math.Inf(1)
		rideID := 0
		hit := false
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				top := float64(cy)
				if prevBottom > top+1e-9 {
					continue // side overlap, not a crossed floor; the push-out pass owns it
				}
				blocking := s.solidAt(cx, cy, inv)
				if !blocking && s.level.KindAt(cx, cy) == entity.TileOneWay {
					blocking = p.DropTimer <= 0
				}
				if blocking {
					hit = true
					limit = math.Min(limit, top)
				}
			}
		}
		for _, d := range dynamics {
			if !d.BlocksPlayer() || !r.Overlaps(d.Rect()) {
				continue
			}
			top := d.Rect().Pos.Y
			if prevBottom > top+1e-9 {
				continue // entered from the side, let the push-out pass handle it
			}
			hit = true
			if top <= limit {
				limit = top
				rideID = d.ID
			}
		}
		if !hit {
			return
		}
		p.Pos.Y = limit - p.Half.Y
		p.Vel.Y = 0
		p.RidingPlatform = rideID
		s.land(p)
		return
	}

	limit := math.Inf(-1)
	hit := false
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			bottom := float64(cy + 1)
			if prevTop < bottom-1e-9 {
				continue // side overlap, not a crossed ceiling
			}
			if !s.solidAt(cx, cy, inv) {
				continue
			}
			hit = true
			limit = math.Max(limit, bottom)
		}
	}
	for _, d := range dynamics {
		if !d.BlocksPlayer() || !r.Overlaps(d.Rect()) {
			continue
		}
		bottom := d.Rect().Max().Y
		if prevTop < bottom-1e-9 {
			continue
		}
		hit = true
		limit = math.Max(limit, bottom)
	}
	if !hit {
		return
	}
	p.Pos.Y = limit + p.Half.Y
	p.Vel.Y = 0
	p.OnCeiling = true
}

// land refreshes the ground-dependent resources on touchdown.
func (s *PhysicsSystem) land(p *entity.Player) {
	p.OnGround = true
	p.CoyoteTimer = s.tuning.Jump.CoyoteTime
	p.AirJumpUsed = false
	p.DashCharge = true
}

// resolveOverlap pushes the player out of machines that moved into them this
// substep, then corrects against the grid once. A machine squeezing the
// player into a wall may leave a residual overlap for one substep.
func (s *PhysicsSystem) resolveOverlap(p *entity.Player, inv *entity.Inventory, dynamics []*entity.Dynamic) {
	for _, d := range dynamics {
		if !d.BlocksPlayer() {
			continue
		}
		push := geom.SmallestPush(p.Rect(), d.Rect())
		if push == (geom.Vec2{}) {
			continue
		}
		p.Pos = p.Pos.Add(push)
		if push.Y < 0 {
			p.RidingPlatform = d.ID
			p.Vel.Y = 0
			s.land(p)
		}
	}
	r := p.Rect()
	x0, y0, x1, y1 := s.level.CellRange(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if !s.solidAt(cx, cy, inv) {
				continue
			}
			cell := geom.Rect{Pos: geom.Vec2{X: float64(cx), Y: float64(cy)}, Size: geom.Vec2{X: 1, Y: 1}}
			p.Pos = p.Pos.Add(geom.SmallestPush(p.Rect(), cell))
		}
	}
}

// solidAt resolves conditional solidity: coin walls open once enough coins
// are banked, everything else follows the tile's base class.
func (s *PhysicsSystem) solidAt(cx, cy int, inv *entity.Inventory) bool {
	t := s.level.TileAt(cx, cy)
	if !t.Solid {
		return false
	}
	if t.Kind == entity.TileCoinWall && inv.CoinCount() >= t.Count {
		return false
	}
	return true
}

func (s *PhysicsSystem) solidRect(r geom.Rect, inv *entity.Inventory) bool {
	x0, y0, x1, y1 := s.level.CellRange(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if s.solidAt(cx, cy, inv) {
				return true
			}
		}
	}
	return false
}
