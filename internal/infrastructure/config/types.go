package config

// Tuning is the full simulation tuning loaded from tuning.json. Speeds and
// accelerations are in tile units per second; times are in seconds.
type Tuning struct {
	Display  DisplayConfig  `json:"display"`
	Physics  PhysicsConfig  `json:"physics"`
	Movement MovementConfig `json:"movement"`
	Jump     JumpConfig     `json:"jump"`
	Dash     DashConfig     `json:"dash"`
	Water    WaterConfig    `json:"water"`
	Combat   CombatConfig   `json:"combat"`
	Player   PlayerConfig   `json:"player"`
	Input    InputConfig    `json:"input"`
}

// DisplayConfig sizes the host window. The engine never reads it.
type DisplayConfig struct {
	ScreenWidth  int `json:"screenWidth"`
	ScreenHeight int `json:"screenHeight"`
	Scale        int `json:"scale"`
	Framerate    int `json:"framerate"`
}

// PhysicsConfig sets the integration scheme and global forces.
type PhysicsConfig struct {
	QuantumHz        int     `json:"quantumHz"`
	MaxStepSeconds   float64 `json:"maxStepSeconds"`
	Gravity          float64 `json:"gravity"`
	TerminalVelocity float64 `json:"terminalVelocity"`
}

// Quantum returns the fixed substep length in seconds.
func (p PhysicsConfig) Quantum() float64 {
	return 1 / float64(p.QuantumHz)
}

// MovementConfig tunes horizontal movement.
type MovementConfig struct {
	MaxSpeed        float64 `json:"maxSpeed"`
	GroundAccel     float64 `json:"groundAccel"`
	AirAccel        float64 `json:"airAccel"`
	GroundDecayRate float64 `json:"groundDecayRate"`
	AirDecayRate    float64 `json:"airDecayRate"`
	DropThroughTime float64 `json:"dropThroughTime"`
}

// JumpConfig tunes jumping and the grace windows around it.
type JumpConfig struct {
	Impulse       float64 `json:"impulse"`
	VelocityBonus float64 `json:"velocityBonus"`
	CoyoteTime    float64 `json:"coyoteTime"`
	CutFactor     float64 `json:"cutFactor"`
	WallGrace     float64 `json:"wallGrace"`
}

// DashConfig tunes the dash burst.
type DashConfig struct {
	Speed    float64 `json:"speed"`
	Duration float64 `json:"duration"`
	Cooldown float64 `json:"cooldown"`
}

// WaterConfig tunes both water modes: the buoyant mode used once the water
// ability is unlocked, and the slow mode used before it.
type WaterConfig struct {
	MaxSpeed         float64 `json:"maxSpeed"`
	Gravity          float64 `json:"gravity"`
	TerminalVelocity float64 `json:"terminalVelocity"`
	AccelFactor      float64 `json:"accelFactor"`
	JumpFactor       float64 `json:"jumpFactor"`
	VerticalDragRate float64 `json:"verticalDragRate"`
	AirSeconds       float64 `json:"airSeconds"`
	AirSecondsFinned float64 `json:"airSecondsFinned"`
	DrownPeriod      float64 `json:"drownPeriod"`
}

// CombatConfig tunes damage handling. HazardDamage is the single damage
// constant shared by lava, spikes, projectiles, and laser beams.
type CombatConfig struct {
	HazardDamage int     `json:"hazardDamage"`
	KnockbackX   float64 `json:"knockbackX"`
	KnockbackY   float64 `json:"knockbackY"`
	Iframes      float64 `json:"iframes"`
	BaseMaxHP    int     `json:"baseMaxHP"`
}

// PlayerConfig sets the collision box, in tiles.
type PlayerConfig struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	SmallWidth  float64 `json:"smallWidth"`
	SmallHeight float64 `json:"smallHeight"`
}

// InputConfig maps logical actions ("left", "right", "down", "jump",
// "dash") to key names. Key names follow browser KeyboardEvent.key
// conventions ("ArrowLeft", "z", "Shift").
type InputConfig struct {
	Bindings map[string][]string `json:"bindings"`
}
