package config

// Prefabs holds the dynamic-entity parameter sets loaded from
// entities.yaml. Sizes are full extents in tiles; the loader halves them
// when building bodies.
type Prefabs struct {
	MovingPlatform PlatformPrefab   `yaml:"moving_platform"`
	Thwump         ThwumpPrefab     `yaml:"thwump"`
	Turret         TurretPrefab     `yaml:"turret"`
	Projectile     ProjectilePrefab `yaml:"projectile"`
	Laser          LaserPrefab      `yaml:"laser"`
	VanishBlock    VanishPrefab     `yaml:"vanish_block"`
}

// PlatformPrefab tunes ping-pong moving platforms.
type PlatformPrefab struct {
	Speed  float64 `yaml:"speed"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ThwumpPrefab tunes the slam machine.
type ThwumpPrefab struct {
	SlamSpeed    float64 `yaml:"slam_speed"`
	RetractSpeed float64 `yaml:"retract_speed"`
	RestSeconds  float64 `yaml:"rest_seconds"`
	TriggerRange float64 `yaml:"trigger_range"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
}

// TurretPrefab tunes projectile emitters.
type TurretPrefab struct {
	FirePeriod float64 `yaml:"fire_period"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
}

// ProjectilePrefab tunes turret shots.
type ProjectilePrefab struct {
	Speed    float64 `yaml:"speed"`
	MaxRange float64 `yaml:"max_range"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
}

// LaserPrefab tunes rotating beam emitters.
type LaserPrefab struct {
	AngularSpeed float64 `yaml:"angular_speed"`
	BeamLength   float64 `yaml:"beam_length"`
}

// VanishPrefab tunes crumbling blocks.
type VanishPrefab struct {
	CrumbleSeconds float64 `yaml:"crumble_seconds"`
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
}
