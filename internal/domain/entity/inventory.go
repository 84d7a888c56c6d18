package entity

import "sort"

// Ability names, matching the powerup ids used in map data.
const (
	AbilityWallJump   = "wall_jump"
	AbilityDash       = "dash"
	AbilityWater      = "water"
	AbilitySmall      = "small"
	AbilityLava       = "lava"
	AbilityDoubleJump = "double_jump"
)

// Inventory is the player's persistent progress: HP pool, currencies, and
// unlocked abilities. It is mutated only by pickup/hazard events inside the
// simulation step; abilities grow monotonically until an explicit reset.
type Inventory struct {
	HP        int
	BaseMaxHP int

	Coins     map[int]struct{}
	RareCoins map[int]struct{}
	HpUps     map[int]struct{}
	PowerUps  map[string]struct{}
}

// NewInventory creates a fresh inventory at full base health.
func NewInventory(baseMaxHP int) *Inventory {
	if baseMaxHP < 1 {
		baseMaxHP = 1
	}
	return &Inventory{
		HP:        baseMaxHP,
		BaseMaxHP: baseMaxHP,
		Coins:     make(map[int]struct{}),
		RareCoins: make(map[int]struct{}),
		HpUps:     make(map[int]struct{}),
		PowerUps:  make(map[string]struct{}),
	}
}

// MaxHP is the base pool plus one per collected hp_up.
func (inv *Inventory) MaxHP() int {
	return inv.BaseMaxHP + len(inv.HpUps)
}

// Has reports whether an ability is unlocked.
func (inv *Inventory) Has(ability string) bool {
	_, ok := inv.PowerUps[ability]
	return ok
}

// Grant unlocks an ability. Granting twice is a no-op.
func (inv *Inventory) Grant(ability string) {
	inv.PowerUps[ability] = struct{}{}
}

// CollectCoin records a coin marker as consumed. Returns false when the
// coin was already collected.
func (inv *Inventory) CollectCoin(id int) bool {
	if _, ok := inv.Coins[id]; ok {
		return false
	}
	inv.Coins[id] = struct{}{}
	return true
}

// CollectRareCoin records a rare-coin marker as consumed.
func (inv *Inventory) CollectRareCoin(id int) bool {
	if _, ok := inv.RareCoins[id]; ok {
		return false
	}
	inv.RareCoins[id] = struct{}{}
	return true
}

// CollectHpUp consumes an hp_up marker, raising max and current HP by one.
func (inv *Inventory) CollectHpUp(id int) bool {
	if _, ok := inv.HpUps[id]; ok {
		return false
	}
	inv.HpUps[id] = struct{}{}
	inv.HP++
	return true
}

// Damage lowers HP, clamped at zero.
func (inv *Inventory) Damage(n int) {
	inv.HP -= n
	if inv.HP < 0 {
		inv.HP = 0
	}
}

// HealFull restores HP to the maximum.
func (inv *Inventory) HealFull() {
	inv.HP = inv.MaxHP()
}

// CoinCount returns the number of collected coins.
func (inv *Inventory) CoinCount() int { return len(inv.Coins) }

// RareCoinCount returns the number of collected rare coins.
func (inv *Inventory) RareCoinCount() int { return len(inv.RareCoins) }

// AbilityList returns the unlocked abilities sorted by name.
func (inv *Inventory) AbilityList() []string {
	out := make([]string, 0, len(inv.PowerUps))
	for a := range inv.PowerUps {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
