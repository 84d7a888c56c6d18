// Package save encodes and decodes the persistent progress snapshot. The
// payload is a small versioned JSON envelope: forward-readable (unknown
// fields are ignored), newer versions are rejected rather than
// misinterpreted.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Version is the current envelope version.
const Version = 1

// ErrCorruptSave marks a payload that cannot be restored. Callers discard
// the blob and start fresh.
var ErrCorruptSave = errors.New("corrupt save data")

// Data is the persisted subset of world state. Marker id sets are stored as
// sorted slices so the same progress always encodes to the same bytes.
type Data struct {
	Version   int      `json:"version"`
	PlayerX   float64  `json:"player_x"`
	PlayerY   float64  `json:"player_y"`
	HP        int      `json:"hp"`
	Coins     []int    `json:"coins,omitempty"`
	RareCoins []int    `json:"rare_coins,omitempty"`
	HpUps     []int    `json:"hp_ups,omitempty"`
	PowerUps  []string `json:"power_ups,omitempty"`
	Vanished  []int    `json:"vanished,omitempty"`
	AnchorID  int      `json:"anchor_id,omitempty"`
}

// Encode serializes a snapshot. Slice order is normalized in place, so two
// snapshots of the same progress are byte-identical.
func Encode(d Data) string {
	d.Version = Version
	sort.Ints(d.Coins)
	sort.Ints(d.RareCoins)
	sort.Ints(d.HpUps)
	sort.Strings(d.PowerUps)
	sort.Ints(d.Vanished)
	b, _ := json.Marshal(d)
	return string(b)
}

// Decode parses a snapshot, failing with ErrCorruptSave on unparseable
// payloads, missing or unsupported versions, and impossible field values.
func Decode(raw string) (Data, error) {
	var d Data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Data{}, corrupt("unparseable payload: %v", err)
	}
	if d.Version == 0 {
		return Data{}, corrupt("missing version")
	}
	if d.Version > Version {
		return Data{}, corrupt("unsupported version %d", d.Version)
	}
	if d.HP < 0 {
		return Data{}, corrupt("negative hp %d", d.HP)
	}
	return d, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSave, fmt.Sprintf(format, args...))
}
