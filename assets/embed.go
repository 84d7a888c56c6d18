// Package assets embeds the shipped game data: simulation tuning, entity
// prefabs, and the bundled map.
package assets

import "embed"

//go:embed tuning.json entities.yaml cavern.tmx world.tsx
var FS embed.FS

// DefaultMap is the map the game boots into.
const DefaultMap = "cavern.tmx"
