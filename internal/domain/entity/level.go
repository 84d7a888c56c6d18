package entity

import (
	"fmt"

	"github.com/hollowcast/caldera/internal/domain/geom"
)

// TilePixels is the edge length of one grid cell in source pixels. Map and
// tileset data are authored at this scale; the simulation itself works in
// tile units.
const TilePixels = 32

// TileKind classifies a grid cell.
type TileKind int

const (
	TileEmpty TileKind = iota
	TileSolid
	TileSpike
	TileWater
	TileLava
	TileCoinWall
	TileNarrowGap
	TileOneWay
	TileMarker
)

// String returns the semantic name of the tile kind.
func (k TileKind) String() string {
	switch k {
	case TileEmpty:
		return "empty"
	case TileSolid:
		return "solid"
	case TileSpike:
		return "spike"
	case TileWater:
		return "water"
	case TileLava:
		return "lava"
	case TileCoinWall:
		return "coin_wall"
	case TileNarrowGap:
		return "narrow_gap"
	case TileOneWay:
		return "platform"
	case TileMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Tile is one immutable grid cell. Solid is the base solidity class;
// conditionally solid kinds (coin_wall, narrow_gap, platform) are resolved
// by the physics step against world state.
type Tile struct {
	Kind   TileKind
	Solid  bool
	Count  int          // coin_wall open threshold
	Hazard geom.Polygon // tile-local damage outline, nil when none
}

// MarkerKind classifies a semantic event location.
type MarkerKind int

const (
	MarkerSpawn MarkerKind = iota
	MarkerCoin
	MarkerRareCoin
	MarkerPowerup
	MarkerHpUp
	MarkerSavePoint
	MarkerMovingPlatform
	MarkerThwump
	MarkerTurret
	MarkerLaser
	MarkerVanishBlock
)

// Marker is a non-solid map entry encoding an event location: pickups,
// spawn, machine anchors. IDs are assigned in row-major grid order at load
// time and are stable across loads of the same map.
type Marker struct {
	ID    int
	Kind  MarkerKind
	CellX int
	CellY int

	Powerup string    // MarkerPowerup: ability granted
	Dir     geom.Vec2 // machine facing / travel direction
	Range   float64   // moving platform travel distance in tiles
}

// Cell returns the marker's grid cell center in tile units.
func (m Marker) Cell() geom.Vec2 {
	return geom.Vec2{X: float64(m.CellX) + 0.5, Y: float64(m.CellY) + 0.5}
}

// Level is the immutable world geometry: a typed tile grid plus markers.
// Nothing mutates a Level after load.
type Level struct {
	Width   int
	Height  int
	Tiles   []Tile // row-major, index y*Width+x
	Markers []Marker
	Spawn   Marker
}

var solidEdge = Tile{Kind: TileSolid, Solid: true}

// TileAt returns the tile at a cell. Out-of-bounds cells read as solid so
// bodies cannot leave the level.
func (l *Level) TileAt(cx, cy int) Tile {
	if cx < 0 || cy < 0 || cx >= l.Width || cy >= l.Height {
		return solidEdge
	}
	return l.Tiles[cy*l.Width+cx]
}

// KindAt returns the tile kind at a cell.
func (l *Level) KindAt(cx, cy int) TileKind {
	return l.TileAt(cx, cy).Kind
}

// MarkersOf returns all markers of one kind in load order.
func (l *Level) MarkersOf(kind MarkerKind) []Marker {
	var out []Marker
	for _, m := range l.Markers {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// OverlapsKind reports whether any cell covered by r has the given kind.
func (l *Level) OverlapsKind(r geom.Rect, kind TileKind) bool {
	x0, y0, x1, y1 := cellRange(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			if l.KindAt(cx, cy) == kind {
				return true
			}
		}
	}
	return false
}

// CellRange returns the inclusive cell bounds covered by a tile-unit rect.
func (l *Level) CellRange(r geom.Rect) (x0, y0, x1, y1 int) {
	return cellRange(r)
}

// cellRange returns the inclusive cell bounds covered by a tile-unit rect.
func cellRange(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = floorInt(r.Pos.X)
	y0 = floorInt(r.Pos.Y)
	x1 = floorInt(r.Max().X - 1e-9)
	y1 = floorInt(r.Max().Y - 1e-9)
	return
}

func floorInt(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}

// MalformedMapError reports an unloadable map: unknown tile references, a
// missing spawn marker, or undecodable payloads.
type MalformedMapError struct {
	Reason string
	Err    error
}

func (e *MalformedMapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed map: %s: %v", e.Reason, e.Err)
	}
	return "malformed map: " + e.Reason
}

func (e *MalformedMapError) Unwrap() error { return e.Err }
