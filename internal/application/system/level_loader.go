package system

import (
	"fmt"
	"sort"

	"github.com/hollowcast/caldera/internal/domain/entity"
	"github.com/hollowcast/caldera/internal/domain/geom"
	"github.com/hollowcast/caldera/internal/infrastructure/tiled"
)

// mainLayerName is the tile layer the loader reads; other layers are
// decoration and ignored.
const mainLayerName = "Main"

// tileKindNames maps the "kind" tileset property to terrain kinds.
var tileKindNames = map[string]entity.TileKind{
	"ground":     entity.TileSolid,
	"spike":      entity.TileSpike,
	"water":      entity.TileWater,
	"lava":       entity.TileLava,
	"coin_wall":  entity.TileCoinWall,
	"narrow_gap": entity.TileNarrowGap,
	"platform":   entity.TileOneWay,
}

// markerKindNames maps the "kind" tileset property to marker kinds.
var markerKindNames = map[string]entity.MarkerKind{
	"spawn":           entity.MarkerSpawn,
	"coin":            entity.MarkerCoin,
	"rare_coin":       entity.MarkerRareCoin,
	"powerup":         entity.MarkerPowerup,
	"hp_up":           entity.MarkerHpUp,
	"save_point":      entity.MarkerSavePoint,
	"moving_platform": entity.MarkerMovingPlatform,
	"thwump":          entity.MarkerThwump,
	"turret":          entity.MarkerTurret,
	"laser":           entity.MarkerLaser,
	"vanish_block":    entity.MarkerVanishBlock,
}

type tilesetRange struct {
	first uint32
	ts    *tiled.Tileset
}

// BuildLevel parses the named .tmx out of resources and flattens it into a
// Level. Tileset sources referenced by the map must be present in resources
// under their own names. Marker ids are assigned in row-major cell order, so
// the same map always yields the same ids.
func BuildLevel(resources map[string][]byte, mapName string) (*entity.Level, error) {
	raw, ok := resources[mapName]
	if !ok {
		return nil, &entity.MalformedMapError{Reason: fmt.Sprintf("missing map resource %q", mapName)}
	}
	m, err := tiled.ParseMap(raw)
	if err != nil {
		return nil, &entity.MalformedMapError{Reason: "unreadable map", Err: err}
	}
	layer, ok := m.LayerByName(mainLayerName)
	if !ok {
		return nil, &entity.MalformedMapError{Reason: fmt.Sprintf("map has no %q layer", mainLayerName)}
	}
	gids, err := layer.GIDs()
	if err != nil {
		return nil, &entity.MalformedMapError{Reason: "bad layer data", Err: err}
	}
	sets, err := loadTilesets(resources, m)
	if err != nil {
		return nil, err
	}

	lvl := &entity.Level{
		Width:  m.Width,
		Height: m.Height,
		Tiles:  make([]entity.Tile, len(gids)),
	}
	spawns := 0
	nextID := 1
	for i, gid := range gids {
		if gid == 0 {
			continue
		}
		cx, cy := i%m.Width, i/m.Width
		def, ok := resolveGID(sets, gid)
		if !ok {
			return nil, &entity.MalformedMapError{
				Reason: fmt.Sprintf("tile gid %d at cell (%d,%d) has no tileset entry", gid, cx, cy),
			}
		}

		kind := def.PropString("kind", "")
		if tk, isTile := tileKindNames[kind]; isTile {
			tile, err := buildTile(tk, def)
			if err != nil {
				return nil, &entity.MalformedMapError{
					Reason: fmt.Sprintf("bad tile at cell (%d,%d)", cx, cy), Err: err,
				}
			}
			lvl.Tiles[i] = tile
			continue
		}
		mk, isMarker := markerKindNames[kind]
		if !isMarker {
			return nil, &entity.MalformedMapError{
				Reason: fmt.Sprintf("unknown tile kind %q at cell (%d,%d)", kind, cx, cy),
			}
		}
		marker, err := buildMarker(nextID, mk, cx, cy, def)
		if err != nil {
			return nil, &entity.MalformedMapError{
				Reason: fmt.Sprintf("bad marker at cell (%d,%d)", cx, cy), Err: err,
			}
		}
		nextID++
		if mk == entity.MarkerSpawn {
			spawns++
			lvl.Spawn = marker
			continue
		}
		lvl.Markers = append(lvl.Markers, marker)
	}

	if spawns == 0 {
		return nil, &entity.MalformedMapError{Reason: "map has no spawn marker"}
	}
	if spawns > 1 {
		return nil, &entity.MalformedMapError{Reason: fmt.Sprintf("map has %d spawn markers, want exactly 1", spawns)}
	}
	return lvl, nil
}

// loadTilesets parses every tileset the map references, sorted by first gid
// so resolveGID can pick the owning set with a reverse scan.
func loadTilesets(resources map[string][]byte, m *tiled.Map) ([]tilesetRange, error) {
	if len(m.Tilesets) == 0 {
		return nil, &entity.MalformedMapError{Reason: "map references no tilesets"}
	}
	sets := make([]tilesetRange, 0, len(m.Tilesets))
	for _, ref := range m.Tilesets {
		raw, ok := resources[ref.Source]
		if !ok {
			return nil, &entity.MalformedMapError{Reason: fmt.Sprintf("missing tileset resource %q", ref.Source)}
		}
		ts, err := tiled.ParseTileset(raw)
		if err != nil {
			return nil, &entity.MalformedMapError{Reason: fmt.Sprintf("unreadable tileset %q", ref.Source), Err: err}
		}
		sets = append(sets, tilesetRange{first: ref.FirstGID, ts: ts})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].first < sets[j].first })
	return sets, nil
}

func resolveGID(sets []tilesetRange, gid uint32) (tiled.TileDef, bool) {
	for i := len(sets) - 1; i >= 0; i-- {
		if gid < sets[i].first {
			continue
		}
		return sets[i].ts.Def(gid - sets[i].first)
	}
	return tiled.TileDef{}, false
}

func buildTile(kind entity.TileKind, def tiled.TileDef) (entity.Tile, error) {
	tile := entity.Tile{Kind: kind}
	switch kind {
	case entity.TileSolid:
		tile.Solid = true
	case entity.TileCoinWall:
		tile.Solid = true
		tile.Count = def.PropInt("count", 0)
		if tile.Count <= 0 {
			return entity.Tile{}, fmt.Errorf("coin wall needs a positive count, got %d", tile.Count)
		}
	case entity.TileSpike:
		poly, err := hazardShape(def)
		if err != nil {
			return entity.Tile{}, err
		}
		tile.Hazard = poly
	}
	return tile, nil
}

// hazardShape extracts the tile's collision object as a tile-local polygon in
// [0,1] coordinates. Vertices outside the tile box are clamped; a tile with
// no object covers the whole cell.
func hazardShape(def tiled.TileDef) (geom.Polygon, error) {
	if len(def.Objects) == 0 {
		return geom.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, nil
	}
	obj := def.Objects[0]
	if obj.Polygon == nil {
		return geom.Polygon{
			scalePoint(obj.X, obj.Y),
			scalePoint(obj.X+obj.Width, obj.Y),
			scalePoint(obj.X+obj.Width, obj.Y+obj.Height),
			scalePoint(obj.X, obj.Y+obj.Height),
		}, nil
	}
	pts, err := obj.Polygon.ParsePoints()
	if err != nil {
		return nil, err
	}
	poly := make(geom.Polygon, len(pts))
	for i, pt := range pts {
		poly[i] = scalePoint(obj.X+pt[0], obj.Y+pt[1])
	}
	return poly, nil
}

// scalePoint converts tile-local pixels to tile units, clamped to the cell.
func scalePoint(x, y float64) geom.Vec2 {
	return geom.Vec2{
		X: clamp01(x / entity.TilePixels),
		Y: clamp01(y / entity.TilePixels),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func buildMarker(id int, kind entity.MarkerKind, cx, cy int, def tiled.TileDef) (entity.Marker, error) {
	marker := entity.Marker{ID: id, Kind: kind, CellX: cx, CellY: cy}
	switch kind {
	case entity.MarkerPowerup:
		marker.Powerup = def.PropString("powerup", "")
		if marker.Powerup == "" {
			return entity.Marker{}, fmt.Errorf("powerup marker needs a powerup name")
		}
	case entity.MarkerMovingPlatform:
		dir, err := orientationVec(def.PropString("orientation", "right"))
		if err != nil {
			return entity.Marker{}, err
		}
		marker.Dir = dir
		marker.Range = float64(def.PropInt("range", 0))
	case entity.MarkerThwump:
		dir, err := orientationVec(def.PropString("orientation", "down"))
		if err != nil {
			return entity.Marker{}, err
		}
		marker.Dir = dir
	case entity.MarkerTurret:
		dir, err := orientationVec(def.PropString("orientation", "right"))
		if err != nil {
			return entity.Marker{}, err
		}
		marker.Dir = dir
	}
	return marker, nil
}

func orientationVec(name string) (geom.Vec2, error) {
	switch name {
	case "left":
		return geom.Vec2{X: -1, Y: 0}, nil
	case "right":
		return geom.Vec2{X: 1, Y: 0}, nil
	case "up":
		return geom.Vec2{X: 0, Y: -1}, nil
	case "down":
		return geom.Vec2{X: 0, Y: 1}, nil
	}
	return geom.Vec2{}, fmt.Errorf("unknown orientation %q", name)
}
