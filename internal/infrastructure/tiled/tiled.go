// Package tiled decodes Tiled-editor map (.tmx) and tileset (.tsx) XML into
// flat structs keyed by integer tile id. It carries no game semantics; the
// level loader interprets the decoded data.
package tiled

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// gidMask strips the horizontal/vertical/diagonal flip flags Tiled packs
// into the top bits of a global tile id.
const gidMask = 0x1FFFFFFF

// Map mirrors the <map> element of a .tmx document.
type Map struct {
	XMLName    xml.Name     `xml:"map"`
	Width      int          `xml:"width,attr"`
	Height     int          `xml:"height,attr"`
	TileWidth  int          `xml:"tilewidth,attr"`
	TileHeight int          `xml:"tileheight,attr"`
	Tilesets   []TilesetRef `xml:"tileset"`
	Layers     []Layer      `xml:"layer"`
}

// TilesetRef is an external tileset reference inside a map.
type TilesetRef struct {
	FirstGID uint32 `xml:"firstgid,attr"`
	Source   string `xml:"source,attr"`
}

// Layer is a tile layer with CSV-encoded cell data.
type Layer struct {
	Name   string    `xml:"name,attr"`
	Width  int       `xml:"width,attr"`
	Height int       `xml:"height,attr"`
	Data   LayerData `xml:"data"`
}

// LayerData is the raw payload of a layer.
type LayerData struct {
	Encoding string `xml:"encoding,attr"`
	Raw      string `xml:",chardata"`
}

// Tileset mirrors a .tsx document.
type Tileset struct {
	XMLName    xml.Name  `xml:"tileset"`
	Name       string    `xml:"name,attr"`
	TileWidth  int       `xml:"tilewidth,attr"`
	TileHeight int       `xml:"tileheight,attr"`
	TileCount  int       `xml:"tilecount,attr"`
	Tiles      []TileDef `xml:"tile"`
}

// TileDef is one tile definition with its properties and collision objects.
type TileDef struct {
	ID         uint32     `xml:"id,attr"`
	Properties []Property `xml:"properties>property"`
	Objects    []Object   `xml:"objectgroup>object"`
}

// Property is a single name/value tile property.
type Property struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// Object is a collision shape attached to a tile. X/Y offset the shape
// within the tile; a nil Polygon means the object is a plain rectangle.
type Object struct {
	X       float64  `xml:"x,attr"`
	Y       float64  `xml:"y,attr"`
	Width   float64  `xml:"width,attr"`
	Height  float64  `xml:"height,attr"`
	Polygon *PolyRef `xml:"polygon"`
}

// PolyRef holds the space-separated "x,y" point list of a polygon object.
type PolyRef struct {
	Points string `xml:"points,attr"`
}

// ParseMap decodes a .tmx payload.
func ParseMap(data []byte) (*Map, error) {
	var m Map
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("map has invalid dimensions %dx%d", m.Width, m.Height)
	}
	return &m, nil
}

// ParseTileset decodes a .tsx payload.
func ParseTileset(data []byte) (*Tileset, error) {
	var ts Tileset
	if err := xml.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse tileset: %w", err)
	}
	return &ts, nil
}

// GIDs decodes the layer's CSV cell data into global tile ids with flip
// flags masked off. Zero means an empty cell.
func (l Layer) GIDs() ([]uint32, error) {
	if enc := l.Data.Encoding; enc != "csv" {
		return nil, fmt.Errorf("unsupported layer encoding %q", enc)
	}
	tokens := strings.Split(strings.TrimSpace(l.Data.Raw), ",")
	want := l.Width * l.Height
	if len(tokens) != want {
		return nil, fmt.Errorf("layer %q has %d cells, want %d", l.Name, len(tokens), want)
	}
	gids := make([]uint32, want)
	for i, tok := range tokens {
		v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("layer %q cell %d: %w", l.Name, i, err)
		}
		gids[i] = uint32(v) & gidMask
	}
	return gids, nil
}

// LayerByName returns the named layer.
func (m *Map) LayerByName(name string) (Layer, bool) {
	for _, l := range m.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// Def returns the tile definition for a local tile id.
func (ts *Tileset) Def(id uint32) (TileDef, bool) {
	for _, d := range ts.Tiles {
		if d.ID == id {
			return d, true
		}
	}
	return TileDef{}, false
}

// PropString returns the named property value, or def when absent.
func (d TileDef) PropString(name, def string) string {
	for _, p := range d.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return def
}

// PropBool returns the named bool property, or def when absent or invalid.
func (d TileDef) PropBool(name string, def bool) bool {
	for _, p := range d.Properties {
		if p.Name == name {
			v, err := strconv.ParseBool(p.Value)
			if err != nil {
				return def
			}
			return v
		}
	}
	return def
}

// PropInt returns the named int property, or def when absent or invalid.
func (d TileDef) PropInt(name string, def int) int {
	for _, p := range d.Properties {
		if p.Name == name {
			v, err := strconv.Atoi(p.Value)
			if err != nil {
				return def
			}
			return v
		}
	}
	return def
}

// ParsePoints parses the polygon point list into x,y pairs relative to the
// owning object's offset.
func (p *PolyRef) ParsePoints() ([][2]float64, error) {
	fields := strings.Fields(p.Points)
	if len(fields) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(fields))
	}
	pts := make([][2]float64, len(fields))
	for i, f := range fields {
		xy := strings.SplitN(f, ",", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("bad polygon point %q", f)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad polygon point %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad polygon point %q: %w", f, err)
		}
		pts[i] = [2]float64{x, y}
	}
	return pts, nil
}
