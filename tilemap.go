package ember

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// GID flag bits (same convention as the Tiled map format).
const (
	tileFlipH    uint32 = 1 << 31 // horizontal flip
	tileFlipV    uint32 = 1 << 30 // vertical flip
	tileFlipD    uint32 = 1 << 29 // diagonal flip (90° rotation)
	tileFlagMask uint32 = tileFlipH | tileFlipV | tileFlipD
)

// TilemapFormat selects how map data is parsed.
type TilemapFormat uint8

const (
	// TilemapCSV is one layer of comma-separated tile indexes, one row
	// per line. Negative values are empty cells.
	TilemapCSV TilemapFormat = iota
	// TilemapTiledJSON is a map exported by the Tiled editor in JSON form.
	TilemapTiledJSON
)

// TileLayer is one grid of tiles. Cells hold GIDs: 0 is empty, otherwise
// tile index + 1 with optional flip flags in the high bits.
type TileLayer struct {
	Name    string
	Width   int // in tiles
	Height  int // in tiles
	Visible bool
	Alpha   float64
	data    []uint32
}

// Tilemap is a set of tile layers drawn from one tileset texture.
type Tilemap struct {
	TileWidth  int
	TileHeight int
	Layers     []*TileLayer

	tileset *Texture
	tiles   []*ebiten.Image // tileset cut into tiles, lazily
}

// ParseTilemap parses mapData into a Tilemap with the given tile size.
// For Tiled JSON a zero tile size is taken from the map.
func ParseTilemap(mapData string, format TilemapFormat, tileWidth, tileHeight int) (*Tilemap, error) {
	var (
		m   *Tilemap
		err error
	)
	switch format {
	case TilemapCSV:
		m, err = parseCSVTilemap(mapData)
	case TilemapTiledJSON:
		m, err = parseTiledTilemap(mapData)
	default:
		return nil, fmt.Errorf("tilemap: unknown format %d", format)
	}
	if err != nil {
		return nil, err
	}
	if tileWidth > 0 {
		m.TileWidth = tileWidth
	}
	if tileHeight > 0 {
		m.TileHeight = tileHeight
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("tilemap: tile size %dx%d must be positive", m.TileWidth, m.TileHeight)
	}
	return m, nil
}

func parseCSVTilemap(mapData string) (*Tilemap, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(mapData)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tilemap: parse csv: %w", err)
	}

	layer := &TileLayer{Name: "layer0", Height: len(rows), Visible: true, Alpha: 1}
	for _, row := range rows {
		// A trailing comma leaves an empty last field.
		if len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
			row = row[:len(row)-1]
		}
		layer.Width = max(layer.Width, len(row))
	}
	layer.data = make([]uint32, layer.Width*layer.Height)
	for y, row := range rows {
		for x, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("tilemap: csv row %d col %d: %w", y, x, err)
			}
			if v >= 0 && x < layer.Width {
				layer.data[y*layer.Width+x] = uint32(v) + 1
			}
		}
	}
	return &Tilemap{Layers: []*TileLayer{layer}}, nil
}

type tiledMap struct {
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	TileWidth  int          `json:"tilewidth"`
	TileHeight int          `json:"tileheight"`
	Layers     []tiledLayer `json:"layers"`
	Tilesets   []struct {
		FirstGID uint32 `json:"firstgid"`
	} `json:"tilesets"`
}

type tiledLayer struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Data    []uint32 `json:"data"`
	Visible *bool    `json:"visible"`
	Opacity *float64 `json:"opacity"`
}

func parseTiledTilemap(mapData string) (*Tilemap, error) {
	var tm tiledMap
	if err := json.Unmarshal([]byte(mapData), &tm); err != nil {
		return nil, fmt.Errorf("tilemap: parse tiled json: %w", err)
	}
	first := uint32(1)
	if len(tm.Tilesets) > 0 && tm.Tilesets[0].FirstGID > 0 {
		first = tm.Tilesets[0].FirstGID
	}

	m := &Tilemap{TileWidth: tm.TileWidth, TileHeight: tm.TileHeight}
	for _, tl := range tm.Layers {
		if tl.Type != "" && tl.Type != "tilelayer" {
			continue
		}
		w, h := tl.Width, tl.Height
		if w == 0 {
			w = tm.Width
		}
		if h == 0 {
			h = tm.Height
		}
		if len(tl.Data) != w*h {
			return nil, fmt.Errorf("tilemap: layer %q has %d cells, want %d", tl.Name, len(tl.Data), w*h)
		}
		layer := &TileLayer{Name: tl.Name, Width: w, Height: h, Visible: true, Alpha: 1, data: make([]uint32, w*h)}
		if tl.Visible != nil {
			layer.Visible = *tl.Visible
		}
		if tl.Opacity != nil {
			layer.Alpha = *tl.Opacity
		}
		for i, gid := range tl.Data {
			id := gid &^ tileFlagMask
			if id < first {
				continue
			}
			layer.data[i] = (id - first + 1) | (gid & tileFlagMask)
		}
		m.Layers = append(m.Layers, layer)
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("tilemap: tiled json has no tile layers")
	}
	return m, nil
}

// NewTilemap creates a tilemap node drawing m with tileset.
func NewTilemap(name string, m *Tilemap, tileset *Texture) *Node {
	m.tileset = tileset
	m.tiles = nil
	n := &Node{Name: name, Type: NodeTypeTilemap, Tilemap: m}
	nodeDefaults(n)
	n.Width, n.Height = m.PixelSize()
	return n
}

// PixelSize returns the size of the largest layer in pixels.
func (m *Tilemap) PixelSize() (w, h float64) {
	for _, l := range m.Layers {
		w = max(w, float64(l.Width*m.TileWidth))
		h = max(h, float64(l.Height*m.TileHeight))
	}
	return w, h
}

// Tile returns the tile index at (x, y) of layer, or -1 for an empty or
// out-of-range cell. Flip flags are ignored.
func (m *Tilemap) Tile(layer, x, y int) int {
	l := m.layer(layer)
	if l == nil || x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return -1
	}
	return int(l.data[y*l.Width+x]&^tileFlagMask) - 1
}

// SetTile sets the tile index at (x, y) of layer; a negative index empties
// the cell. Out-of-range cells are ignored.
func (m *Tilemap) SetTile(layer, x, y, index int) {
	l := m.layer(layer)
	if l == nil || x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return
	}
	if index < 0 {
		l.data[y*l.Width+x] = 0
		return
	}
	l.data[y*l.Width+x] = uint32(index) + 1
}

// TileAtWorld returns the cell of layer under the world point (wx, wy).
// n must be the node drawing m.
func (m *Tilemap) TileAtWorld(n *Node, layer int, wx, wy float64) (x, y, index int, ok bool) {
	lx, ly := n.WorldToLocal(wx, wy)
	if lx < 0 || ly < 0 {
		return 0, 0, -1, false
	}
	x = int(lx) / m.TileWidth
	y = int(ly) / m.TileHeight
	l := m.layer(layer)
	if l == nil || x >= l.Width || y >= l.Height {
		return 0, 0, -1, false
	}
	return x, y, m.Tile(layer, x, y), true
}

func (m *Tilemap) layer(i int) *TileLayer {
	if i < 0 || i >= len(m.Layers) {
		return nil
	}
	return m.Layers[i]
}

// tileImage returns the tileset cell for a tile index, nil when the
// tileset is missing or too small.
func (m *Tilemap) tileImage(index int) *ebiten.Image {
	if m.tileset == nil || m.tileset.Image == nil {
		return nil
	}
	if m.tiles == nil {
		b := m.tileset.Image.Bounds()
		cols := b.Dx() / m.TileWidth
		rows := b.Dy() / m.TileHeight
		m.tiles = make([]*ebiten.Image, 0, cols*rows)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				x0 := b.Min.X + c*m.TileWidth
				y0 := b.Min.Y + r*m.TileHeight
				rect := image.Rect(x0, y0, x0+m.TileWidth, y0+m.TileHeight)
				m.tiles = append(m.tiles, m.tileset.Image.SubImage(rect).(*ebiten.Image))
			}
		}
	}
	if index < 0 || index >= len(m.tiles) {
		return nil
	}
	return m.tiles[index]
}

// tileLocalTransform places a tile cell, applying Tiled flip flags:
// diagonal first, then horizontal and vertical.
func tileLocalTransform(gid uint32, col, row, tw, th int) [6]float64 {
	w, h := float64(tw), float64(th)
	m := identityTransform
	if gid&tileFlipD != 0 {
		m = [6]float64{0, 1, 1, 0, 0, 0}
	}
	if gid&tileFlipH != 0 {
		m = multiplyAffine([6]float64{-1, 0, 0, 1, w, 0}, m)
	}
	if gid&tileFlipV != 0 {
		m = multiplyAffine([6]float64{1, 0, 0, -1, 0, h}, m)
	}
	m[4] += float64(col) * w
	m[5] += float64(row) * h
	return m
}
