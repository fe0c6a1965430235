package ember

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Version is printed on the init screen.
const Version = "ember 0.5"

// Color is a straight-alpha RGBA tint with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// ColorWhite leaves whatever it tints unchanged.
var ColorWhite = Color{1, 1, 1, 1}

// ParseColor reads "rrggbb" or "rrggbbaa", with or without a leading '#'.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("parse color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	channel := func(shift uint) float64 { return float64(v>>shift&0xff) / 255 }
	return Color{channel(24), channel(16), channel(8), channel(0)}, nil
}

// NRGBA rounds c to 8 bits per channel, clamping out-of-range components.
func (c Color) NRGBA() color.NRGBA {
	byteOf := func(v float64) uint8 { return uint8(Clamp(v, 0, 1)*255 + 0.5) }
	return color.NRGBA{byteOf(c.R), byteOf(c.G), byteOf(c.B), byteOf(c.A)}
}

type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in a y-down space.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether (x, y) is inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

func (r Rect) imageRect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.Right()), int(r.Bottom()))
}

// Range is an inclusive [Min, Max] interval sampled by Random.
type Range struct {
	Min, Max float64
}

// BlendMode selects how a node composites onto what is below it.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdd
	BlendErase
	BlendNone
)

var ebitenBlends = [...]ebiten.Blend{
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendErase:  ebiten.BlendDestinationOut,
	BlendNone:   ebiten.BlendCopy,
}

// EbitenBlend maps b to Ebitengine's blend; unknown modes draw normally.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	if int(b) < len(ebitenBlends) {
		return ebitenBlends[b]
	}
	return ebiten.BlendSourceOver
}

// NodeType decides how the World updates and renders a Node.
type NodeType uint8

const (
	NodeTypeGroup NodeType = iota
	NodeTypeSprite
	NodeTypeParticle
	NodeTypeEmitter
	NodeTypeTilemap
)

var nodeTypeNames = [...]string{"group", "sprite", "particle", "emitter", "tilemap"}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "unknown"
}

// MouseButton numbers buttons as browsers do: left, middle, right.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
)
