package ember

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// drawCommand is one quad submitted to the Stage. Transforms are in
// screen space; the viewport clips the draw.
type drawCommand struct {
	viewport Rect
	geoM     [6]float64
	// image is nil for a solid width x height box.
	image  *ebiten.Image
	width  float64
	height float64
	color  Color // straight alpha
	blend  BlendMode
}

// appendNode walks n depth-first in draw order and appends commands for
// every visible node that intersects the viewport.
func appendNode(cmds []drawCommand, n *Node, vp Rect, view [6]float64, cull bool) []drawCommand {
	if !n.Visible || !n.Exists {
		return cmds
	}
	m := multiplyAffine(view, n.worldTransform)
	tint := n.Color
	tint.A *= n.worldAlpha

	switch n.Type {
	case NodeTypeSprite, NodeTypeParticle:
		if !cull || !shouldCull(n, m, vp) {
			cmds = appendTexture(cmds, n.Texture, n.Width, n.Height, m, vp, tint, n.BlendMode)
		}
	case NodeTypeEmitter:
		if n.Emitter != nil {
			cmds = appendParticles(cmds, n.Emitter, vp, view, tint, n.BlendMode)
		}
	case NodeTypeTilemap:
		if n.Tilemap != nil {
			cmds = appendTiles(cmds, n.Tilemap, vp, m, tint, n.BlendMode)
		}
	}

	for _, c := range n.sorted() {
		// World transforms already include the parent, so children compose
		// with the camera view only.
		cmds = appendNode(cmds, c, vp, view, cull)
	}
	return cmds
}

// appendTexture emits one sprite quad. A nil texture draws a w x h box.
func appendTexture(cmds []drawCommand, tex *Texture, w, h float64, m [6]float64, vp Rect, tint Color, blend BlendMode) []drawCommand {
	cmd := drawCommand{viewport: vp, geoM: m, width: w, height: h, color: tint, blend: blend}
	if tex != nil && tex.Image != nil {
		cmd.image = tex.Image
		cmd.geoM = multiplyAffine(m, texturePlacement(tex))
	}
	return append(cmds, cmd)
}

// texturePlacement maps image pixels into the texture's logical box,
// undoing atlas rotation and trim.
func texturePlacement(tex *Texture) [6]float64 {
	p := identityTransform
	if tex.Rotated {
		storedW := float64(tex.Image.Bounds().Dx())
		p = [6]float64{0, -1, 1, 0, 0, storedW}
	}
	p[4] += tex.OffsetX
	p[5] += tex.OffsetY
	return p
}

func appendParticles(cmds []drawCommand, e *Emitter, vp Rect, view [6]float64, tint Color, blend BlendMode) []drawCommand {
	pw, ph := e.particleSize()
	var img *ebiten.Image
	place := identityTransform
	if e.texture != nil && e.texture.Image != nil {
		img = e.texture.Image
		place = texturePlacement(e.texture)
	}
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		s := float64(p.cur.scale)
		sin, cos := math.Sincos(p.rotation)
		// Translate(-pw/2, -ph/2) -> Scale(s) -> Rotate -> Translate(x, y)
		ox, oy := -pw/2*s, -ph/2*s
		local := [6]float64{
			cos * s, sin * s, -sin * s, cos * s,
			cos*ox - sin*oy + p.x,
			sin*ox + cos*oy + p.y,
		}
		m := multiplyAffine(view, local)
		if !worldAABB(m, pw, ph).Intersects(vp) {
			continue
		}
		c := Color{
			R: tint.R * float64(p.cur.r),
			G: tint.G * float64(p.cur.g),
			B: tint.B * float64(p.cur.b),
			A: tint.A * float64(p.cur.alpha),
		}
		cmd := drawCommand{viewport: vp, geoM: m, width: pw, height: ph, color: c, blend: blend}
		if img != nil {
			cmd.image = img
			cmd.geoM = multiplyAffine(m, place)
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func appendTiles(cmds []drawCommand, tm *Tilemap, vp Rect, m [6]float64, tint Color, blend BlendMode) []drawCommand {
	tw, th := tm.TileWidth, tm.TileHeight
	for _, l := range tm.Layers {
		if !l.Visible {
			continue
		}
		c := tint
		c.A *= l.Alpha
		for row := 0; row < l.Height; row++ {
			for col := 0; col < l.Width; col++ {
				gid := l.data[row*l.Width+col]
				if gid == 0 {
					continue
				}
				img := tm.tileImage(int(gid&^tileFlagMask) - 1)
				if img == nil {
					continue
				}
				tileM := multiplyAffine(m, tileLocalTransform(gid, col, row, tw, th))
				if !worldAABB(tileM, float64(tw), float64(th)).Intersects(vp) {
					continue
				}
				cmds = append(cmds, drawCommand{
					viewport: vp,
					geoM:     tileM,
					image:    img,
					width:    float64(tw),
					height:   float64(th),
					color:    c,
					blend:    blend,
				})
			}
		}
	}
	return cmds
}

// whitePixel backs untextured boxes (no sync.Once, loop-owned).
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// drawCommands submits cmds to screen.
func drawCommands(screen *ebiten.Image, cmds []drawCommand) {
	var op ebiten.DrawImageOptions
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.color.A <= 0 {
			continue
		}
		target := screen.SubImage(cmd.viewport.imageRect()).(*ebiten.Image)

		op.GeoM.Reset()
		op.ColorScale.Reset()
		img := cmd.image
		if img == nil {
			img = ensureWhitePixel()
			op.GeoM.Scale(cmd.width, cmd.height)
		}
		var g ebiten.GeoM
		g.SetElement(0, 0, cmd.geoM[0])
		g.SetElement(1, 0, cmd.geoM[1])
		g.SetElement(0, 1, cmd.geoM[2])
		g.SetElement(1, 1, cmd.geoM[3])
		g.SetElement(0, 2, cmd.geoM[4])
		g.SetElement(1, 2, cmd.geoM[5])
		op.GeoM.Concat(g)

		a := float32(cmd.color.A)
		op.ColorScale.Scale(float32(cmd.color.R)*a, float32(cmd.color.G)*a, float32(cmd.color.B)*a, a)
		op.Blend = cmd.blend.EbitenBlend()
		target.DrawImage(img, &op)
	}
}
