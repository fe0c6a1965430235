package ember

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FollowStyle selects the deadzone a following camera uses.
type FollowStyle uint8

const (
	// FollowLockOn keeps the target at the view center.
	FollowLockOn FollowStyle = iota
	// FollowPlatformer uses a narrow, tall deadzone slightly above center.
	FollowPlatformer
	// FollowTopDown uses a square deadzone a quarter of the view's longer side.
	FollowTopDown
	// FollowTopDownTight uses a square deadzone an eighth of the longer side.
	FollowTopDownTight
)

// Camera is a view into the World rendered into a rectangle of the stage.
// X and Y are the world point shown at the viewport center.
type Camera struct {
	// ID is the camera's index in the registry when it was added.
	ID int
	// Hidden cameras still update but are not rendered.
	Visible bool

	X, Y float64
	// Zoom scales the view; 2 shows everything twice as large.
	Zoom float64
	// Rotation turns the view clockwise, in radians.
	Rotation float64
	Viewport Rect

	// CullEnabled skips nodes whose box misses the viewport.
	CullEnabled bool

	// Deadzone is the viewport-relative rectangle the followed target may
	// move in without scrolling. Empty means lock on.
	Deadzone Rect
	// FollowLerp is the fraction of the remaining distance closed per step.
	FollowLerp float64
	// FollowOffset shifts the followed point in world units.
	FollowOffset Vec2

	// BoundsEnabled keeps the visible area inside Bounds.
	BoundsEnabled bool
	Bounds        Rect

	target *Node
	scroll *cameraScroll

	view    [6]float64
	inverse [6]float64
	viewKey viewState
	cached  bool
}

// viewState is everything the view matrix depends on.
type viewState struct {
	x, y, zoom, rotation float64
	viewport             Rect
}

type cameraScroll struct {
	x, y         *gween.Tween
	doneX, doneY bool
}

func newCamera(id int, viewport Rect) *Camera {
	return &Camera{
		ID:          id,
		Visible:     true,
		X:           viewport.Width / 2,
		Y:           viewport.Height / 2,
		Zoom:        1,
		Viewport:    viewport,
		CullEnabled: true,
		FollowLerp:  1,
	}
}

// Follow tracks node with the deadzone of style. The node's world position
// is read after each fixed step.
func (c *Camera) Follow(node *Node, style FollowStyle) {
	c.target = node
	w, h := c.Viewport.Width, c.Viewport.Height
	switch style {
	case FollowPlatformer:
		dw, dh := w/8, h/3
		c.Deadzone = Rect{X: (w - dw) / 2, Y: (h-dh)/2 - dh/4, Width: dw, Height: dh}
	case FollowTopDown:
		side := math.Max(w, h) / 4
		c.Deadzone = Rect{X: (w - side) / 2, Y: (h - side) / 2, Width: side, Height: side}
	case FollowTopDownTight:
		side := math.Max(w, h) / 8
		c.Deadzone = Rect{X: (w - side) / 2, Y: (h - side) / 2, Width: side, Height: side}
	default:
		c.Deadzone = Rect{}
	}
}

// Target returns the followed node, or nil.
func (c *Camera) Target() *Node {
	return c.target
}

// Unfollow stops tracking the target.
func (c *Camera) Unfollow() {
	c.target = nil
}

// FocusOn centers the view on (x, y) immediately.
func (c *Camera) FocusOn(x, y float64) {
	c.X, c.Y = x, y
	c.ClampToBounds()
}

// ScrollTo glides the view center to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, fn ease.TweenFunc) {
	c.scroll = &cameraScroll{
		x: gween.New(float32(c.X), float32(x), duration, fn),
		y: gween.New(float32(c.Y), float32(y), duration, fn),
	}
}

// ScrollToTile glides to the center of tile (col, row) of a tileW x tileH grid.
func (c *Camera) ScrollToTile(col, row int, tileW, tileH float64, duration float32, fn ease.TweenFunc) {
	c.ScrollTo((float64(col)+0.5)*tileW, (float64(row)+0.5)*tileH, duration, fn)
}

// Scrolling reports whether a ScrollTo is in progress.
func (c *Camera) Scrolling() bool {
	return c.scroll != nil
}

// SetBounds confines the visible area to bounds.
func (c *Camera) SetBounds(bounds Rect) {
	c.Bounds = bounds
	c.BoundsEnabled = true
}

// ClearBounds lets the camera move freely.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds applies Bounds now rather than on the next step.
func (c *Camera) ClampToBounds() {
	if !c.BoundsEnabled {
		return
	}
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)
	c.X = clampCenter(c.X, c.Bounds.X, c.Bounds.Width, halfW)
	c.Y = clampCenter(c.Y, c.Bounds.Y, c.Bounds.Height, halfH)
}

// clampCenter keeps a view of half-extent half inside [lo, lo+size],
// centering it when the span is smaller than the view.
func clampCenter(v, lo, size, half float64) float64 {
	if size < 2*half {
		return lo + size/2
	}
	return math.Min(math.Max(v, lo+half), lo+size-half)
}

// update runs follow, scroll and bounds for one step of dt seconds.
func (c *Camera) update(dt float32) {
	if c.target != nil {
		if c.target.IsDisposed() {
			c.target = nil
		} else {
			c.followStep()
		}
	}
	if s := c.scroll; s != nil {
		if !s.doneX {
			v, done := s.x.Update(dt)
			c.X, s.doneX = float64(v), done
		}
		if !s.doneY {
			v, done := s.y.Update(dt)
			c.Y, s.doneY = float64(v), done
		}
		if s.doneX && s.doneY {
			c.scroll = nil
		}
	}
	c.ClampToBounds()
}

// followStep moves the view so the target sits inside the deadzone, or at
// the center without one.
func (c *Camera) followStep() {
	tx := c.target.worldTransform[4] + c.FollowOffset.X
	ty := c.target.worldTransform[5] + c.FollowOffset.Y
	goalX, goalY := tx, ty
	if dz := c.Deadzone; dz.Width > 0 && dz.Height > 0 {
		halfW := c.Viewport.Width / (2 * c.Zoom)
		halfH := c.Viewport.Height / (2 * c.Zoom)
		goalX = deadzoneCenter(c.X, tx, halfW, dz.X/c.Zoom, dz.Width/c.Zoom)
		goalY = deadzoneCenter(c.Y, ty, halfH, dz.Y/c.Zoom, dz.Height/c.Zoom)
	}
	lerp := c.FollowLerp
	if lerp <= 0 || lerp > 1 {
		lerp = 1
	}
	c.X += (goalX - c.X) * lerp
	c.Y += (goalY - c.Y) * lerp
}

// deadzoneCenter returns the view center on one axis that brings t inside
// the zone [off, off+size] measured from the view's leading edge.
func deadzoneCenter(center, t, half, off, size float64) float64 {
	edge := center - half
	switch {
	case t < edge+off:
		edge = t - off
	case t > edge+off+size:
		edge = t - off - size
	}
	return edge + half
}

// viewMatrix returns the world-to-stage transform, rebuilt only when the
// camera moved since the last call.
//
//	view = Translate(viewport center) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
func (c *Camera) viewMatrix() [6]float64 {
	key := viewState{c.X, c.Y, c.Zoom, c.Rotation, c.Viewport}
	if c.cached && key == c.viewKey {
		return c.view
	}
	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	c.view = [6]float64{
		z * cos, z * sin,
		-z * sin, z * cos,
		cx - z*(cos*c.X-sin*c.Y),
		cy - z*(sin*c.X+cos*c.Y),
	}
	c.inverse = invertAffine(c.view)
	c.viewKey = key
	c.cached = true
	return c.view
}

// WorldToScreen maps a world point to stage coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(c.viewMatrix(), wx, wy)
}

// ScreenToWorld maps a stage point to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.viewMatrix()
	return transformPoint(c.inverse, sx, sy)
}

// VisibleBounds returns the world-space box around everything the viewport
// shows.
func (c *Camera) VisibleBounds() Rect {
	c.viewMatrix()
	vp := c.Viewport
	return boundsOf(c.inverse, vp.X, vp.Y, vp.Width, vp.Height)
}

// worldAABB returns the box around a w x h rectangle at the origin after m.
func worldAABB(m [6]float64, w, h float64) Rect {
	return boundsOf(m, 0, 0, w, h)
}

// boundsOf returns the axis-aligned box around rectangle (x, y, w, h)
// transformed by m.
func boundsOf(m [6]float64, x, y, w, h float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}} {
		px, py := transformPoint(m, p[0], p[1])
		minX, maxX = math.Min(minX, px), math.Max(maxX, px)
		minY, maxY = math.Min(minY, py), math.Max(maxY, py)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// shouldCull reports whether n's box, under m, misses bounds. Groups and
// zero-sized nodes are never culled.
func shouldCull(n *Node, m [6]float64, bounds Rect) bool {
	if n.Type == NodeTypeGroup || (n.Width == 0 && n.Height == 0) {
		return false
	}
	return !worldAABB(m, n.Width, n.Height).Intersects(bounds)
}
