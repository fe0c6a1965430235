package ember

import (
	"cmp"
	"slices"
)

// lastNodeID is only touched from the loop goroutine.
var lastNodeID uint32

// Node is an element of the World tree. Groups, sprites, particles,
// emitters and tilemaps share this one struct; Type selects the behavior.
type Node struct {
	ID   uint32
	Name string
	Type NodeType

	Parent   *Node
	children []*Node

	// Transform relative to Parent. The pivot is in local pixels.
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	PivotX, PivotY float64

	// Width and Height are the unscaled size drawn, culled and collided.
	Width, Height float64
	// Velocity in pixels per second, applied every fixed step.
	Velocity Vec2

	Alpha   float64
	Visible bool
	// Exists is false for killed nodes, which neither update nor draw.
	Exists bool
	ZIndex int

	Color     Color
	BlendMode BlendMode
	Texture   *Texture
	Emitter   *Emitter
	Tilemap   *Tilemap

	// MaxSize caps the children a group accepts through Add. 0 is no cap.
	MaxSize int

	UserData any
	// OnUpdate runs every fixed step with the scaled step in seconds.
	OnUpdate func(n *Node, dt float64)

	worldTransform   [6]float64
	worldAlpha       float64
	transformDirty   bool
	disposed         bool
	drawOrder        []*Node
	drawOrderInvalid bool
}

func nodeDefaults(n *Node) {
	lastNodeID++
	n.ID = lastNodeID
	n.ScaleX, n.ScaleY = 1, 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible, n.Exists = true, true
	n.transformDirty = true
}

// NewGroup returns an empty group holding at most maxSize children when
// filled through Add.
func NewGroup(name string, maxSize int) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup, MaxSize: maxSize}
	nodeDefaults(n)
	return n
}

// NewSprite returns a sprite sized to tex. Without a texture it draws a
// Width x Height box in its Color.
func NewSprite(name string, tex *Texture) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite}
	nodeDefaults(n)
	n.SetTexture(tex)
	return n
}

// DefaultParticleSize is the side of an untextured particle.
const DefaultParticleSize = 16

// NewParticle returns a DefaultParticleSize white box of type particle.
func NewParticle(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeParticle, Width: DefaultParticleSize, Height: DefaultParticleSize}
	nodeDefaults(n)
	return n
}

// SetTexture swaps the texture and takes its size. A nil texture keeps the
// current size.
func (n *Node) SetTexture(tex *Texture) {
	n.Texture = tex
	if tex != nil {
		n.Width, n.Height = float64(tex.Width), float64(tex.Height)
	}
}

// AddChild moves child under n, after its existing children. It panics on
// a nil child or one that is an ancestor of n.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("ember: AddChild(nil)")
	}
	for p := n; p != nil; p = p.Parent {
		if p == child {
			panic("ember: AddChild would create a cycle")
		}
	}
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.drawOrderInvalid = true
	child.dirtySubtree()
}

// Add is AddChild for groups with a MaxSize. It reports false, leaving
// child untouched, when n is full.
func (n *Node) Add(child *Node) bool {
	full := n.MaxSize > 0 && len(n.children) >= n.MaxSize
	if full && child.Parent != n {
		return false
	}
	n.AddChild(child)
	return true
}

// RemoveChild detaches child from n. It panics when child belongs to
// another parent.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("ember: RemoveChild of a node with another parent")
	}
	n.detach(child)
	child.Parent = nil
	child.dirtySubtree()
}

func (n *Node) RemoveFromParent() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren orphans every child without disposing any.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.Parent = nil
		c.dirtySubtree()
	}
	clear(n.children)
	n.children = n.children[:0]
	n.drawOrderInvalid = true
}

// Children returns the children in insertion order. Do not modify it.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) NumChildren() int { return len(n.children) }

// CountLiving counts the children with Exists set.
func (n *Node) CountLiving() int {
	living := 0
	for _, c := range n.children {
		if c.Exists {
			living++
		}
	}
	return living
}

// FirstDead returns the first killed child, for recycling, or nil.
func (n *Node) FirstDead() *Node {
	if i := slices.IndexFunc(n.children, func(c *Node) bool { return !c.Exists }); i >= 0 {
		return n.children[i]
	}
	return nil
}

// SetZIndex orders n among its siblings; higher draws later.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex != z {
		n.ZIndex = z
		if n.Parent != nil {
			n.Parent.drawOrderInvalid = true
		}
	}
}

// Kill hides n and marks it free for reuse.
func (n *Node) Kill() {
	n.Exists, n.Visible = false, false
}

// Revive shows a killed node again at (x, y).
func (n *Node) Revive(x, y float64) {
	n.Exists, n.Visible = true, true
	n.SetPosition(x, y)
}

// Dispose detaches n and releases it and its whole subtree. Disposed nodes
// are skipped by cameras and tweens that still hold them.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.release()
}

func (n *Node) release() {
	for _, c := range n.children {
		c.Parent = nil
		c.release()
	}
	*n = Node{Name: n.Name, Type: n.Type, disposed: true}
}

func (n *Node) IsDisposed() bool { return n.disposed }

// sorted returns the children by ascending ZIndex, ties in insertion order.
func (n *Node) sorted() []*Node {
	if n.drawOrderInvalid || len(n.drawOrder) != len(n.children) {
		n.drawOrder = append(n.drawOrder[:0], n.children...)
		slices.SortStableFunc(n.drawOrder, func(a, b *Node) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
		n.drawOrderInvalid = false
	}
	return n.drawOrder
}

func (n *Node) detach(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
		n.drawOrderInvalid = true
	}
}

func (n *Node) dirtySubtree() {
	n.transformDirty = true
	for _, c := range n.children {
		c.dirtySubtree()
	}
}
