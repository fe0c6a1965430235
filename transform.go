package ember

import "math"

// Affine matrices are [a, b, c, d, tx, ty], mapping (x, y) to
// (a*x + c*y + tx, b*x + d*y + ty).
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform builds n's matrix relative to its parent: the
// pivot moves to the origin, then scale, rotation and translation to
// (X, Y) apply in that order.
func computeLocalTransform(n *Node) [6]float64 {
	sin, cos := math.Sincos(n.Rotation)
	a, b := cos*n.ScaleX, sin*n.ScaleX
	c, d := -sin*n.ScaleY, cos*n.ScaleY
	return [6]float64{
		a, b, c, d,
		n.X - a*n.PivotX - c*n.PivotY,
		n.Y - b*n.PivotX - d*n.PivotY,
	}
}

// multiplyAffine returns p*c: c is applied first.
func multiplyAffine(p, c [6]float64) [6]float64 {
	var m [6]float64
	m[0] = p[0]*c[0] + p[2]*c[1]
	m[1] = p[1]*c[0] + p[3]*c[1]
	m[2] = p[0]*c[2] + p[2]*c[3]
	m[3] = p[1]*c[2] + p[3]*c[3]
	m[4], m[5] = transformPoint(p, c[4], c[5])
	return m
}

// invertAffine returns the inverse of m, or the identity when m collapses
// the plane.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	inv := [6]float64{m[3] / det, -m[1] / det, -m[2] / det, m[0] / det}
	inv[4] = -(inv[0]*m[4] + inv[2]*m[5])
	inv[5] = -(inv[1]*m[4] + inv[3]*m[5])
	return inv
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform refreshes the world matrix and alpha of every dirty
// node under n. A node whose parent changed is refreshed too.
func updateWorldTransform(n *Node, parent [6]float64, parentAlpha float64, parentChanged bool) {
	changed := parentChanged || n.transformDirty
	if changed {
		n.worldTransform = multiplyAffine(parent, computeLocalTransform(n))
		n.worldAlpha = n.Alpha * parentAlpha
		n.transformDirty = false
	}
	for _, c := range n.children {
		updateWorldTransform(c, n.worldTransform, n.worldAlpha, changed)
	}
}

// SetPosition moves the node within its parent.
func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.transformDirty = true
}

func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.transformDirty = true
}

// SetRotation sets the clockwise rotation in radians.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// Angle returns the rotation in degrees.
func (n *Node) Angle() float64 {
	return n.Rotation * 180 / math.Pi
}

// SetAngle sets the rotation in degrees.
func (n *Node) SetAngle(deg float64) {
	n.SetRotation(deg * math.Pi / 180)
}

// SetPivot sets the local point, in pixels, that X and Y position and that
// the node scales and rotates around.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX, n.PivotY = px, py
	n.transformDirty = true
}

// SetAnchor sets the pivot as a fraction of the node's size; (0.5, 0.5)
// is the center.
func (n *Node) SetAnchor(ax, ay float64) {
	n.SetPivot(ax*n.Width, ay*n.Height)
}

func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty schedules a world transform refresh after fields were written
// directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldToLocal maps a world point into the node's space as of the last
// transform refresh.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(n.worldTransform), wx, wy)
}

// LocalToWorld maps a point in the node's space into the world.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}

// WorldPosition returns where the node's local origin lies in the world.
func (n *Node) WorldPosition() (x, y float64) {
	return n.worldTransform[4], n.worldTransform[5]
}

// Bounds returns the world box around the node's Width x Height rectangle.
func (n *Node) Bounds() Rect {
	return worldAABB(n.worldTransform, n.Width, n.Height)
}
