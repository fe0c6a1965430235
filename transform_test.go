package ember

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransform(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *Node)
		want  [6]float64
	}{
		{"identity", func(n *Node) {}, identityTransform},
		{"translation", func(n *Node) { n.X, n.Y = 10, 20 }, [6]float64{1, 0, 0, 1, 10, 20}},
		{"scale", func(n *Node) { n.ScaleX, n.ScaleY = 2, 3 }, [6]float64{2, 0, 0, 3, 0, 0}},
		{"rotation 90", func(n *Node) { n.Rotation = math.Pi / 2 }, [6]float64{0, 1, -1, 0, 0, 0}},
		{"pivot", func(n *Node) {
			n.X, n.Y = 100, 200
			n.PivotX, n.PivotY = 16, 16
		}, [6]float64{1, 0, 0, 1, 84, 184}},
		{"scaled pivot", func(n *Node) {
			n.PivotX, n.PivotY = 8, 4
			n.ScaleX, n.ScaleY = 2, 3
		}, [6]float64{2, 0, 0, 3, -16, -12}},
		{"scale then rotate", func(n *Node) {
			n.X, n.Y = 50, 100
			n.ScaleX, n.ScaleY = 2, 2
			n.Rotation = math.Pi / 2
		}, [6]float64{0, 2, -2, 0, 50, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewGroup("test", 0)
			tt.setup(n)
			assertMatrix(t, tt.name, computeLocalTransform(n), tt.want)
		})
	}
}

// --- multiplyAffine / invertAffine ---

func TestMultiplyAffine(t *testing.T) {
	m := [6]float64{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "id*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*id", multiplyAffine(m, identityTransform), m)

	moveA := [6]float64{1, 0, 0, 1, 10, 20}
	moveB := [6]float64{1, 0, 0, 1, 5, 3}
	assertMatrix(t, "translations", multiplyAffine(moveA, moveB), [6]float64{1, 0, 0, 1, 15, 23})

	// Scaling after a move scales the move too.
	scale := [6]float64{2, 0, 0, 2, 0, 0}
	assertMatrix(t, "scale*move", multiplyAffine(scale, moveA), [6]float64{2, 0, 0, 2, 20, 40})
}

func TestInvertAffine(t *testing.T) {
	rotated := NewGroup("test", 0)
	rotated.ScaleX = 2
	rotated.Rotation = math.Pi / 3
	for _, m := range [][6]float64{
		{2, 0, 0, 3, 10, 20},
		computeLocalTransform(rotated),
	} {
		assertMatrix(t, "m*inv", multiplyAffine(m, invertAffine(m)), identityTransform)
		assertMatrix(t, "inv*m", multiplyAffine(invertAffine(m), m), identityTransform)
	}
}

// chain returns a root with one child under it, positioned at rootX and
// childX, with world transforms already computed.
func chain(rootX, childX float64) (root, child *Node) {
	root, child = NewGroup("root", 0), NewGroup("child", 0)
	root.AddChild(child)
	root.X, child.X = rootX, childX
	updateWorldTransform(root, identityTransform, 1, false)
	return root, child
}

func TestWorldTransformRefresh(t *testing.T) {
	tests := []struct {
		name   string
		change func(root, child *Node)
		wantTX float64
	}{
		{"composed", func(*Node, *Node) {}, 110},
		{"child setter", func(_, c *Node) { c.SetPosition(20, 0) }, 120},
		{"parent setter", func(r, _ *Node) { r.SetPosition(200, 0) }, 210},
		// A direct field write waits for MarkDirty.
		{"raw write", func(_, c *Node) { c.X = 999 }, 110},
		{"raw write marked", func(_, c *Node) { c.X = 30; c.MarkDirty() }, 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, child := chain(100, 10)
			tt.change(root, child)
			updateWorldTransform(root, identityTransform, 1, false)
			assertNear(t, "child tx", child.worldTransform[4], tt.wantTX)
		})
	}
}

func TestWorldAlphaMultiplies(t *testing.T) {
	root, child := chain(0, 0)
	root.SetAlpha(0.5)
	child.SetAlpha(0.4)
	updateWorldTransform(root, identityTransform, 0.5, false)
	assertNear(t, "root", root.worldAlpha, 0.25)
	assertNear(t, "child", child.worldAlpha, 0.1)
}

func TestLocalWorldConversions(t *testing.T) {
	root, child := chain(100, 10)
	root.Y = 50
	child.Y = 20
	child.SetScale(2, 3)
	child.SetRotation(math.Pi / 6)
	root.MarkDirty()
	updateWorldTransform(root, identityTransform, 1, false)

	wx, wy := child.LocalToWorld(child.WorldToLocal(150, 80))
	assertNear(t, "x", wx, 150)
	assertNear(t, "y", wy, 80)

	ox, oy := child.LocalToWorld(0, 0)
	px, py := child.WorldPosition()
	assertNear(t, "origin x", ox, 110)
	assertNear(t, "origin y", oy, 70)
	if ox != px || oy != py {
		t.Errorf("WorldPosition = (%v, %v), LocalToWorld(0, 0) = (%v, %v)", px, py, ox, oy)
	}
}

func TestDeepHierarchyAccumulates(t *testing.T) {
	top := NewGroup("0", 0)
	n := top
	for range 9 {
		c := NewGroup("", 0)
		c.X, c.Y = 10, -1
		n.AddChild(c)
		n = c
	}
	updateWorldTransform(top, identityTransform, 1, false)
	x, y := n.WorldPosition()
	assertNear(t, "x", x, 90)
	assertNear(t, "y", y, -9)
}

// --- Setters ---

func TestSettersDirty(t *testing.T) {
	setters := map[string]func(n *Node){
		"SetPosition": func(n *Node) { n.SetPosition(1, 2) },
		"SetScale":    func(n *Node) { n.SetScale(2, 2) },
		"SetRotation": func(n *Node) { n.SetRotation(1) },
		"SetAngle":    func(n *Node) { n.SetAngle(45) },
		"SetPivot":    func(n *Node) { n.SetPivot(5, 5) },
		"SetAnchor":   func(n *Node) { n.SetAnchor(0.5, 0.5) },
		"SetAlpha":    func(n *Node) { n.SetAlpha(0.5) },
		"MarkDirty":   func(n *Node) { n.MarkDirty() },
	}
	for name, set := range setters {
		n := NewGroup("test", 0)
		n.transformDirty = false
		set(n)
		if !n.transformDirty {
			t.Errorf("%s did not mark the node dirty", name)
		}
	}
}

func TestAngleDegrees(t *testing.T) {
	n := NewGroup("test", 0)
	n.SetAngle(90)
	assertNear(t, "Rotation", n.Rotation, math.Pi/2)
	assertNear(t, "Angle", n.Angle(), 90)
}

func TestAnchorUsesSize(t *testing.T) {
	n := NewSprite("test", nil)
	n.Width, n.Height = 40, 20
	n.SetAnchor(0.5, 1)
	if n.PivotX != 20 || n.PivotY != 20 {
		t.Errorf("pivot = (%v, %v), want (20, 20)", n.PivotX, n.PivotY)
	}
}

func TestInvertSingularIsIdentity(t *testing.T) {
	for _, m := range [][6]float64{
		{0, 0, 0, 1, 10, 20},
		{0, 0, 0, 0, 50, 100},
		{1, 2, 2, 4, 0, 0},
	} {
		assertMatrix(t, "inverse", invertAffine(m), identityTransform)
	}
}
