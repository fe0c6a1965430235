package ember

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

var testViewport = Rect{Width: 800, Height: 600}

// collect computes world transforms and gathers commands with an identity
// view, the way World.Render does for a default camera.
func collect(root *Node, cull bool) []drawCommand {
	updateWorldTransform(root, identityTransform, 1, false)
	return appendNode(nil, root, testViewport, identityTransform, cull)
}

func sizedSprite(name string, w, h float64) *Node {
	n := NewSprite(name, nil)
	n.Width, n.Height = w, h
	return n
}

// --- Command emission ---

func TestSingleSpriteEmitsOneCommand(t *testing.T) {
	root := NewGroup("root", 0)
	s := sizedSprite("s", 32, 32)
	s.SetPosition(10, 20)
	root.AddChild(s)

	cmds := collect(root, true)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	c := cmds[0]
	if c.geoM[4] != 10 || c.geoM[5] != 20 {
		t.Errorf("translation = (%v, %v), want (10, 20)", c.geoM[4], c.geoM[5])
	}
	if c.width != 32 || c.height != 32 || c.image != nil {
		t.Errorf("box = %vx%v image=%v", c.width, c.height, c.image)
	}
	if c.viewport != testViewport {
		t.Errorf("viewport = %+v", c.viewport)
	}
}

func TestGroupsEmitNothing(t *testing.T) {
	root := NewGroup("root", 0)
	root.AddChild(NewGroup("empty", 0))
	if cmds := collect(root, true); len(cmds) != 0 {
		t.Errorf("commands = %d, want 0", len(cmds))
	}
}

func TestInvisibleAndDeadSubtreesSkipped(t *testing.T) {
	tests := []struct {
		name  string
		setup func(parent *Node)
	}{
		{"hidden", func(p *Node) { p.Visible = false }},
		{"killed", func(p *Node) { p.Kill() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewGroup("root", 0)
			parent := NewGroup("parent", 0)
			parent.AddChild(sizedSprite("child", 8, 8))
			root.AddChild(parent)
			tt.setup(parent)
			if cmds := collect(root, true); len(cmds) != 0 {
				t.Errorf("commands = %d, want 0", len(cmds))
			}
		})
	}
}

func TestZIndexOrdersCommands(t *testing.T) {
	root := NewGroup("root", 0)
	a := sizedSprite("a", 1, 1)
	b := sizedSprite("b", 2, 2)
	c := sizedSprite("c", 3, 3)
	root.AddChild(a)
	root.AddChild(b)
	root.AddChild(c)
	a.SetZIndex(5)
	c.SetZIndex(-1)

	cmds := collect(root, true)
	want := []float64{3, 2, 1}
	if len(cmds) != len(want) {
		t.Fatalf("commands = %d, want %d", len(cmds), len(want))
	}
	for i, w := range want {
		if cmds[i].width != w {
			t.Errorf("cmds[%d].width = %v, want %v", i, cmds[i].width, w)
		}
	}
}

func TestChildDrawsAfterParent(t *testing.T) {
	root := NewGroup("root", 0)
	parent := sizedSprite("parent", 10, 10)
	parent.AddChild(sizedSprite("child", 5, 5))
	root.AddChild(parent)

	cmds := collect(root, true)
	if len(cmds) != 2 || cmds[0].width != 10 || cmds[1].width != 5 {
		t.Fatalf("order = %+v", cmds)
	}
}

// --- Color ---

func TestAlphaMultipliesDownTheTree(t *testing.T) {
	root := NewGroup("root", 0)
	parent := NewGroup("parent", 0)
	parent.Alpha = 0.5
	child := sizedSprite("child", 4, 4)
	child.Alpha = 0.5
	child.Color = Color{R: 1, G: 0.5, B: 0, A: 1}
	parent.AddChild(child)
	root.AddChild(parent)

	cmds := collect(root, true)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d", len(cmds))
	}
	got := cmds[0].color
	if !approxEqual(got.A, 0.25, 1e-9) || got.R != 1 || got.G != 0.5 {
		t.Errorf("color = %+v, want R=1 G=0.5 A=0.25", got)
	}
}

func TestBlendModeCarried(t *testing.T) {
	root := NewGroup("root", 0)
	s := sizedSprite("s", 4, 4)
	s.BlendMode = BlendAdd
	root.AddChild(s)
	if cmds := collect(root, true); cmds[0].blend != BlendAdd {
		t.Errorf("blend = %v, want BlendAdd", cmds[0].blend)
	}
}

// --- Culling ---

func TestCullingDropsOffscreenSprites(t *testing.T) {
	root := NewGroup("root", 0)
	on := sizedSprite("on", 10, 10)
	off := sizedSprite("off", 10, 10)
	off.SetPosition(-500, -500)
	root.AddChild(on)
	root.AddChild(off)

	if got := len(collect(root, true)); got != 1 {
		t.Errorf("culled commands = %d, want 1", got)
	}
	if got := len(collect(root, false)); got != 2 {
		t.Errorf("unculled commands = %d, want 2", got)
	}
}

func TestShouldCullNeverCullsZeroSize(t *testing.T) {
	n := NewSprite("zero", nil)
	far := [6]float64{1, 0, 0, 1, -1e6, -1e6}
	if shouldCull(n, far, testViewport) {
		t.Error("zero-sized node culled")
	}
}

// --- Textures ---

func TestTexturePlacement(t *testing.T) {
	img := ebiten.NewImage(10, 20)
	tests := []struct {
		name string
		tex  *Texture
		want [6]float64
	}{
		{"plain", &Texture{Image: img}, identityTransform},
		{"trimmed", &Texture{Image: img, OffsetX: 3, OffsetY: 4}, [6]float64{1, 0, 0, 1, 3, 4}},
		{"rotated", &Texture{Image: img, Rotated: true}, [6]float64{0, -1, 1, 0, 0, 10}},
		{"rotated trimmed", &Texture{Image: img, Rotated: true, OffsetX: 2, OffsetY: 1}, [6]float64{0, -1, 1, 0, 2, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texturePlacement(tt.tex); got != tt.want {
				t.Errorf("placement = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTexturedSpriteComposesPlacement(t *testing.T) {
	img := ebiten.NewImage(8, 8)
	tex := &Texture{Image: img, Width: 12, Height: 12, OffsetX: 2, OffsetY: 2}
	root := NewGroup("root", 0)
	s := NewSprite("s", tex)
	s.SetPosition(100, 50)
	root.AddChild(s)

	cmds := collect(root, true)
	if len(cmds) != 1 || cmds[0].image != img {
		t.Fatalf("commands = %+v", cmds)
	}
	if cmds[0].geoM[4] != 102 || cmds[0].geoM[5] != 52 {
		t.Errorf("translation = (%v, %v), want (102, 52)", cmds[0].geoM[4], cmds[0].geoM[5])
	}
	if cmds[0].width != 12 || cmds[0].height != 12 {
		t.Errorf("size = %vx%v, want the logical 12x12", cmds[0].width, cmds[0].height)
	}
}

func TestCameraViewOffsetsCommands(t *testing.T) {
	root := NewGroup("root", 0)
	s := sizedSprite("s", 4, 4)
	s.SetPosition(50, 50)
	root.AddChild(s)
	updateWorldTransform(root, identityTransform, 1, false)

	view := [6]float64{1, 0, 0, 1, -40, -30}
	cmds := appendNode(nil, root, testViewport, view, true)
	if len(cmds) != 1 || cmds[0].geoM[4] != 10 || cmds[0].geoM[5] != 20 {
		t.Errorf("commands = %+v", cmds)
	}
}

func BenchmarkAppendNode1000(b *testing.B) {
	root := NewGroup("root", 0)
	for i := range 1000 {
		s := sizedSprite("s", 8, 8)
		s.SetPosition(float64(i%40)*20, float64(i/40)*20)
		root.AddChild(s)
	}
	updateWorldTransform(root, identityTransform, 1, false)
	var cmds []drawCommand
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		cmds = appendNode(cmds[:0], root, testViewport, identityTransform, true)
	}
}
