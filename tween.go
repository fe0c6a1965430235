package ember

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenTrack drives one float64 field.
type tweenTrack struct {
	tween *gween.Tween
	field *float64
}

// TweenGroup eases up to four fields of one Node to target values over the
// same duration. Advance it with Update, or pass it to World.Tween to have
// every fixed step advance it. A group whose node is disposed stops without
// writing.
type TweenGroup struct {
	Done bool
	// Delay is how many seconds Update waits before the fields move.
	Delay float32
	// OnComplete runs once when the group finishes normally.
	OnComplete func()

	tracks [4]tweenTrack
	n      int
	target *Node
}

func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, fields []*float64, to []float64) *TweenGroup {
	g := &TweenGroup{target: node, n: len(fields)}
	for i, f := range fields {
		g.tracks[i] = tweenTrack{tween: gween.New(float32(*f), float32(to[i]), duration, fn), field: f}
	}
	return g
}

// Update advances the group by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}
	if g.Delay > 0 {
		g.Delay -= dt
		if g.Delay > 0 {
			return
		}
		dt = -g.Delay
		g.Delay = 0
	}

	finished := true
	for _, tr := range g.tracks[:g.n] {
		v, done := tr.tween.Update(dt)
		*tr.field = float64(v)
		finished = finished && done
	}
	if g.target != nil {
		g.target.transformDirty = true
	}
	if finished {
		g.Done = true
		if g.OnComplete != nil {
			g.OnComplete()
		}
	}
}

// TweenPosition eases node.X and node.Y to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.X, &node.Y}, []float64{toX, toY})
}

// TweenScale eases node.ScaleX and node.ScaleY.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.ScaleX, &node.ScaleY}, []float64{toSX, toSY})
}

// TweenColor eases every component of node.Color, alpha included.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := &node.Color
	return newTweenGroup(node, duration, fn,
		[]*float64{&c.R, &c.G, &c.B, &c.A},
		[]float64{to.R, to.G, to.B, to.A})
}

// TweenAlpha eases node.Alpha.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Alpha}, []float64{to})
}

// TweenRotation eases node.Rotation, in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Rotation}, []float64{to})
}

// tweens holds the groups the World advances each step.
type tweens struct {
	active []*TweenGroup
}

func (t *tweens) add(g *TweenGroup) {
	t.active = append(t.active, g)
}

// update advances every group, then forgets the finished ones. Groups added
// by an OnComplete callback start on the next step.
func (t *tweens) update(dt float32) {
	running := t.active
	for _, g := range running {
		g.Update(dt)
	}
	kept := t.active[:0]
	for _, g := range t.active {
		if !g.Done {
			kept = append(kept, g)
		}
	}
	clear(t.active[len(kept):])
	t.active = kept
}

func (t *tweens) clear() {
	t.active = nil
}

func (t *tweens) len() int {
	return len(t.active)
}
