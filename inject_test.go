package ember

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestInjectClick(t *testing.T) {
	h, _, mt, sink := newTestHub()
	h.InjectClick(40, 60)
	if h.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", h.Pending())
	}
	tickHub(h, mt, 10)
	if !h.Mouse.IsDown || h.X != 40 || h.Y != 60 {
		t.Errorf("after press: down = %v, pointer = (%v,%v)", h.Mouse.IsDown, h.X, h.Y)
	}
	tickHub(h, mt, 10)
	if h.Mouse.IsDown || h.Pending() != 0 {
		t.Errorf("after release: down = %v, pending = %d", h.Mouse.IsDown, h.Pending())
	}
	want := []EventType{EventPointerMove, EventPointerDown, EventPointerUp}
	if got := sink.types(); len(got) != 3 || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestInjectOverridesRealPointer(t *testing.T) {
	h, in, mt, _ := newTestHub()
	in.x, in.y = 300, 200
	h.InjectPress(1, 2)
	tickHub(h, mt, 10)
	if h.X != 1 || h.Y != 2 {
		t.Errorf("pointer = (%v,%v), want the injected (1,2)", h.X, h.Y)
	}
	tickHub(h, mt, 10)
	if h.X != 300 || h.Y != 200 {
		t.Errorf("pointer = (%v,%v), want the real (300,200)", h.X, h.Y)
	}
}

func TestInjectDrag(t *testing.T) {
	h, _, mt, _ := newTestHub()
	h.InjectDrag(0, 0, 100, 50, 6)
	if h.Pending() != 6 {
		t.Fatalf("Pending = %d, want 6", h.Pending())
	}
	var xs []float64
	for h.Pending() > 0 {
		tickHub(h, mt, 10)
		xs = append(xs, h.X)
	}
	want := []float64{0, 20, 40, 60, 80, 100}
	for i := range want {
		if !approxEqual(xs[i], want[i], 1e-9) {
			t.Errorf("xs = %v, want %v", xs, want)
			break
		}
	}
	if h.Mouse.IsDown {
		t.Error("drag left the button down")
	}
}

func TestInjectDragMinimumFrames(t *testing.T) {
	h, _, _, _ := newTestHub()
	h.InjectDrag(0, 0, 10, 10, 0)
	if h.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", h.Pending())
	}
}

func TestInjectKeyTap(t *testing.T) {
	h, _, mt, sink := newTestHub()
	h.InjectKeyTap(ebiten.KeyEnter)
	tickHub(h, mt, 10)
	if !h.Keyboard.IsDown(ebiten.KeyEnter) {
		t.Fatal("injected key not down")
	}
	tickHub(h, mt, 10)
	if h.Keyboard.IsDown(ebiten.KeyEnter) {
		t.Error("injected key still down")
	}
	if got := sink.types(); len(got) != 2 || got[0] != EventKeyDown || got[1] != EventKeyUp {
		t.Errorf("events = %v", got)
	}
}
