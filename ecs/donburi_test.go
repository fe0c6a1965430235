package ecs

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/ember"

	"github.com/yohamta/donburi"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
	if !world.Valid(sink.Entity()) {
		t.Fatal("pointer entity not created")
	}
}

func TestSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []ember.InputEvent
	InputEventType.Subscribe(world, func(w donburi.World, e ember.InputEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(ember.InputEvent{
		Type:   ember.EventPointerDown,
		X:      100,
		Y:      200,
		Button: ember.MouseButtonLeft,
	})
	sink.EmitEvent(ember.InputEvent{
		Type: ember.EventKeyDown,
		Key:  ebiten.KeySpace,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("received %d events before ProcessEvents", len(received))
	}
	InputEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != ember.EventPointerDown || e0.X != 100 || e0.Y != 200 {
		t.Errorf("event 0: %+v", e0)
	}
	if e1 := received[1]; e1.Type != ember.EventKeyDown || e1.Key != ebiten.KeySpace {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestSink_PointerComponent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	sink.EmitEvent(ember.InputEvent{Type: ember.EventPointerMove, X: 5, Y: 6})
	sink.EmitEvent(ember.InputEvent{Type: ember.EventPointerDown, X: 7, Y: 8, Button: ember.MouseButtonRight})

	p := PointerComponent.Get(world.Entry(sink.Entity()))
	if p.X != 7 || p.Y != 8 || !p.Down || p.Button != ember.MouseButtonRight || p.Presses != 1 {
		t.Errorf("after down: %+v", *p)
	}

	sink.EmitEvent(ember.InputEvent{Type: ember.EventPointerUp, X: 9, Y: 10})
	p = PointerComponent.Get(world.Entry(sink.Entity()))
	if p.Down || p.X != 9 || p.Presses != 1 {
		t.Errorf("after up: %+v", *p)
	}
}

func TestSink_KeyEventsLeavePointer(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	sink.EmitEvent(ember.InputEvent{Type: ember.EventPointerMove, X: 3, Y: 4})
	sink.EmitEvent(ember.InputEvent{Type: ember.EventKeyDown, X: 50, Y: 50, Key: ebiten.KeyA})

	p := PointerComponent.Get(world.Entry(sink.Entity()))
	if p.X != 3 || p.Y != 4 {
		t.Errorf("key event moved pointer: %+v", *p)
	}
}
