package ecs

import (
	"github.com/phanxgames/ember"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InputEventType is the Donburi event type for ember input edges.
var InputEventType = events.NewEventType[ember.InputEvent]()

// Pointer is the latest pointer state seen by a Sink.
type Pointer struct {
	X, Y   float64
	Down   bool
	Button ember.MouseButton
	// Presses counts pointer-down edges.
	Presses int
}

// PointerComponent holds the Pointer of the sink's entity.
var PointerComponent = donburi.NewComponentType[Pointer]()

// Sink publishes input events into a Donburi world.
type Sink struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDonburiSink creates an EventSink backed by world. Events are queued on
// InputEventType until the world processes them; the pointer entity is
// updated immediately.
func NewDonburiSink(world donburi.World) *Sink {
	return &Sink{
		world:  world,
		entity: world.Create(PointerComponent),
	}
}

var _ ember.EventSink = (*Sink)(nil)

// Entity returns the entity carrying PointerComponent.
func (s *Sink) Entity() donburi.Entity {
	return s.entity
}

// EmitEvent implements ember.EventSink.
func (s *Sink) EmitEvent(e ember.InputEvent) {
	if entry := s.world.Entry(s.entity); entry.Valid() {
		p := PointerComponent.Get(entry)
		switch e.Type {
		case ember.EventPointerMove:
			p.X, p.Y = e.X, e.Y
		case ember.EventPointerDown:
			p.X, p.Y = e.X, e.Y
			p.Down = true
			p.Button = e.Button
			p.Presses++
		case ember.EventPointerUp:
			p.X, p.Y = e.X, e.Y
			p.Down = false
		}
	}
	InputEventType.Publish(s.world, e)
}
