// Package ecs bridges ember input into a [Donburi] world.
//
// [NewDonburiSink] publishes every pointer and key edge as a typed event
// and mirrors the pointer into a singleton entity:
//
//	sink := ecs.NewDonburiSink(world)
//	game.Input().SetEventSink(sink)
//
// Systems subscribe to [InputEventType] and call ProcessEvents, or read
// [PointerComponent] from the entity returned by Sink.Entity.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
