// Package ember is a 2D game framework for [Ebitengine] built around a
// fixed-timestep game loop and swappable states.
//
// # Quick start
//
// [Run] opens a window and drives a game from plain callbacks:
//
//	cfg := ember.DefaultConfig()
//	cfg.Title = "My Game"
//	ember.Run(cfg, ember.Callbacks{
//		Create: func() { ... },
//		Update: func() { ... },
//	})
//
// [RunState] takes a state value instead. A state is any value with some of
// the methods Init, Create, Update, Render and Paused; a [StateFactory]
// builds one bound to the running [Game]:
//
//	ember.RunState(cfg, ember.StateFactory(func(g *ember.Game) any {
//		return &playState{game: g}
//	}))
//
// # Loop
//
// Each display refresh runs one tick. A tick updates the clock, input,
// stage and loader, then steps the [World] as many times as the
// accumulated time allows at [Game.Framerate] steps per second. Time
// beyond [Game.MaxAccumulation] is dropped so a stall cannot cause a burst
// of catch-up steps. After stepping, the state's Update runs, the World
// renders, and the state's Render runs. Update and Render only run once the
// state's assets have loaded.
//
// While [Game.Paused] is true the tick only calls the state's Paused.
//
// # States
//
// [Game.SwitchState] replaces the running state. The World is cleared, the
// loader is reset, and the new state's Init runs when present; otherwise
// Create runs immediately. A state with Init queues files on [Game.Loader]
// and starts it; Create does not run by itself after loading, so states
// typically call it from their load completion.
//
// # World
//
// The World holds a tree of [Node] values: groups, sprites, particles,
// emitters and tilemaps. Nodes carry a velocity integrated every fixed
// step, and [TweenGroup] values handed to [World.Tween] advance with it.
// Cameras render the tree into stage rectangles.
//
// # Assets
//
// [Loader] reads images, text, data, WAV sounds and TexturePacker atlases
// from an [io/fs.FS] on worker goroutines and commits them to the [Cache]
// on the loop goroutine. Files can also be listed in a YAML [Manifest].
//
// # Input
//
// [InputHub] polls the pointer and keyboard once per tick. Input can be
// injected programmatically or replayed from a JSON [InputScript], and
// every press and release can be forwarded to an [EventSink] such as the
// Donburi bridge in ember/ecs.
//
// [Ebitengine]: https://ebitengine.org
package ember
