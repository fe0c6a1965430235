package ember

// Callbacks is an explicit set of lifecycle callbacks. Every field is
// optional. Context is the receiver the callbacks were bound to; it is
// reported by Game.Context while the callbacks are active.
//
// A Callbacks value (or pointer) can be passed to SwitchState directly.
type Callbacks struct {
	Context any
	Init    func()
	Create  func()
	Update  func()
	Render  func()
	Paused  func()
}

// CallbackProvider lets a state describe its own callbacks instead of
// having its methods probed.
type CallbackProvider interface {
	Callbacks() Callbacks
}

// StateFactory builds a state bound to the game that will run it.
type StateFactory func(g *Game) any

// Optional state capabilities probed by SwitchState.
type (
	Initializer  interface{ Init() }
	Creator      interface{ Create() }
	Updater      interface{ Update() }
	Renderer     interface{ Render() }
	PauseHandler interface{ Paused() }
)

// callbacks is the capability descriptor built once per switch.
type callbacks struct {
	context any
	init    func()
	create  func()
	update  func()
	render  func()
	paused  func()
}

func (c Callbacks) descriptor() callbacks {
	return callbacks{
		context: c.Context,
		init:    c.Init,
		create:  c.Create,
		update:  c.Update,
		render:  c.Render,
		paused:  c.Paused,
	}
}

// describeState extracts the callbacks a state exposes.
func describeState(state any) callbacks {
	switch s := state.(type) {
	case nil:
		return callbacks{}
	case Callbacks:
		return s.descriptor()
	case *Callbacks:
		if s == nil {
			return callbacks{}
		}
		return s.descriptor()
	case CallbackProvider:
		d := s.Callbacks().descriptor()
		if d.context == nil {
			d.context = state
		}
		return d
	}

	d := callbacks{context: state}
	if s, ok := state.(Initializer); ok {
		d.init = s.Init
	}
	if s, ok := state.(Creator); ok {
		d.create = s.Create
	}
	if s, ok := state.(Updater); ok {
		d.update = s.Update
	}
	if s, ok := state.(Renderer); ok {
		d.render = s.Render
	}
	if s, ok := state.(PauseHandler); ok {
		d.paused = s.Paused
	}
	return d
}

// valid reports whether the state can run: it needs create or update.
func (c callbacks) valid() bool {
	return c.create != nil || c.update != nil
}

// empty reports whether no lifecycle callback is bound.
func (c callbacks) empty() bool {
	return c.init == nil && c.create == nil && c.update == nil && c.render == nil
}
