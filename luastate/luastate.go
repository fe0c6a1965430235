// Package luastate runs ember game states written in Lua.
//
// A Lua state is a table whose optional init, create, update, render and
// paused functions become lifecycle callbacks, each called with the table
// as self. A global game table exposes loop control to the script:
//
//	local state = {}
//	function state:create() self.x = game.create_sprite(10, 10, "ship") end
//	function state:update() if game.elapsed() > 0 then self.x:move(1, 0) end end
//	return state
package luastate

import (
	"errors"
	"fmt"

	"github.com/phanxgames/ember"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

var callbackNames = [...]string{"init", "create", "update", "render", "paused"}

// State adapts a Lua table to ember's callback model. Single-goroutine
// access only (the game loop).
type State struct {
	L      *lua.LState
	table  *lua.LTable
	game   *ember.Game
	log    *zap.Logger
	err    error
	owned  bool
	closed bool
}

// New wraps table, which must live in L.
func New(L *lua.LState, table *lua.LTable, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{L: L, table: table, log: log}
}

// Load runs src in L and wraps the table the chunk returns.
func Load(L *lua.LState, src string, log *zap.Logger) (*State, error) {
	top := L.GetTop()
	fn, err := L.LoadString(src)
	if err != nil {
		return nil, fmt.Errorf("compile lua state: %w", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("run lua state: %w", err)
	}
	ret := L.Get(-1)
	L.SetTop(top)
	t, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua state chunk returned %s, want table", ret.Type())
	}
	return New(L, t, log), nil
}

// Factory compiles src in a fresh VM each time the game switches to it.
// A script that fails to load yields a nil state, which SwitchState
// rejects with ember.ErrInvalidState.
func Factory(src string, log *zap.Logger) ember.StateFactory {
	return func(g *ember.Game) any {
		l := log
		if l == nil {
			l = g.Logger().Named("lua")
		}
		L := lua.NewState()
		s, err := Load(L, src, l)
		if err != nil {
			L.Close()
			l.Error("lua state failed to load", zap.Error(err))
			return nil
		}
		s.owned = true
		s.Bind(g)
		return s
	}
}

// Bind installs the game table for g in the state's VM.
func (s *State) Bind(g *ember.Game) {
	s.game = g
	s.L.SetGlobal("game", s.gameTable())
	registerNodeType(s.L)
}

// Table returns the wrapped Lua table.
func (s *State) Table() *lua.LTable {
	return s.table
}

// Err returns the first error raised by a callback.
func (s *State) Err() error {
	return s.err
}

// Close shuts the VM down when it was created by Factory. The game calls
// it when switching away from the state or on Destroy; later calls do
// nothing.
func (s *State) Close() {
	if s.owned {
		s.owned = false
		s.closed = true
		s.L.Close()
	}
}

// Closed reports whether Close shut down an owned VM.
func (s *State) Closed() bool {
	return s.closed
}

// Callbacks implements ember.CallbackProvider. Only functions present in
// the table are bound.
func (s *State) Callbacks() ember.Callbacks {
	cb := ember.Callbacks{Context: s}
	for _, name := range callbackNames {
		fn, ok := s.table.RawGetString(name).(*lua.LFunction)
		if !ok {
			continue
		}
		call := s.caller(name, fn)
		switch name {
		case "init":
			cb.Init = call
		case "create":
			cb.Create = call
		case "update":
			cb.Update = call
		case "render":
			cb.Render = call
		case "paused":
			cb.Paused = call
		}
	}
	return cb
}

// caller wraps fn as a protected call with the table as self. After the
// first error the state stops calling into Lua.
func (s *State) caller(name string, fn *lua.LFunction) func() {
	return func() {
		if s.err != nil {
			return
		}
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, s.table); err != nil {
			s.err = fmt.Errorf("lua %s: %w", name, err)
			s.log.Error("lua callback failed", zap.String("callback", name), zap.Error(err))
		}
	}
}

func (s *State) gameTable() *lua.LTable {
	L := s.L
	g := s.game
	t := L.NewTable()
	L.SetFuncs(t, map[string]lua.LGFunction{
		"pause": func(L *lua.LState) int {
			g.SetPaused(true)
			return 0
		},
		"resume": func(L *lua.LState) int {
			g.SetPaused(false)
			return 0
		},
		"is_paused": func(L *lua.LState) int {
			L.Push(lua.LBool(g.Paused()))
			return 1
		},
		"framerate": func(L *lua.LState) int {
			L.Push(lua.LNumber(g.Framerate()))
			return 1
		},
		"set_framerate": func(L *lua.LState) int {
			if err := g.SetFramerate(float64(L.CheckNumber(1))); err != nil {
				if errors.Is(err, ember.ErrInvalidFramerate) {
					L.ArgError(1, err.Error())
				}
				L.RaiseError("%v", err)
			}
			return 0
		},
		"elapsed": func(L *lua.LState) int {
			var v float64
			if c := g.Time(); c != nil {
				v = c.Elapsed
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"delta": func(L *lua.LState) int {
			var v float64
			if c := g.Time(); c != nil {
				v = c.Delta
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"create_sprite": func(L *lua.LState) int {
			n := g.CreateSprite(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), L.OptString(3, ""))
			L.Push(wrapNode(L, n))
			return 1
		},
		"create_group": func(L *lua.LState) int {
			n := g.CreateGroup(L.OptInt(1, 0))
			L.Push(wrapNode(L, n))
			return 1
		},
		"log": func(L *lua.LState) int {
			s.log.Info(L.CheckString(1))
			return 0
		},
	})
	return t
}
