package ember

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// EventType identifies an input edge reported to an EventSink.
type EventType uint8

const (
	EventPointerDown EventType = iota
	EventPointerUp
	EventPointerMove
	EventKeyDown
	EventKeyUp
)

func (t EventType) String() string {
	switch t {
	case EventPointerDown:
		return "pointer-down"
	case EventPointerUp:
		return "pointer-up"
	case EventPointerMove:
		return "pointer-move"
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	default:
		return "unknown"
	}
}

// KeyModifiers is a bitmask of held modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// InputEvent is one pointer or key edge. X and Y are stage coordinates;
// Time is the clock time in milliseconds.
type InputEvent struct {
	Type      EventType
	X, Y      float64
	Button    MouseButton
	Key       ebiten.Key
	Modifiers KeyModifiers
	Time      float64
}

// EventSink receives input edges as they are detected.
type EventSink interface {
	EmitEvent(InputEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(InputEvent)

// EmitEvent calls f(e).
func (f EventSinkFunc) EmitEvent(e InputEvent) { f(e) }

// Mouse is the polled pointer. Times are clock milliseconds.
type Mouse struct {
	X, Y   float64
	Button MouseButton

	IsDown   bool
	IsUp     bool
	TimeDown float64
	TimeUp   float64
	// Duration is how long the button has been held, or was held for the
	// last completed press.
	Duration float64
}

func newMouse() *Mouse {
	return &Mouse{IsUp: true}
}

// Reset releases the button without recording a press duration.
func (m *Mouse) Reset() {
	m.IsDown = false
	m.IsUp = true
}

// DefaultJustDuration is the window in milliseconds used by JustPressed
// and JustReleased when given a non-positive duration.
const DefaultJustDuration = 250

type keyState struct {
	down     bool
	timeDown float64
	timeUp   float64
}

// Keyboard is the polled key state.
type Keyboard struct {
	keys map[ebiten.Key]*keyState
	now  float64
}

func newKeyboard() *Keyboard {
	return &Keyboard{keys: make(map[ebiten.Key]*keyState)}
}

// IsDown reports whether key is held.
func (k *Keyboard) IsDown(key ebiten.Key) bool {
	s := k.keys[key]
	return s != nil && s.down
}

// JustPressed reports whether key went down within the last ms milliseconds
// and is still held.
func (k *Keyboard) JustPressed(key ebiten.Key, ms float64) bool {
	if ms <= 0 {
		ms = DefaultJustDuration
	}
	s := k.keys[key]
	return s != nil && s.down && k.now-s.timeDown <= ms
}

// JustReleased reports whether key came up within the last ms milliseconds.
func (k *Keyboard) JustReleased(key ebiten.Key, ms float64) bool {
	if ms <= 0 {
		ms = DefaultJustDuration
	}
	s := k.keys[key]
	return s != nil && !s.down && s.timeUp > 0 && k.now-s.timeUp <= ms
}

// Reset forgets every key.
func (k *Keyboard) Reset() {
	clear(k.keys)
}

func (k *Keyboard) modifiers() KeyModifiers {
	var mods KeyModifiers
	if k.IsDown(ebiten.KeyShiftLeft) || k.IsDown(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if k.IsDown(ebiten.KeyControlLeft) || k.IsDown(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if k.IsDown(ebiten.KeyAltLeft) || k.IsDown(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if k.IsDown(ebiten.KeyMetaLeft) || k.IsDown(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// InputHub polls the host's devices once per tick and exposes the mouse,
// the keyboard and the pointer position in stage coordinates.
type InputHub struct {
	X, Y     float64
	Mouse    *Mouse
	Keyboard *Keyboard

	source InputSource
	stage  *Stage
	clock  *Clock
	sink   EventSink

	injectQueue []syntheticPointerEvent
	keyQueue    []syntheticKeyEvent
	injectedKey map[ebiten.Key]bool
	script      *InputScript
	screenshot  func(label string)

	keyBuf  []ebiten.Key
	pressed map[ebiten.Key]bool
}

func newInputHub(source InputSource, stage *Stage, clock *Clock) *InputHub {
	return &InputHub{
		Mouse:       newMouse(),
		Keyboard:    newKeyboard(),
		source:      source,
		stage:       stage,
		clock:       clock,
		injectedKey: make(map[ebiten.Key]bool),
		pressed:     make(map[ebiten.Key]bool),
	}
}

// SetEventSink routes input edges to sink. nil disables routing.
func (h *InputHub) SetEventSink(sink EventSink) {
	h.sink = sink
}

func (h *InputHub) now() float64 {
	if h.clock == nil {
		return 0
	}
	return h.clock.NowMS()
}

// Update polls the devices, applying one queued synthetic pointer event
// in place of the real pointer when any are pending.
func (h *InputHub) Update() {
	if h.script != nil {
		h.script.step(h)
	}
	now := h.now()

	x, y, pressed, button, ok := h.nextInjected()
	if !ok {
		x, y, pressed, button = h.pollPointer()
	}
	h.applyKeys(now)
	h.applyPointer(x, y, pressed, button, now)

	h.X, h.Y = h.Mouse.X, h.Mouse.Y
	if h.Mouse.IsDown {
		h.Mouse.Duration = now - h.Mouse.TimeDown
	}
}

// pollPointer reads the real pointer relative to the stage.
func (h *InputHub) pollPointer() (x, y float64, pressed bool, button MouseButton) {
	if h.source == nil {
		return h.Mouse.X, h.Mouse.Y, false, h.Mouse.Button
	}
	cx, cy := h.source.CursorPosition()
	x, y = float64(cx), float64(cy)
	if h.stage != nil {
		x -= h.stage.X
		y -= h.stage.Y
	}
	// Keep the button captured at press time while held.
	if h.Mouse.IsDown && h.source.MouseButtonPressed(h.Mouse.Button) {
		return x, y, true, h.Mouse.Button
	}
	for _, b := range [...]MouseButton{MouseButtonLeft, MouseButtonRight, MouseButtonMiddle} {
		if h.source.MouseButtonPressed(b) {
			return x, y, true, b
		}
	}
	return x, y, false, h.Mouse.Button
}

func (h *InputHub) applyPointer(x, y float64, pressed bool, button MouseButton, now float64) {
	m := h.Mouse
	mods := h.Keyboard.modifiers()
	if x != m.X || y != m.Y {
		m.X, m.Y = x, y
		h.emit(InputEvent{Type: EventPointerMove, X: x, Y: y, Button: m.Button, Modifiers: mods, Time: now})
	}
	switch {
	case pressed && !m.IsDown:
		m.Button = button
		m.IsDown = true
		m.IsUp = false
		m.TimeDown = now
		m.Duration = 0
		h.emit(InputEvent{Type: EventPointerDown, X: x, Y: y, Button: button, Modifiers: mods, Time: now})
	case !pressed && m.IsDown:
		m.IsDown = false
		m.IsUp = true
		m.TimeUp = now
		m.Duration = m.TimeUp - m.TimeDown
		h.emit(InputEvent{Type: EventPointerUp, X: x, Y: y, Button: m.Button, Modifiers: mods, Time: now})
	}
}

func (h *InputHub) applyKeys(now float64) {
	if len(h.keyQueue) > 0 {
		ev := h.keyQueue[0]
		copy(h.keyQueue, h.keyQueue[1:])
		h.keyQueue = h.keyQueue[:len(h.keyQueue)-1]
		if ev.pressed {
			h.injectedKey[ev.key] = true
		} else {
			delete(h.injectedKey, ev.key)
		}
	}

	clear(h.pressed)
	if h.source != nil {
		h.keyBuf = h.source.AppendPressedKeys(h.keyBuf[:0])
		for _, k := range h.keyBuf {
			h.pressed[k] = true
		}
	}
	for k := range h.injectedKey {
		h.pressed[k] = true
	}

	kb := h.Keyboard
	kb.now = now
	for k := range h.pressed {
		s := kb.keys[k]
		if s == nil {
			s = &keyState{}
			kb.keys[k] = s
		}
		if !s.down {
			s.down = true
			s.timeDown = now
			h.emit(InputEvent{Type: EventKeyDown, X: h.Mouse.X, Y: h.Mouse.Y, Key: k, Modifiers: kb.modifiers(), Time: now})
		}
	}
	for k, s := range kb.keys {
		if s.down && !h.pressed[k] {
			s.down = false
			s.timeUp = now
			h.emit(InputEvent{Type: EventKeyUp, X: h.Mouse.X, Y: h.Mouse.Y, Key: k, Modifiers: kb.modifiers(), Time: now})
		}
	}
}

func (h *InputHub) emit(e InputEvent) {
	if h.sink != nil {
		h.sink.EmitEvent(e)
	}
}

// Reset releases the mouse and forgets every key. Queued synthetic input
// and the running script are kept.
func (h *InputHub) Reset() {
	h.Mouse.Reset()
	h.Keyboard.Reset()
	clear(h.injectedKey)
}
