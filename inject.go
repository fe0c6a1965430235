package ember

import "github.com/hajimehoshi/ebiten/v2"

// syntheticPointerEvent is one injected pointer sample in stage
// coordinates. Each one replaces the real pointer for a single tick.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

type syntheticKeyEvent struct {
	key     ebiten.Key
	pressed bool
}

// InjectPress queues a left-button press at (x, y).
func (h *InputHub) InjectPress(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectMove queues a pointer move to (x, y) with the button held. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (h *InputHub) InjectMove(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectRelease queues a button release at (x, y).
func (h *InputHub) InjectRelease(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: false, button: MouseButtonLeft})
}

// InjectClick queues a press and a release at (x, y). Consumes two ticks.
func (h *InputHub) InjectClick(x, y float64) {
	h.InjectPress(x, y)
	h.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves
// and a release at (toX, toY). Consumes frames ticks, at least 2.
func (h *InputHub) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	h.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		h.InjectMove(lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
	h.InjectRelease(toX, toY)
}

// InjectKey queues a key press or release. One key event is applied per tick.
func (h *InputHub) InjectKey(key ebiten.Key, pressed bool) {
	h.keyQueue = append(h.keyQueue, syntheticKeyEvent{key: key, pressed: pressed})
}

// InjectKeyTap queues a press and a release of key. Consumes two ticks.
func (h *InputHub) InjectKeyTap(key ebiten.Key) {
	h.InjectKey(key, true)
	h.InjectKey(key, false)
}

// Pending returns the number of queued synthetic events.
func (h *InputHub) Pending() int {
	return len(h.injectQueue) + len(h.keyQueue)
}

// nextInjected pops one synthetic pointer event.
func (h *InputHub) nextInjected() (x, y float64, pressed bool, button MouseButton, ok bool) {
	if len(h.injectQueue) == 0 {
		return 0, 0, false, 0, false
	}
	evt := h.injectQueue[0]
	copy(h.injectQueue, h.injectQueue[1:])
	h.injectQueue = h.injectQueue[:len(h.injectQueue)-1]
	return evt.x, evt.y, evt.pressed, evt.button, true
}
