package ember

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// scriptStep is one entry of an input script file. Which fields matter
// depends on Action.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Key    string  `json:"key,omitempty"`
	Label  string  `json:"label,omitempty"`

	key ebiten.Key
}

// scriptActions runs a step against the hub and returns how many further
// ticks the script should idle.
var scriptActions = map[string]func(h *InputHub, st *scriptStep) int{
	"click":   func(h *InputHub, st *scriptStep) int { h.InjectClick(st.X, st.Y); return 0 },
	"press":   func(h *InputHub, st *scriptStep) int { h.InjectPress(st.X, st.Y); return 0 },
	"release": func(h *InputHub, st *scriptStep) int { h.InjectRelease(st.X, st.Y); return 0 },
	"drag": func(h *InputHub, st *scriptStep) int {
		h.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
		return 0
	},
	"key": func(h *InputHub, st *scriptStep) int { h.InjectKeyTap(st.key); return 0 },
	// The tick that reads a wait counts toward it.
	"wait": func(_ *InputHub, st *scriptStep) int { return max(st.Frames-1, 0) },
	"screenshot": func(h *InputHub, st *scriptStep) int {
		if h.screenshot != nil {
			h.screenshot(st.Label)
		}
		return 0
	},
}

// InputScript replays synthetic input, waits and screenshots from JSON:
//
//	{"steps": [
//		{"action": "click", "x": 100, "y": 200},
//		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 50, "toY": 0, "frames": 5},
//		{"action": "key", "key": "Space"},
//		{"action": "wait", "frames": 30},
//		{"action": "screenshot", "label": "after-jump"}
//	]}
//
// The hub advances an attached script once per tick, only after earlier
// injected input has been consumed.
type InputScript struct {
	steps []scriptStep
	next  int
	idle  int
	done  bool
}

// LoadInputScript parses and checks a script; unknown actions and key
// names are errors.
func LoadInputScript(data []byte) (*InputScript, error) {
	var file struct {
		Steps []scriptStep `json:"steps"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i := range file.Steps {
		st := &file.Steps[i]
		if _, ok := scriptActions[st.Action]; !ok {
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action != "key" {
			continue
		}
		if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
			return nil, fmt.Errorf("parse input script: step %d: %w", i, err)
		}
	}
	return &InputScript{steps: file.Steps}, nil
}

// SetScript attaches script, replacing any current one. nil detaches.
func (h *InputHub) SetScript(script *InputScript) {
	h.script = script
}

func (r *InputScript) Done() bool {
	return r.done
}

func (r *InputScript) step(h *InputHub) {
	if r.done || h.Pending() > 0 {
		return
	}
	if r.idle > 0 {
		r.idle--
		return
	}
	if r.next == len(r.steps) {
		r.done = true
		return
	}
	st := &r.steps[r.next]
	r.next++
	r.idle = scriptActions[st.Action](h, st)
	r.done = r.next == len(r.steps) && r.idle == 0 && h.Pending() == 0
}
