package ember

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// Run opens a window and runs a game with the given callbacks until the
// window closes, the game is destroyed or a state fails to start.
func Run(cfg Config, cb Callbacks) error {
	return run(cfg, func(h Host, cfg Config) *Game { return NewGame(h, cfg, cb) })
}

// RunState is Run with a state value or StateFactory as the first state.
func RunState(cfg Config, state any) error {
	return run(cfg, func(h Host, cfg Config) *Game { return NewGameWithState(h, cfg, state) })
}

func run(cfg Config, create func(Host, Config) *Game) error {
	cfg = cfg.withDefaults()
	h := newEbitenHost(cfg)
	g := create(h, cfg)
	h.game = g

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	// One Update per display refresh; the Game does its own fixed stepping.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	err := ebiten.RunGame(h)
	log := g.Logger()
	g.Destroy()
	_ = log.Sync()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// ebitenHost adapts Ebitengine to Host. The surface becomes ready on the
// first Update, so boot always goes through at least one retry timer.
type ebitenHost struct {
	cfg    Config
	game   *Game
	timers *TimerQueue
	tick   func()
	ready  bool
	input  ebitenInput

	audioCtx *audio.Context
	player   *audio.Player
}

func newEbitenHost(cfg Config) *ebitenHost {
	return &ebitenHost{
		cfg:    cfg,
		timers: NewTimerQueue(time.Now),
	}
}

func (h *ebitenHost) Ready() bool                      { return h.ready }
func (h *ebitenHost) After(d time.Duration, fn func()) { h.timers.After(d, fn) }
func (h *ebitenHost) StartFrames(tick func())          { h.tick = tick }
func (h *ebitenHost) StopFrames()                      { h.tick = nil }
func (h *ebitenHost) Now() time.Time                   { return time.Now() }
func (h *ebitenHost) InputSource() InputSource         { return &h.input }

// Update implements ebiten.Game.
func (h *ebitenHost) Update() error {
	h.ready = true
	h.timers.Advance(time.Now())
	if h.game.Destroyed() {
		return ebiten.Termination
	}
	h.attachAudio()
	if h.tick != nil {
		h.tick()
	}
	return h.game.Err()
}

// attachAudio starts the output player once the SoundManager exists.
func (h *ebitenHost) attachAudio() {
	if h.player != nil || !h.cfg.Audio.Enabled {
		return
	}
	sm := h.game.Sound()
	if sm == nil {
		return
	}
	h.audioCtx = audio.NewContext(h.cfg.Audio.SampleRate)
	p, err := h.audioCtx.NewPlayerF32(sm.Reader())
	if err != nil {
		h.game.Logger().Error("audio output unavailable", zap.Error(err))
		h.cfg.Audio.Enabled = false
		return
	}
	p.Play()
	h.player = p
}

// Draw implements ebiten.Game.
func (h *ebitenHost) Draw(screen *ebiten.Image) {
	if s := h.game.Stage(); s != nil {
		s.Present(screen)
	}
}

// Layout implements ebiten.Game.
func (h *ebitenHost) Layout(_, _ int) (int, int) {
	return h.cfg.Width, h.cfg.Height
}

// ebitenInput polls Ebitengine's mouse and keyboard. The first touch
// stands in for the left mouse button.
type ebitenInput struct {
	touches []ebiten.TouchID
}

func (in *ebitenInput) CursorPosition() (int, int) {
	in.touches = ebiten.AppendTouchIDs(in.touches[:0])
	if len(in.touches) > 0 {
		return ebiten.TouchPosition(in.touches[0])
	}
	return ebiten.CursorPosition()
}

func (in *ebitenInput) MouseButtonPressed(b MouseButton) bool {
	switch b {
	case MouseButtonLeft:
		return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || len(in.touches) > 0
	case MouseButtonMiddle:
		return ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	case MouseButtonRight:
		return ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	}
	return false
}

func (in *ebitenInput) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendPressedKeys(keys)
}
