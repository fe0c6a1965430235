package ember

import (
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
)

// SwitchOptions controls the teardown performed by SwitchStateWith.
// The zero value clears the World and keeps the Cache.
type SwitchOptions struct {
	// KeepWorld skips World teardown (and therefore Cache teardown).
	KeepWorld bool
	// ClearCache also empties the Cache. Ignored when KeepWorld is set.
	ClearCache bool
}

// Game owns the loop, the active state's callbacks and every engine
// subsystem. All methods must be called from the loop goroutine.
type Game struct {
	host Host
	cfg  Config
	log  *zap.Logger

	cb      callbacks
	pending any

	stage  *Stage
	world  *World
	sound  *SoundManager
	cache  *Cache
	loader *Loader
	time   *Clock
	input  *InputHub
	math   *GameMath

	// Fixed-step bookkeeping, all in milliseconds.
	step            float64
	accumulator     float64
	maxAccumulation float64

	isBooted     bool
	loadComplete bool
	paused       bool
	destroyed    bool
	err          error

	stats LoopStats
}

// NewGame creates a game on host and boots it as soon as the host is ready.
// The callbacks are the initial state; pass an empty Callbacks to boot into
// the init screen, or use NewGameWithState.
func NewGame(host Host, cfg Config, cb Callbacks) *Game {
	g := newGame(host, cfg)
	g.cb = cb.descriptor()
	g.boot()
	return g
}

// NewGameWithState creates a game whose first state is applied when boot
// completes, exactly as if SwitchState had been called before boot.
func NewGameWithState(host Host, cfg Config, state any) *Game {
	g := newGame(host, cfg)
	g.pending = state
	g.boot()
	return g
}

func newGame(host Host, cfg Config) *Game {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	if log == nil {
		var err error
		if log, err = NewLogger(cfg.Logging); err != nil {
			log = zap.NewNop()
		}
	}
	return &Game{
		host:            host,
		cfg:             cfg,
		log:             log,
		maxAccumulation: cfg.MaxAccumulation,
	}
}

// boot constructs the subsystems once the host surface is ready, retrying
// on a timer until it is.
func (g *Game) boot() {
	if g.destroyed {
		return
	}
	if !g.host.Ready() {
		g.log.Debug("surface not ready, boot deferred", zap.Duration("retry", g.cfg.BootRetry))
		g.host.After(g.cfg.BootRetry, g.boot)
		return
	}

	bg, err := ParseColor(g.cfg.BackgroundColor)
	if err != nil {
		g.log.Warn("invalid background color, using black", zap.Error(err))
		bg = Color{0, 0, 0, 1}
	}

	g.stage = newStage(g.cfg, bg, g.log.Named("stage"))
	g.world = newWorld(g.stage, g.log.Named("world"))
	g.world.debug = g.cfg.Debug
	g.sound = newSoundManager(g.cfg.Audio, g.log.Named("sound"))
	g.cache = newCache()
	g.loader = newLoader(g.cache, g.cfg.AssetRoot, g.onLoadComplete, g.log.Named("loader"))
	g.time = newClock(g.host.Now, g.cfg.TimeScale)
	g.input = newInputHub(g.host.InputSource(), g.stage, g.time)
	g.math = newGameMath(g.cfg.Seed, g.host.Now)

	// Late links for subsystems built before their dependencies.
	g.world.link(g.time, g.math, g.cache)
	g.sound.link(g.cache)
	g.input.screenshot = g.stage.Screenshot

	g.step = 1000 / g.cfg.Framerate
	if g.maxAccumulation < g.step {
		g.maxAccumulation = g.step
	}

	if g.cb.empty() && g.pending == nil {
		g.isBooted = false
		g.stage.DrawInitScreen()
		g.log.Info("booted without a state, showing init screen")
		return
	}

	g.isBooted = true
	g.loadComplete = false
	g.host.StartFrames(g.Tick)
	g.log.Info("booted",
		zap.Int("width", g.cfg.Width),
		zap.Int("height", g.cfg.Height),
		zap.Float64("framerate", g.Framerate()))

	if g.pending != nil {
		state := g.pending
		g.pending = nil
		if err := g.SwitchStateWith(state, SwitchOptions{KeepWorld: true}); err != nil {
			g.err = err
			g.log.Error("pending state rejected", zap.Error(err))
		}
		return
	}
	g.startState()
}

// Tick runs one loop iteration. The host's frame driver calls it once per
// display refresh.
func (g *Game) Tick() {
	if g.destroyed || g.err != nil {
		return
	}

	if g.paused {
		g.stats.PausedTicks++
		if g.cb.paused != nil {
			g.cb.paused()
		}
		return
	}

	g.time.Update()
	g.input.Update()
	g.stage.Update()
	g.loader.Update()

	g.accumulator += g.time.Delta
	if g.accumulator > g.maxAccumulation {
		dropped := g.accumulator - g.maxAccumulation
		g.accumulator = g.maxAccumulation
		g.stats.DroppedMS += dropped
		if g.cfg.Debug {
			g.log.Debug("stall clamped", zap.Float64("dropped_ms", dropped))
		}
	}

	steps := 0
	for g.accumulator >= g.step {
		g.time.Elapsed = g.time.TimeScale * (g.step / 1000)
		g.world.Update()
		// A node hook may have destroyed the game.
		if g.destroyed {
			return
		}
		g.accumulator -= g.step
		steps++
	}
	g.stats.Ticks++
	g.stats.SubSteps += uint64(steps)
	g.stats.LastSubSteps = steps
	if g.cfg.Debug && g.stats.Ticks%debugStatsInterval == 0 {
		g.logStats()
	}

	if g.loadComplete && g.cb.update != nil {
		g.cb.update()
		if g.destroyed {
			return
		}
	}

	g.world.Render()

	if g.loadComplete && g.cb.render != nil {
		g.cb.render()
	}
}

// startState runs init when present; otherwise runs create and marks the
// load as complete since there was nothing to load.
func (g *Game) startState() {
	if g.cb.init != nil {
		g.cb.init()
		return
	}
	if g.cb.create != nil {
		g.cb.create()
	}
	g.loadComplete = true
}

// onLoadComplete is the Loader's completion handler.
func (g *Game) onLoadComplete() {
	g.loadComplete = true
	g.log.Debug("load complete")
}

// SetCallbacks replaces the init, create, update and render bindings and
// the callback context. No lifecycle callback is run and the paused
// binding is left alone.
func (g *Game) SetCallbacks(cb Callbacks) {
	g.cb.context = cb.Context
	g.cb.init = cb.Init
	g.cb.create = cb.Create
	g.cb.update = cb.Update
	g.cb.render = cb.Render
}

// SwitchState installs state, clearing the World but keeping the Cache.
// See SwitchStateWith.
func (g *Game) SwitchState(state any) error {
	return g.SwitchStateWith(state, SwitchOptions{})
}

// SwitchStateWith installs state and runs its start protocol.
//
// Before boot the request is stored and applied when boot completes. A
// StateFactory (or func(*Game) any) is called with the game to build the
// instance. The state must provide Create or Update, otherwise
// ErrInvalidState is returned and nothing changes. Every callback of the
// previous state is dropped.
func (g *Game) SwitchStateWith(state any, opts SwitchOptions) error {
	if !g.isBooted {
		g.pending = state
		if g.stage != nil {
			g.log.Warn("state requested after an init-screen boot; it will not start")
		}
		return nil
	}

	switch f := state.(type) {
	case StateFactory:
		state = f(g)
	case func(*Game) any:
		state = f(g)
	}

	d := describeState(state)
	if !d.valid() {
		return fmt.Errorf("%w: got %T", ErrInvalidState, state)
	}

	prev := g.cb.context
	g.cb = d
	closeContext(prev, d.context)

	if !opts.KeepWorld {
		g.world.Destroy()
		if opts.ClearCache {
			g.cache.Destroy()
		}
	}
	g.loader.Reset()
	g.loadComplete = false

	g.log.Info("state switched",
		zap.String("state", fmt.Sprintf("%T", state)),
		zap.Bool("clear_world", !opts.KeepWorld),
		zap.Bool("clear_cache", !opts.KeepWorld && opts.ClearCache))

	g.startState()
	return nil
}

// Destroy releases every subsystem and callback. Scheduled boot retries and
// frame ticks become no-ops.
func (g *Game) Destroy() {
	if g.destroyed {
		return
	}
	g.host.StopFrames()
	if g.sound != nil {
		g.sound.StopAll()
	}
	if g.loader != nil {
		g.loader.Reset()
	}

	closeContext(g.cb.context, nil)
	g.cb = callbacks{}
	g.pending = nil
	g.stage = nil
	g.world = nil
	g.sound = nil
	g.cache = nil
	g.loader = nil
	g.time = nil
	g.input = nil
	g.math = nil
	g.isBooted = false
	g.destroyed = true
	g.log.Info("destroyed")
}

// closeContext releases prev when it owns resources, such as a script VM,
// unless it is being reinstalled as next.
func closeContext(prev, next any) {
	if prev == nil {
		return
	}
	if reflect.TypeOf(prev).Comparable() && prev == next {
		return
	}
	switch c := prev.(type) {
	case io.Closer:
		_ = c.Close()
	case interface{ Close() }:
		c.Close()
	}
}

// Paused reports whether the loop is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes the loop. Resuming resynchronizes the clock
// so the paused duration is not simulated, and resets the input devices.
// Setting the current value does nothing.
func (g *Game) SetPaused(paused bool) {
	switch {
	case paused && !g.paused:
		g.paused = true
		g.log.Debug("paused")
	case !paused && g.paused:
		g.paused = false
		if g.time != nil {
			g.time.Resync()
		}
		if g.input != nil {
			g.input.Reset()
		}
		g.log.Debug("resumed")
	}
}

// Framerate returns the fixed update rate, 1000/step. Before boot it is
// Config.Framerate.
func (g *Game) Framerate() float64 {
	if g.step == 0 {
		return g.cfg.Framerate
	}
	return 1000 / g.step
}

// SetFramerate sets the fixed update rate. maxAccumulation is raised when
// the new step is longer than it.
func (g *Game) SetFramerate(fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFramerate, fps)
	}
	g.cfg.Framerate = fps
	g.step = 1000 / fps
	if g.maxAccumulation < g.step {
		g.maxAccumulation = g.step
	}
	g.log.Debug("framerate set", zap.Float64("fps", fps), zap.Float64("step_ms", g.step))
	return nil
}

// MaxAccumulation returns the catch-up cap in milliseconds.
func (g *Game) MaxAccumulation() float64 {
	return g.maxAccumulation
}

// SetMaxAccumulation sets the catch-up cap, never below one step.
func (g *Game) SetMaxAccumulation(ms float64) {
	if ms < g.step {
		ms = g.step
	}
	g.maxAccumulation = ms
}

// Step returns the fixed step length in milliseconds.
func (g *Game) Step() float64 { return g.step }

// Context returns the receiver of the active callbacks.
func (g *Game) Context() any { return g.cb.context }

// IsBooted reports whether boot finished and the loop is running.
func (g *Game) IsBooted() bool { return g.isBooted }

// LoadComplete reports whether the active state finished loading.
func (g *Game) LoadComplete() bool { return g.loadComplete }

// Err returns the error that stopped the loop, if any.
func (g *Game) Err() error { return g.err }

// Destroyed reports whether Destroy has been called.
func (g *Game) Destroyed() bool { return g.destroyed }

// Stats returns loop counters.
func (g *Game) Stats() LoopStats { return g.stats }

// Config returns the effective configuration.
func (g *Game) Config() Config { return g.cfg }

// Logger returns the game's logger.
func (g *Game) Logger() *zap.Logger { return g.log }

func (g *Game) Stage() *Stage        { return g.stage }
func (g *Game) World() *World        { return g.world }
func (g *Game) Sound() *SoundManager { return g.sound }
func (g *Game) Cache() *Cache        { return g.cache }
func (g *Game) Loader() *Loader      { return g.loader }
func (g *Game) Time() *Clock         { return g.time }
func (g *Game) Input() *InputHub     { return g.input }
func (g *Game) Math() *GameMath      { return g.math }

// Camera returns the world's current camera, or nil before boot.
func (g *Game) Camera() *Camera {
	if g.world == nil {
		return nil
	}
	return g.world.Cameras.Current
}

// --- World proxies ---

// CreateCamera adds a camera with the given viewport.
func (g *Game) CreateCamera(x, y, width, height float64) *Camera {
	return g.world.CreateCamera(x, y, width, height)
}

// CreateSprite adds a sprite using the cached texture key ("" for a solid box).
func (g *Game) CreateSprite(x, y float64, key string) *Node {
	return g.world.CreateSprite(x, y, key)
}

// CreateGroup adds a group limited to maxSize members (0 is unlimited).
func (g *Game) CreateGroup(maxSize int) *Node {
	return g.world.CreateGroup(maxSize)
}

// CreateParticle adds a particle sprite.
func (g *Game) CreateParticle() *Node {
	return g.world.CreateParticle()
}

// CreateEmitter adds a particle emitter at (x, y) with a pool of size particles.
func (g *Game) CreateEmitter(x, y float64, size int) *Node {
	return g.world.CreateEmitter(x, y, size)
}

// CreateTilemap parses mapData and adds a tilemap drawn from the tileset key.
func (g *Game) CreateTilemap(key, mapData string, format TilemapFormat, tileWidth, tileHeight int) (*Node, error) {
	return g.world.CreateTilemap(key, mapData, format, tileWidth, tileHeight)
}

// Collide reports whether a and b overlap, calling notify for each
// overlapping pair. nil stands for the whole world.
func (g *Game) Collide(a, b *Node, notify func(a, b *Node)) bool {
	return g.world.Overlap(a, b, notify)
}
