package ember

import (
	"math"
	"strconv"
	"testing"
)

// steadyConfig emits 100 particles per second that fly right at 100 px/s,
// live one second and fade from white to black.
func steadyConfig(size int) EmitterConfig {
	return EmitterConfig{
		MaxParticles: size,
		EmitRate:     100,
		Lifetime:     Range{1, 1},
		Speed:        Range{100, 100},
		StartScale:   Range{1, 1},
		EndScale:     Range{0.5, 0.5},
		StartAlpha:   Range{1, 1},
		StartColor:   ColorWhite,
		EndColor:     Color{0, 0, 0, 1},
	}
}

// burst returns an emitter with n particles already spawned.
func burst(cfg EmitterConfig, n int) *Emitter {
	e := newEmitter(cfg, nil)
	e.Explode(n)
	return e
}

func TestEmitterPoolSize(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want int
	}{
		{"explicit", 500, 500},
		{"zero uses default", 0, defaultEmitterSize},
		{"negative uses default", -3, defaultEmitterSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEmitter(EmitterConfig{MaxParticles: tt.max}, nil)
			if e.Size() != tt.want || e.AliveCount() != 0 {
				t.Errorf("size = %d alive = %d, want %d and 0", e.Size(), e.AliveCount(), tt.want)
			}
		})
	}
}

func TestEmitterFlowLifecycle(t *testing.T) {
	e := newEmitter(steadyConfig(100), nil)
	if e.IsActive() {
		t.Fatal("new emitter is flowing")
	}

	e.Start(false)
	e.update(0.1)
	if !e.IsActive() || e.AliveCount() != 10 {
		t.Fatalf("after 0.1s: active = %v alive = %d, want true and 10", e.IsActive(), e.AliveCount())
	}

	e.Stop()
	e.update(0.1)
	if e.IsActive() || e.AliveCount() != 10 {
		t.Errorf("stopped emitter: active = %v alive = %d, want false and 10", e.IsActive(), e.AliveCount())
	}

	e.Reset()
	if e.AliveCount() != 0 {
		t.Errorf("alive after Reset = %d", e.AliveCount())
	}
}

func TestEmitterRateCarriesFractions(t *testing.T) {
	cfg := steadyConfig(1000)
	cfg.EmitRate = 45
	e := newEmitter(cfg, nil)
	e.Start(false)
	for range 40 {
		e.update(1.0 / 40)
	}
	// 45 per second over one second, allowing for float drift in the carry.
	if n := e.AliveCount(); n < 44 || n > 45 {
		t.Errorf("alive = %d, want 44 or 45", n)
	}
}

func TestEmitterPoolCapsSpawns(t *testing.T) {
	tests := []struct {
		name string
		run  func(e *Emitter)
	}{
		{"flow", func(e *Emitter) { e.Start(false); e.update(2) }},
		{"explode", func(e *Emitter) { e.Explode(50) }},
		{"start explode", func(e *Emitter) { e.Start(true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEmitter(steadyConfig(6), nil)
			tt.run(e)
			if e.AliveCount() != 6 {
				t.Errorf("alive = %d, want 6", e.AliveCount())
			}
		})
	}
}

func TestStartExplodeLeavesEmitterStopped(t *testing.T) {
	e := newEmitter(steadyConfig(8), nil)
	e.Start(true)
	if e.IsActive() {
		t.Error("explode left the emitter flowing")
	}
	e.update(0.5)
	if e.AliveCount() != 8 {
		t.Errorf("alive = %d, want the original 8", e.AliveCount())
	}
}

func TestExpiredParticlesAreRecycled(t *testing.T) {
	cfg := steadyConfig(10)
	cfg.Lifetime = Range{0.25, 0.25}
	e := burst(cfg, 10)

	e.update(0.2)
	if e.AliveCount() != 10 {
		t.Fatalf("alive before expiry = %d", e.AliveCount())
	}
	e.update(0.1)
	if e.AliveCount() != 0 {
		t.Errorf("alive after expiry = %d", e.AliveCount())
	}
	e.Explode(3)
	if e.AliveCount() != 3 {
		t.Errorf("recycled slots: alive = %d, want 3", e.AliveCount())
	}
}

func TestZeroLifetimeLivesUntilReset(t *testing.T) {
	cfg := steadyConfig(4)
	cfg.Lifetime = Range{}
	e := burst(cfg, 4)
	for range 100 {
		e.update(1)
	}
	if e.AliveCount() != 4 {
		t.Errorf("alive = %d, want 4", e.AliveCount())
	}
	if p := e.particles[0]; p.cur != p.from {
		t.Errorf("immortal particle changed look: %+v", p.cur)
	}
}

func TestParticleMotion(t *testing.T) {
	tests := []struct {
		name           string
		angle, speed   float64
		gravity        Vec2
		wantVX, wantVY float64
		wantX, wantY   float64
	}{
		{"right", 0, 100, Vec2{}, 100, 0, 100, 0},
		{"down", math.Pi / 2, 50, Vec2{}, 0, 50, 0, 50},
		// Gravity is added to velocity before the position moves.
		{"falling", 0, 0, Vec2{Y: 100}, 0, 100, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := steadyConfig(1)
			cfg.Lifetime = Range{10, 10}
			cfg.Angle = Range{tt.angle, tt.angle}
			cfg.Speed = Range{tt.speed, tt.speed}
			cfg.Gravity = tt.gravity
			e := burst(cfg, 1)
			e.update(1)

			p := e.particles[0]
			assertNear(t, "vx", p.vx, tt.wantVX)
			assertNear(t, "vy", p.vy, tt.wantVY)
			assertNear(t, "x", p.x, tt.wantX)
			assertNear(t, "y", p.y, tt.wantY)
		})
	}
}

func TestParticleLookInterpolates(t *testing.T) {
	cfg := steadyConfig(1)
	cfg.Lifetime = Range{2, 2}
	cfg.StartScale, cfg.EndScale = Range{2, 2}, Range{0, 0}
	cfg.StartAlpha, cfg.EndAlpha = Range{1, 1}, Range{0, 0}
	cfg.StartColor, cfg.EndColor = Color{1, 0, 0, 1}, Color{0, 1, 0, 1}
	e := burst(cfg, 1)
	p := &e.particles[0]

	if p.cur.scale != 2 || p.cur.alpha != 1 || p.cur.r != 1 || p.cur.g != 0 {
		t.Fatalf("spawn look = %+v", p.cur)
	}

	e.update(0.5)
	assertNear(t, "scale", float64(p.cur.scale), 1.5)
	assertNear(t, "alpha", float64(p.cur.alpha), 0.75)
	assertNear(t, "r", float64(p.cur.r), 0.75)
	assertNear(t, "g", float64(p.cur.g), 0.25)
}

func TestLookMix(t *testing.T) {
	a := look{scale: 1, alpha: 1, r: 1}
	b := look{scale: 3, g: 1, b: 1}
	tests := []struct {
		t    float32
		want look
	}{
		{0, a},
		{1, b},
		{0.5, look{scale: 2, alpha: 0.5, r: 0.5, g: 0.5, b: 0.5}},
	}
	for _, tt := range tests {
		if got := a.mix(b, tt.t); got != tt.want {
			t.Errorf("mix(%v) = %+v, want %+v", tt.t, got, tt.want)
		}
	}
}

func TestRangeRandom(t *testing.T) {
	rng := NewGameMath(3)
	for range 200 {
		if v := (Range{-5, 20}).Random(rng); v < -5 || v > 20 {
			t.Fatalf("Random = %v, outside [-5, 20]", v)
		}
	}
	if v := (Range{7, 7}).Random(nil); v != 7 {
		t.Errorf("degenerate Random = %v, want 7", v)
	}
}

func TestEmitterUpdateDoesNotAllocate(t *testing.T) {
	cfg := steadyConfig(1000)
	cfg.EmitRate = 500
	e := newEmitter(cfg, nil)
	e.Start(false)
	for range 120 {
		e.update(1.0 / 60)
	}
	allocs := testing.AllocsPerRun(100, func() { e.update(1.0 / 60) })
	if allocs != 0 {
		t.Errorf("update allocs = %v, want 0", allocs)
	}
}

func TestConfigIsLive(t *testing.T) {
	e := newEmitter(steadyConfig(50), nil)
	e.Config().EmitRate = 20
	e.Start(false)
	e.update(0.5)
	if e.AliveCount() != 10 {
		t.Errorf("alive = %d, want 10 at the tuned rate", e.AliveCount())
	}
}

func TestMakeParticlesResizesPool(t *testing.T) {
	e := burst(steadyConfig(10), 5)
	e.MakeParticles(&Texture{Width: 8, Height: 4}, 30)
	if e.Size() != 30 || e.AliveCount() != 0 {
		t.Errorf("size = %d alive = %d, want 30 and 0", e.Size(), e.AliveCount())
	}
	if w, h := e.particleSize(); w != 8 || h != 4 {
		t.Errorf("textured size = %vx%v, want 8x4", w, h)
	}

	e.MakeParticles(nil, 0)
	if e.Size() != 30 {
		t.Errorf("zero quantity resized the pool to %d", e.Size())
	}
	if w, h := e.particleSize(); w != DefaultParticleSize || h != DefaultParticleSize {
		t.Errorf("untextured size = %vx%v", w, h)
	}
}

func TestSeededEmittersMatch(t *testing.T) {
	cfg := DefaultEmitterConfig(16)
	a, b := newEmitter(cfg, NewGameMath(7)), newEmitter(cfg, NewGameMath(7))
	a.Explode(16)
	b.Explode(16)
	for i := range 16 {
		if a.particles[i] != b.particles[i] {
			t.Fatalf("particle %d differs between equally seeded emitters", i)
		}
	}
}

func TestParticlesSpawnInsideArea(t *testing.T) {
	cfg := steadyConfig(50)
	cfg.Area = Vec2{X: 20, Y: 10}
	e := newEmitter(cfg, NewGameMath(1))
	e.worldX, e.worldY = 100, 100
	e.Explode(50)
	for i, p := range e.particles[:e.alive] {
		if p.x < 90 || p.x > 110 || p.y < 95 || p.y > 105 {
			t.Fatalf("particle %d at (%v, %v) outside the 20x10 area", i, p.x, p.y)
		}
	}
}

func TestRenderEmitsOneCommandPerParticle(t *testing.T) {
	n := NewEmitter("e", steadyConfig(10), nil)
	n.Emitter.worldX, n.Emitter.worldY = 50, 50
	n.Emitter.Explode(4)
	updateWorldTransform(n, identityTransform, 1, false)

	cmds := appendNode(nil, n, Rect{Width: 200, Height: 200}, identityTransform, true)
	if len(cmds) != 4 {
		t.Fatalf("commands = %d, want 4", len(cmds))
	}
	for _, c := range cmds {
		if c.image != nil || c.width != DefaultParticleSize {
			t.Errorf("untextured particle command = %+v", c)
		}
	}
}

func TestRenderSkipsParticlesOutsideViewport(t *testing.T) {
	n := NewEmitter("e", steadyConfig(10), nil)
	n.Emitter.worldX, n.Emitter.worldY = 5000, 5000
	n.Emitter.Explode(4)
	updateWorldTransform(n, identityTransform, 1, false)

	if cmds := appendNode(nil, n, Rect{Width: 200, Height: 200}, identityTransform, true); len(cmds) != 0 {
		t.Errorf("commands = %d, want 0", len(cmds))
	}
}

func BenchmarkEmitterUpdate(b *testing.B) {
	for _, size := range []int{1000, 10000} {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			cfg := steadyConfig(size)
			cfg.EmitRate = float64(size) / 2
			e := newEmitter(cfg, nil)
			e.Start(false)
			for range 200 {
				e.update(1.0 / 60)
			}
			b.ReportAllocs()
			for b.Loop() {
				e.update(1.0 / 60)
			}
		})
	}
}
