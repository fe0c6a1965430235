package ember

import "math"

// look is the interpolated appearance of a particle.
type look struct {
	scale, alpha float32
	r, g, b      float32
}

func (l look) mix(to look, t float32) look {
	return look{
		scale: lerp32(l.scale, to.scale, t),
		alpha: lerp32(l.alpha, to.alpha, t),
		r:     lerp32(l.r, to.r, t),
		g:     lerp32(l.g, to.g, t),
		b:     lerp32(l.b, to.b, t),
	}
}

// particle is one pooled particle, positioned in world space.
type particle struct {
	x, y, vx, vy   float64
	rotation, spin float64
	// life counts down to zero; ttl is the lifetime it started from, 0 for
	// particles that live until Reset.
	life, ttl float64

	from, to, cur look
}

// EmitterConfig describes what an Emitter spawns. Every Range is sampled
// once per particle.
type EmitterConfig struct {
	// MaxParticles is the pool size; spawns beyond it are dropped.
	MaxParticles int
	// EmitRate is particles per second while the emitter flows.
	EmitRate float64
	// Lifetime in seconds. Zero keeps particles alive until Reset.
	Lifetime Range
	// Speed in pixels per second along a direction drawn from Angle.
	Speed Range
	Angle Range
	// Spin in radians per second.
	Spin Range

	StartScale, EndScale Range
	StartAlpha, EndAlpha Range
	StartColor, EndColor Color

	// Gravity accelerates every live particle.
	Gravity Vec2
	// Area is the size of the box, centered on the emitter, that particles
	// appear in.
	Area Vec2
}

// DefaultEmitterConfig is what CreateEmitter uses: white particles bursting
// in every direction at up to 100 px/s and living 3 seconds.
func DefaultEmitterConfig(size int) EmitterConfig {
	return EmitterConfig{
		MaxParticles: size,
		EmitRate:     10,
		Lifetime:     Range{3, 3},
		Speed:        Range{0, 100},
		Angle:        Range{0, 2 * math.Pi},
		Spin:         Range{-math.Pi, math.Pi},
		StartScale:   Range{1, 1},
		EndScale:     Range{1, 1},
		StartAlpha:   Range{1, 1},
		EndAlpha:     Range{1, 1},
		StartColor:   ColorWhite,
		EndColor:     ColorWhite,
	}
}

// Emitter simulates a fixed pool of particles on the CPU. Live particles
// occupy the first alive slots of the pool.
type Emitter struct {
	config    EmitterConfig
	particles []particle
	alive     int
	pending   float64
	flowing   bool
	texture   *Texture
	rng       *GameMath

	// Spawn origin, copied from the node's world transform before each step.
	worldX, worldY float64
}

const defaultEmitterSize = 128

func newEmitter(cfg EmitterConfig, rng *GameMath) *Emitter {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = defaultEmitterSize
	}
	return &Emitter{
		config:    cfg,
		particles: make([]particle, cfg.MaxParticles),
		rng:       rng,
	}
}

// NewEmitter returns an emitter node with its pool allocated.
func NewEmitter(name string, cfg EmitterConfig, rng *GameMath) *Node {
	n := &Node{Name: name, Type: NodeTypeEmitter, Emitter: newEmitter(cfg, rng)}
	nodeDefaults(n)
	return n
}

// MakeParticles sets the particle texture and, when quantity is positive,
// reallocates the pool at that size. A nil texture draws white boxes.
// Live particles are dropped either way.
func (e *Emitter) MakeParticles(tex *Texture, quantity int) {
	e.texture = tex
	if quantity > 0 {
		e.config.MaxParticles = quantity
		e.particles = make([]particle, quantity)
	}
	e.alive, e.pending = 0, 0
}

// Start begins emission. explode fills the whole pool at once and leaves
// the emitter stopped; otherwise particles flow at EmitRate.
func (e *Emitter) Start(explode bool) {
	e.flowing = !explode
	if explode {
		e.Explode(len(e.particles))
	}
}

// Explode spawns n particles now, as many as the pool has room for.
func (e *Emitter) Explode(n int) {
	for ; n > 0 && e.alive < len(e.particles); n-- {
		e.spawn()
	}
}

// Stop ends the flow. Live particles finish their lifetimes.
func (e *Emitter) Stop() { e.flowing = false }

// Reset stops the flow and kills every particle.
func (e *Emitter) Reset() {
	e.flowing = false
	e.alive, e.pending = 0, 0
}

func (e *Emitter) IsActive() bool    { return e.flowing }
func (e *Emitter) AliveCount() int   { return e.alive }
func (e *Emitter) Size() int         { return len(e.particles) }
func (e *Emitter) Texture() *Texture { return e.texture }

// Config exposes the live configuration; changes apply to later spawns.
func (e *Emitter) Config() *EmitterConfig { return &e.config }

func (e *Emitter) particleSize() (w, h float64) {
	if e.texture == nil {
		return DefaultParticleSize, DefaultParticleSize
	}
	return float64(e.texture.Width), float64(e.texture.Height)
}

// update steps every live particle by dt seconds, recycling expired ones,
// then spawns whatever the flow owes.
func (e *Emitter) update(dt float64) {
	ax, ay := e.config.Gravity.X*dt, e.config.Gravity.Y*dt
	for i := 0; i < e.alive; {
		p := &e.particles[i]
		if p.ttl > 0 {
			if p.life -= dt; p.life <= 0 {
				e.alive--
				*p = e.particles[e.alive]
				continue
			}
			p.cur = p.from.mix(p.to, float32(1-p.life/p.ttl))
		}
		p.vx += ax
		p.vy += ay
		p.x += p.vx * dt
		p.y += p.vy * dt
		p.rotation += p.spin * dt
		i++
	}

	if !e.flowing || e.config.EmitRate <= 0 {
		return
	}
	e.pending += e.config.EmitRate * dt
	for ; e.pending >= 1; e.pending-- {
		if e.alive < len(e.particles) {
			e.spawn()
		}
	}
}

// spawn fills slot e.alive from the config.
func (e *Emitter) spawn() {
	c, rng := &e.config, e.rng
	p := &e.particles[e.alive]
	e.alive++

	sin, cos := math.Sincos(c.Angle.Random(rng))
	speed := c.Speed.Random(rng)
	p.vx, p.vy = cos*speed, sin*speed

	p.x, p.y = e.worldX, e.worldY
	if c.Area.X > 0 {
		p.x += Range{-c.Area.X / 2, c.Area.X / 2}.Random(rng)
	}
	if c.Area.Y > 0 {
		p.y += Range{-c.Area.Y / 2, c.Area.Y / 2}.Random(rng)
	}
	p.rotation, p.spin = 0, c.Spin.Random(rng)

	p.life = math.Max(c.Lifetime.Random(rng), 0)
	p.ttl = p.life

	p.from = look{
		scale: float32(c.StartScale.Random(rng)),
		alpha: float32(c.StartAlpha.Random(rng)),
		r:     float32(c.StartColor.R),
		g:     float32(c.StartColor.G),
		b:     float32(c.StartColor.B),
	}
	p.to = look{
		scale: float32(c.EndScale.Random(rng)),
		alpha: float32(c.EndAlpha.Random(rng)),
		r:     float32(c.EndColor.R),
		g:     float32(c.EndColor.G),
		b:     float32(c.EndColor.B),
	}
	p.cur = p.from
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Random draws a value in [Min, Max] from rng, or from the process-wide
// source when rng is nil.
func (r Range) Random(rng *GameMath) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Frac()*(r.Max-r.Min)
}
