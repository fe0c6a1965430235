package ember

import (
	"go.uber.org/zap"
)

// textureSource resolves texture keys. Implemented by *Cache.
type textureSource interface {
	Texture(key string) (*Texture, bool)
}

// World owns the scene graph and the camera registry. It is advanced by
// the loop once per fixed step and rendered once per tick.
type World struct {
	Cameras *Cameras

	root     *Node
	stage    *Stage
	clock    *Clock
	rng      *GameMath
	textures textureSource
	tweens   tweens
	log      *zap.Logger
	debug    bool

	ticks    uint64
	commands []drawCommand
}

func newWorld(stage *Stage, log *zap.Logger) *World {
	return &World{
		Cameras: newCameras(float64(stage.Width), float64(stage.Height)),
		root:    NewGroup("world", 0),
		stage:   stage,
		log:     log,
	}
}

// link supplies the subsystems built after the World.
func (w *World) link(clock *Clock, rng *GameMath, textures textureSource) {
	w.clock = clock
	w.rng = rng
	w.textures = textures
}

// Root returns the top-level group.
func (w *World) Root() *Node {
	return w.root
}

// Ticks returns the number of fixed steps simulated.
func (w *World) Ticks() uint64 {
	return w.ticks
}

// Add attaches n to the root group and returns it.
func (w *World) Add(n *Node) *Node {
	w.root.AddChild(n)
	if w.debug {
		debugCheckTreeDepth(n, w.log)
		debugCheckChildCount(w.root, w.log)
	}
	return n
}

// Tween registers g so it advances with every fixed step until done.
func (w *World) Tween(g *TweenGroup) *TweenGroup {
	w.tweens.add(g)
	return g
}

// texture resolves key, falling back to the placeholder for unknown keys.
// An empty key resolves to nil.
func (w *World) texture(key string) *Texture {
	if key == "" {
		return nil
	}
	if w.textures != nil {
		if t, ok := w.textures.Texture(key); ok {
			return t
		}
	}
	w.log.Warn("texture not in cache, using placeholder", zap.String("key", key))
	return PlaceholderTexture()
}

// CreateCamera adds a camera rendering into the given stage rectangle.
func (w *World) CreateCamera(x, y, width, height float64) *Camera {
	return w.Cameras.AddCamera(x, y, width, height)
}

// CreateSprite adds a sprite at (x, y) drawing the cached texture key.
// An empty key draws a 16x16 box.
func (w *World) CreateSprite(x, y float64, key string) *Node {
	n := NewSprite(key, w.texture(key))
	if n.Texture == nil {
		n.Width, n.Height = DefaultParticleSize, DefaultParticleSize
	}
	n.SetPosition(x, y)
	return w.Add(n)
}

// CreateGroup adds a group limited to maxSize members.
func (w *World) CreateGroup(maxSize int) *Node {
	return w.Add(NewGroup("group", maxSize))
}

// CreateParticle adds a particle sprite at the origin.
func (w *World) CreateParticle() *Node {
	return w.Add(NewParticle("particle"))
}

// CreateEmitter adds an emitter at (x, y) with a pool of size particles
// using DefaultEmitterConfig.
func (w *World) CreateEmitter(x, y float64, size int) *Node {
	n := NewEmitter("emitter", DefaultEmitterConfig(size), w.rng)
	n.SetPosition(x, y)
	n.Emitter.worldX, n.Emitter.worldY = x, y
	return w.Add(n)
}

// MakeParticles sets the texture key and pool size of an emitter node.
func (w *World) MakeParticles(n *Node, key string, quantity int) {
	if n.Emitter == nil {
		return
	}
	n.Emitter.MakeParticles(w.texture(key), quantity)
}

// CreateTilemap parses mapData and adds a tilemap drawn from the cached
// tileset key.
func (w *World) CreateTilemap(key, mapData string, format TilemapFormat, tileWidth, tileHeight int) (*Node, error) {
	m, err := ParseTilemap(mapData, format, tileWidth, tileHeight)
	if err != nil {
		return nil, err
	}
	return w.Add(NewTilemap(key, m, w.texture(key))), nil
}

// Update advances the simulation by one fixed step of Clock.Elapsed seconds.
func (w *World) Update() {
	var dt float64
	if w.clock != nil {
		dt = w.clock.Elapsed
	}
	w.step(w.root, dt)
	updateWorldTransform(w.root, identityTransform, 1, false)
	w.updateEmitters(w.root, dt)
	w.Cameras.Update(float32(dt))
	w.tweens.update(float32(dt))
	w.ticks++
}

// step integrates velocity and runs OnUpdate hooks for existing nodes.
func (w *World) step(n *Node, dt float64) {
	if !n.Exists {
		return
	}
	if n.Velocity.X != 0 || n.Velocity.Y != 0 {
		n.X += n.Velocity.X * dt
		n.Y += n.Velocity.Y * dt
		n.transformDirty = true
	}
	if n.OnUpdate != nil {
		n.OnUpdate(n, dt)
	}
	// Hooks may remove the child being stepped.
	for i := 0; i < len(n.children); i++ {
		c := n.children[i]
		w.step(c, dt)
		if i < len(n.children) && n.children[i] != c {
			i--
		}
	}
}

func (w *World) updateEmitters(n *Node, dt float64) {
	if !n.Exists {
		return
	}
	if n.Emitter != nil {
		n.Emitter.worldX, n.Emitter.worldY = n.WorldPosition()
		n.Emitter.update(dt)
	}
	for _, c := range n.children {
		w.updateEmitters(c, dt)
	}
}

// Render builds the frame's draw commands for every visible camera and
// hands them to the Stage.
func (w *World) Render() {
	updateWorldTransform(w.root, identityTransform, 1, false)
	w.commands = w.commands[:0]
	for _, cam := range w.Cameras.All() {
		if !cam.Visible {
			continue
		}
		view := cam.viewMatrix()
		w.commands = appendNode(w.commands, w.root, cam.Viewport, view, cam.CullEnabled)
	}
	w.stage.submit(w.commands)
}

// Destroy disposes the scene graph, resets the cameras and drops tweens.
func (w *World) Destroy() {
	for len(w.root.children) > 0 {
		w.root.children[len(w.root.children)-1].Dispose()
	}
	w.Cameras.Destroy()
	w.tweens.clear()
	w.commands = w.commands[:0]
	w.stage.submit(nil)
}
