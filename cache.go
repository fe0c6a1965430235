package ember

import (
	"image/color"
	"sort"
	"strings"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2"
)

// Texture is a drawable image region. Width and Height are the untrimmed
// logical size; the image may be smaller when the packer trimmed it, in
// which case OffsetX/OffsetY place it inside the logical box.
type Texture struct {
	Key     string
	Image   *ebiten.Image
	Width   int
	Height  int
	OffsetX float64
	OffsetY float64
	// Rotated is set for atlas frames stored 90 degrees clockwise.
	Rotated bool
}

// NewTexture wraps a whole image.
func NewTexture(key string, img *ebiten.Image) *Texture {
	b := img.Bounds()
	return &Texture{Key: key, Image: img, Width: b.Dx(), Height: b.Dy()}
}

// placeholder texture shared by every lookup miss (no sync.Once, loop-owned).
var placeholder *Texture

// PlaceholderTexture returns the 16x16 magenta texture used for missing keys.
func PlaceholderTexture() *Texture {
	if placeholder == nil {
		img := ebiten.NewImage(DefaultParticleSize, DefaultParticleSize)
		img.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
		placeholder = NewTexture("__missing", img)
	}
	return placeholder
}

// SoundData is a decoded sound held in memory.
type SoundData struct {
	Key    string
	Format beep.Format
	Buffer *beep.Buffer
}

// Cache stores loaded assets by key. It is filled by the Loader on the
// loop goroutine and read by the World and the SoundManager.
type Cache struct {
	textures map[string]*Texture
	atlases  map[string]*Atlas
	text     map[string]string
	data     map[string][]byte
	sounds   map[string]*SoundData
}

func newCache() *Cache {
	c := &Cache{}
	c.Destroy()
	return c
}

// AddImage stores img as a texture under key, replacing any previous entry.
func (c *Cache) AddImage(key string, img *ebiten.Image) *Texture {
	t := NewTexture(key, img)
	c.textures[key] = t
	return t
}

// Texture returns the texture stored under key. Atlas frames are found by
// "atlas/frame" or, when unambiguous, by the bare frame name.
func (c *Cache) Texture(key string) (*Texture, bool) {
	if t, ok := c.textures[key]; ok {
		return t, true
	}
	if akey, frame, ok := strings.Cut(key, "/"); ok {
		if a, ok := c.atlases[akey]; ok {
			if t, ok := a.Frame(frame); ok {
				return t, true
			}
		}
	}
	for _, a := range c.atlases {
		if t, ok := a.Frame(key); ok {
			return t, true
		}
	}
	return nil, false
}

// AddAtlas stores a parsed texture atlas.
func (c *Cache) AddAtlas(key string, a *Atlas) {
	c.atlases[key] = a
}

// Atlas returns the atlas stored under key.
func (c *Cache) Atlas(key string) (*Atlas, bool) {
	a, ok := c.atlases[key]
	return a, ok
}

// AddText stores a text asset.
func (c *Cache) AddText(key, text string) {
	c.text[key] = text
}

// Text returns the text asset stored under key.
func (c *Cache) Text(key string) (string, bool) {
	s, ok := c.text[key]
	return s, ok
}

// AddData stores raw bytes.
func (c *Cache) AddData(key string, data []byte) {
	c.data[key] = data
}

// Data returns the raw bytes stored under key.
func (c *Cache) Data(key string) ([]byte, bool) {
	d, ok := c.data[key]
	return d, ok
}

// AddSound stores a decoded sound.
func (c *Cache) AddSound(key string, s *SoundData) {
	s.Key = key
	c.sounds[key] = s
}

// Sound returns the decoded sound stored under key.
func (c *Cache) Sound(key string) (*SoundData, bool) {
	s, ok := c.sounds[key]
	return s, ok
}

// Keys returns every stored key, sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.textures)+len(c.atlases)+len(c.text)+len(c.data)+len(c.sounds))
	for k := range c.textures {
		keys = append(keys, k)
	}
	for k := range c.atlases {
		keys = append(keys, k)
	}
	for k := range c.text {
		keys = append(keys, k)
	}
	for k := range c.data {
		keys = append(keys, k)
	}
	for k := range c.sounds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Destroy empties the cache.
func (c *Cache) Destroy() {
	c.textures = make(map[string]*Texture)
	c.atlases = make(map[string]*Atlas)
	c.text = make(map[string]string)
	c.data = make(map[string][]byte)
	c.sounds = make(map[string]*SoundData)
}
