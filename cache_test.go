package ember

import (
	"slices"
	"testing"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2"
)

func TestCacheImage(t *testing.T) {
	c := newCache()
	tex := c.AddImage("ship", ebiten.NewImage(24, 12))
	if tex.Width != 24 || tex.Height != 12 || tex.Key != "ship" {
		t.Errorf("texture = %+v", tex)
	}
	got, ok := c.Texture("ship")
	if !ok || got != tex {
		t.Error("Texture lookup failed")
	}
	if _, ok := c.Texture("missing"); ok {
		t.Error("missing key found")
	}
}

func TestCacheAtlasFrames(t *testing.T) {
	c := newCache()
	atlas, err := LoadAtlas([]byte(singlePageJSON), []*ebiten.Image{ebiten.NewImage(1024, 1024)})
	if err != nil {
		t.Fatal(err)
	}
	c.AddAtlas("sheet", atlas)

	if _, ok := c.Texture("sheet/hero.png"); !ok {
		t.Error("qualified frame lookup failed")
	}
	if _, ok := c.Texture("hero.png"); !ok {
		t.Error("bare frame lookup failed")
	}
	if _, ok := c.Texture("other/hero.png"); ok {
		t.Error("unknown atlas prefix resolved")
	}
	if a, ok := c.Atlas("sheet"); !ok || a != atlas {
		t.Error("Atlas lookup failed")
	}
}

func TestCacheImageShadowsAtlasFrame(t *testing.T) {
	c := newCache()
	atlas, _ := LoadAtlas([]byte(singlePageJSON), []*ebiten.Image{ebiten.NewImage(1024, 1024)})
	c.AddAtlas("sheet", atlas)
	img := c.AddImage("hero.png", ebiten.NewImage(2, 2))
	if got, _ := c.Texture("hero.png"); got != img {
		t.Error("plain image should win over an atlas frame")
	}
}

func TestCacheTextDataSound(t *testing.T) {
	c := newCache()
	c.AddText("intro", "hello")
	c.AddData("level", []byte{1, 2, 3})
	snd := &SoundData{Format: beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}}
	c.AddSound("boom", snd)

	if s, ok := c.Text("intro"); !ok || s != "hello" {
		t.Errorf("Text = %q, %v", s, ok)
	}
	if d, ok := c.Data("level"); !ok || len(d) != 3 {
		t.Errorf("Data = %v, %v", d, ok)
	}
	if s, ok := c.Sound("boom"); !ok || s != snd || s.Key != "boom" {
		t.Errorf("Sound = %+v, %v", s, ok)
	}
}

func TestCacheKeysAndDestroy(t *testing.T) {
	c := newCache()
	c.AddText("b", "")
	c.AddData("a", nil)
	c.AddImage("c", ebiten.NewImage(1, 1))
	if got := c.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys = %v", got)
	}
	c.Destroy()
	if len(c.Keys()) != 0 {
		t.Errorf("Keys after Destroy = %v", c.Keys())
	}
	// The cache stays usable.
	c.AddText("x", "y")
	if _, ok := c.Text("x"); !ok {
		t.Error("cache unusable after Destroy")
	}
}

func TestPlaceholderTexture(t *testing.T) {
	a := PlaceholderTexture()
	b := PlaceholderTexture()
	if a != b {
		t.Error("placeholder is not shared")
	}
	if a.Width != DefaultParticleSize || a.Height != DefaultParticleSize {
		t.Errorf("placeholder = %dx%d", a.Width, a.Height)
	}
}
