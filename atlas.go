package ember

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// Atlas is a set of named frames cut from one or more page images.
type Atlas struct {
	Pages  []*ebiten.Image
	frames map[string]*Texture
}

// Frame looks up a frame by its name in the packer file.
func (a *Atlas) Frame(name string) (*Texture, bool) {
	t, ok := a.frames[name]
	return t, ok
}

// Names lists the frame names in sorted order.
func (a *Atlas) Names() []string {
	return slices.Sorted(maps.Keys(a.frames))
}

// packerFile covers both TexturePacker JSON layouts: the hash layout keeps
// one page's frames under "frames", the multipack layout lists pages under
// "textures".
type packerFile struct {
	Frames   map[string]packerFrame `json:"frames"`
	Textures []packerPage           `json:"textures"`
	Meta     struct {
		Image string `json:"image"`
	} `json:"meta"`
}

type packerPage struct {
	Image  string                 `json:"image"`
	Frames map[string]packerFrame `json:"frames"`
}

type packerFrame struct {
	Frame            packerRect `json:"frame"`
	Rotated          bool       `json:"rotated"`
	Trimmed          bool       `json:"trimmed"`
	SpriteSourceSize packerRect `json:"spriteSourceSize"`
	SourceSize       packerRect `json:"sourceSize"`
}

type packerRect struct {
	X, Y, W, H int
}

var errEmptyAtlas = errors.New("atlas has neither frames nor textures")

func decodePacker(data []byte) (*packerFile, error) {
	var f packerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse atlas: %w", err)
	}
	return &f, nil
}

// LoadAtlas reads TexturePacker JSON in either layout and cuts its frames
// out of pages, which are indexed in the order the file lists them.
func LoadAtlas(data []byte, pages []*ebiten.Image) (*Atlas, error) {
	f, err := decodePacker(data)
	if err != nil {
		return nil, err
	}
	layout := f.Textures
	switch {
	case len(layout) > 0:
	case f.Frames != nil:
		layout = []packerPage{{Image: f.Meta.Image, Frames: f.Frames}}
	default:
		return nil, errEmptyAtlas
	}

	a := &Atlas{Pages: pages, frames: make(map[string]*Texture)}
	for i, page := range layout {
		if i >= len(pages) || pages[i] == nil {
			return nil, fmt.Errorf("atlas page %d (%q) is missing", i, page.Image)
		}
		for name, fr := range page.Frames {
			a.frames[name] = cutFrame(pages[i], name, fr)
		}
	}
	return a, nil
}

// cutFrame makes a texture for fr. A rotated frame is stored turned 90
// degrees clockwise, so its page rectangle is h x w.
func cutFrame(page *ebiten.Image, name string, fr packerFrame) *Texture {
	r := fr.Frame
	w, h := r.W, r.H
	if fr.Rotated {
		w, h = h, w
	}
	t := &Texture{
		Key:     name,
		Image:   page.SubImage(image.Rect(r.X, r.Y, r.X+w, r.Y+h)).(*ebiten.Image),
		Width:   r.W,
		Height:  r.H,
		Rotated: fr.Rotated,
	}
	if fr.Trimmed {
		t.Width, t.Height = fr.SourceSize.W, fr.SourceSize.H
		t.OffsetX, t.OffsetY = float64(fr.SpriteSourceSize.X), float64(fr.SpriteSourceSize.Y)
	}
	return t
}

// atlasPageImages lists the page image files an atlas needs, in page order.
// It is nil when a hash layout names no meta image.
func atlasPageImages(data []byte) ([]string, error) {
	f, err := decodePacker(data)
	if err != nil {
		return nil, err
	}
	if len(f.Textures) == 0 {
		if f.Meta.Image == "" {
			return nil, nil
		}
		return []string{f.Meta.Image}, nil
	}
	names := make([]string, len(f.Textures))
	for i, p := range f.Textures {
		names[i] = p.Image
	}
	return names, nil
}
