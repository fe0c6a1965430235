package ember

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Screenshot asks for the next presented frame to be saved as a PNG in
// ScreenshotDir, named after the time, the frame number and label.
func (s *Stage) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// PendingScreenshots returns the number of captures not yet written.
func (s *Stage) PendingScreenshots() int {
	return len(s.screenshotQueue)
}

// flushScreenshots saves the presented frame once per queued label.
func (s *Stage) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	labels := s.screenshotQueue
	s.screenshotQueue = s.screenshotQueue[:0]

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		s.log.Error("cannot create screenshot directory", zap.String("dir", s.ScreenshotDir), zap.Error(err))
		return
	}

	size := screen.Bounds().Size()
	pixels := make([]byte, 4*size.X*size.Y)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, size.X, size.Y)

	now := time.Now()
	for _, label := range labels {
		path := screenshotPath(s.ScreenshotDir, now, s.frames, label)
		if err := writePNG(path, img); err != nil {
			s.log.Error("screenshot failed", zap.String("label", label), zap.Error(err))
			continue
		}
		s.log.Info("screenshot saved", zap.String("path", path), zap.Uint64("frame", s.frames))
	}
}

func screenshotPath(dir string, at time.Time, frame uint64, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_f%06d_%s.png", at.Format("20060102_150405"), frame, sanitizeLabel(label)))
}

// unpremultiply turns premultiplied RGBA bytes, as ReadPixels returns
// them, into straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	for px := img.Pix; len(px) >= 4; px = px[4:] {
		a := int(px[3])
		if a == 0 || a == 255 {
			continue
		}
		for i := range 3 {
			px[i] = uint8(min(int(px[i])*255/a, 255))
		}
	}
	return img
}

// writePNG encodes img to path through a buffered writer.
func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("screenshot %s: %w", filepath.Base(path), err)
	}
	return w.Flush()
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.', turns everything
// else into '_' and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
