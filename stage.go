package ember

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

// Stage is the render surface. The World submits draw commands to it each
// tick and the host presents them on its frame.
type Stage struct {
	// Parent names the surface target, informational for desktop hosts.
	Parent string
	Width  int
	Height int
	// X and Y are the surface's offset inside the host window. Pointer
	// positions are reported relative to it.
	X, Y float64

	BackgroundColor Color
	ShowFPS         bool
	ScreenshotDir   string

	title      string
	initScreen bool
	frames     uint64
	commands   []drawCommand

	screenshotQueue []string
	log             *zap.Logger
}

func newStage(cfg Config, bg Color, log *zap.Logger) *Stage {
	return &Stage{
		Parent:          cfg.Parent,
		Width:           cfg.Width,
		Height:          cfg.Height,
		BackgroundColor: bg,
		ShowFPS:         cfg.ShowFPS,
		ScreenshotDir:   cfg.ScreenshotDir,
		title:           cfg.Title,
		log:             log,
	}
}

// CenterX returns the horizontal center of the stage.
func (s *Stage) CenterX() float64 { return float64(s.Width) / 2 }

// CenterY returns the vertical center of the stage.
func (s *Stage) CenterY() float64 { return float64(s.Height) / 2 }

// Bounds returns the stage rectangle in stage coordinates.
func (s *Stage) Bounds() Rect {
	return Rect{Width: float64(s.Width), Height: float64(s.Height)}
}

// Update counts loop ticks. Called by the loop before the World steps.
func (s *Stage) Update() {
	s.frames++
}

// Frames returns the number of ticks the stage has seen.
func (s *Stage) Frames() uint64 {
	return s.frames
}

// DrawInitScreen switches the stage to the boot banner shown when a game
// starts without a state.
func (s *Stage) DrawInitScreen() {
	s.initScreen = true
	s.commands = s.commands[:0]
}

// ShowingInitScreen reports whether the boot banner is displayed.
func (s *Stage) ShowingInitScreen() bool {
	return s.initScreen
}

// submit replaces the commands presented on the next frame.
func (s *Stage) submit(cmds []drawCommand) {
	s.commands = cmds
}

// CommandCount returns the number of draw commands pending presentation.
func (s *Stage) CommandCount() int {
	return len(s.commands)
}

// Present draws the current frame onto screen.
func (s *Stage) Present(screen *ebiten.Image) {
	screen.Fill(s.BackgroundColor.NRGBA())

	if s.initScreen {
		x, y := s.Width/2-110, s.Height/2-16
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s initialised", Version), x, y)
		ebitenutil.DebugPrintAt(screen, "No state or callbacks were given.", x, y+16)
	} else {
		drawCommands(screen, s.commands)
	}

	if s.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}

	s.flushScreenshots(screen)
}
