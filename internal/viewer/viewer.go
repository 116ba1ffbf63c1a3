// Package viewer shows the cube in a desktop window and feeds keyboard
// input back into a recorder.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/internal/scene"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Input receives typed keys. Both the recorder and a stored session
// implement it.
type Input interface {
	Record(key rune, ctrlHeld bool) (types.Op, bool)
}

// Source provides the cubie matrices once per frame.
type Source interface {
	CurrentTransforms() operation.Transforms
	Ops() []types.Op
}

// Config configures the window.
type Config struct {
	Title  string
	Width  int
	Height int

	// Input is nil for a read-only window, e.g. when mirroring a smart cube.
	Input  Input
	Source Source
	Logger logrus.FieldLogger
}

var background = color.RGBA{0x18, 0x18, 0x20, 0xff}

func newWhiteImage() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// Window is a running viewer. SetOrientation may be called from any
// goroutine.
type Window struct {
	cfg    Config
	camera *scene.Camera

	width, height int

	dragging bool
	lastX    int
	lastY    int
	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16

	mu          sync.Mutex
	orientation mgl32.Quat
}

// New creates a window that has not been opened yet.
func New(cfg Config) *Window {
	if cfg.Title == "" {
		cfg.Title = "cuberender"
	}
	if cfg.Width == 0 {
		cfg.Width = 960
	}
	if cfg.Height == 0 {
		cfg.Height = 720
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Window{
		cfg:         cfg,
		camera:      scene.DefaultCamera(),
		width:       cfg.Width,
		height:      cfg.Height,
		orientation: mgl32.QuatIdent(),
	}
}

// SetOrientation turns the whole cube, e.g. to follow a smart cube's body.
func (w *Window) SetOrientation(q mgl32.Quat) {
	w.mu.Lock()
	w.orientation = q
	w.mu.Unlock()
}

// Run opens the window and blocks until it is closed or Esc is pressed.
// It must be called from the main goroutine.
func (w *Window) Run() error {
	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(w); err != nil && err != ebiten.Termination {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// Update handles input once per tick.
func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	w.pollKeys()
	w.pollMouse()
	return nil
}

var faceKeys = [...]struct {
	key    ebiten.Key
	letter rune
}{
	{ebiten.KeyF, 'F'},
	{ebiten.KeyB, 'B'},
	{ebiten.KeyL, 'L'},
	{ebiten.KeyR, 'R'},
	{ebiten.KeyU, 'U'},
	{ebiten.KeyD, 'D'},
}

func (w *Window) pollKeys() {
	if w.cfg.Input == nil {
		return
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)

	// Most platforms suppress text input while ctrl is held, so ctrl
	// combinations come from key state.
	if ctrl {
		shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
		for _, fk := range faceKeys {
			if inpututil.IsKeyJustPressed(fk.key) {
				w.record(typedLetter(fk.letter, shift), true)
			}
		}
		return
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		w.record(r, false)
	}
}

// typedLetter returns the rune a face key would have typed.
func typedLetter(letter rune, shift bool) rune {
	if shift {
		return unicode.ToUpper(letter)
	}
	return unicode.ToLower(letter)
}

func (w *Window) record(key rune, ctrl bool) {
	op, ok := w.cfg.Input.Record(key, ctrl)
	if !ok {
		return
	}
	w.cfg.Logger.WithField("op", op.Notation()).Debug("key recorded")
}

func (w *Window) pollMouse() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		w.camera.Reset()
	}

	x, y := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		w.dragging = false
		return
	}

	if w.dragging {
		w.camera.Drag(float32(x-w.lastX), float32(y-w.lastY), float32(w.width))
	}
	w.dragging = true
	w.lastX, w.lastY = x, y
}

// Draw renders one frame.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if w.white == nil {
		w.white = newWhiteImage()
	}

	frame := scene.NewFrame(w.camera, w.width, w.height)
	w.mu.Lock()
	frame.Orientation = w.orientation.Mat4()
	w.mu.Unlock()

	tris := frame.Project(w.cfg.Source.CurrentTransforms())

	w.vertices = w.vertices[:0]
	w.indices = w.indices[:0]
	for _, tri := range tris {
		base := uint16(len(w.vertices))
		for _, p := range tri.Points {
			w.vertices = append(w.vertices, ebiten.Vertex{
				DstX:   p.X(),
				DstY:   p.Y(),
				SrcX:   1,
				SrcY:   1,
				ColorR: float32(tri.Color.R),
				ColorG: float32(tri.Color.G),
				ColorB: float32(tri.Color.B),
				ColorA: 1,
			})
		}
		w.indices = append(w.indices, base, base+1, base+2)
	}

	screen.DrawTriangles(w.vertices, w.indices, w.white, &ebiten.DrawTrianglesOptions{})
	ebitenutil.DebugPrint(screen, w.hud())
}

func (w *Window) hud() string {
	ops := w.cfg.Source.Ops()
	const tail = 16
	prefix := ""
	if len(ops) > tail {
		ops = ops[len(ops)-tail:]
		prefix = "... "
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ops: %s%s\n", prefix, types.FormatOps(ops))
	if w.cfg.Input != nil {
		b.WriteString("F/B/L/R/U/D clockwise, lowercase counter-clockwise, ctrl half turn\n")
	}
	b.WriteString("drag to orbit, right-click to reset view, esc to quit")
	return b.String()
}

// Layout follows the window size.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.width, w.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
