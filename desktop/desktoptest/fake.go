// Package desktoptest provides an in-memory desktop.Driver for tests.
package desktoptest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/deskagent/desktop"
)

// Action records one mutating call on the fake.
type Action struct {
	Kind   string
	X, Y   int
	ToX    int
	ToY    int
	Button desktop.Button
	Clicks int
	Amount int
	Keys   []string
	Text   string
}

// Fake is a thread-safe desktop.Driver backed by an in-memory frame buffer.
// Frames, when set, are served one per Capture call and the last frame
// repeats, which lets polling tools observe a changing screen.
type Fake struct {
	mu      sync.Mutex
	width   int
	height  int
	x, y    int
	screen  *image.RGBA
	frames  []*image.RGBA
	actions []Action
	failure error
}

// New returns a fake screen of the given size filled with white.
func New(width, height int) *Fake {
	screen := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(screen, screen.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &Fake{width: width, height: height, screen: screen}
}

// Screen exposes the frame buffer for test setup.
func (f *Fake) Screen() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

// Paste draws img onto the frame buffer with its top left corner at (x, y).
func (f *Fake) Paste(img image.Image, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := img.Bounds()
	draw.Draw(f.screen, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
}

// QueueFrames makes successive captures return the given frames in order.
func (f *Fake) QueueFrames(frames ...*image.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frames...)
}

// SetPosition places the pointer without recording an action.
func (f *Fake) SetPosition(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
}

// Fail makes every later call return err.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failure = err
}

// Actions returns a copy of the recorded actions.
func (f *Fake) Actions() []Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.actions)
}

// Kinds returns the kinds of the recorded actions, in order.
func (f *Fake) Kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]string, len(f.actions))
	for i, a := range f.actions {
		kinds[i] = a.Kind
	}
	return kinds
}

func (f *Fake) ScreenSize() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return 0, 0, f.failure
	}
	return f.width, f.height, nil
}

func (f *Fake) MousePosition() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return 0, 0, f.failure
	}
	return f.x, f.y, nil
}

func (f *Fake) Move(ctx context.Context, x, y int, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.record(Action{Kind: "move", X: x, Y: y}, func() { f.x, f.y = x, y })
}

func (f *Fake) Click(button desktop.Button, clicks int) error {
	return f.record(Action{Kind: "click", X: f.pos().X, Y: f.pos().Y, Button: button, Clicks: clicks}, nil)
}

func (f *Fake) Drag(ctx context.Context, fromX, fromY, toX, toY int, button desktop.Button, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := Action{Kind: "drag", X: fromX, Y: fromY, ToX: toX, ToY: toY, Button: button}
	return f.record(a, func() { f.x, f.y = toX, toY })
}

func (f *Fake) Scroll(amount int) error {
	return f.record(Action{Kind: "scroll", Amount: amount}, nil)
}

func (f *Fake) KeyTap(key string) error {
	if strings.TrimSpace(key) == "" {
		return desktop.ErrEmptyKey
	}
	return f.record(Action{Kind: "key", Keys: []string{desktop.NormalizeKey(key)}}, nil)
}

func (f *Fake) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return desktop.ErrEmptyKey
	}
	normalized := make([]string, len(keys))
	for i, k := range keys {
		normalized[i] = desktop.NormalizeKey(k)
	}
	return f.record(Action{Kind: "hotkey", Keys: normalized}, nil)
}

func (f *Fake) Type(ctx context.Context, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.record(Action{Kind: "type", Text: text}, nil)
}

// Capture copies rect out of the current frame into an image whose bounds
// start at (0, 0), matching desktop.Robot.
func (f *Fake) Capture(rect image.Rectangle) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	src := f.screen
	if len(f.frames) > 0 {
		src = f.frames[0]
		if len(f.frames) > 1 {
			f.frames = f.frames[1:]
		}
	}
	if !rect.In(src.Bounds()) {
		return nil, errors.New("capture outside frame buffer")
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), src, rect.Min, draw.Src)
	return out, nil
}

func (f *Fake) Pixel(x, y int) (color.RGBA, error) {
	img, err := f.Capture(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return color.RGBA{}, err
	}
	return img.(*image.RGBA).RGBAAt(0, 0), nil
}

func (f *Fake) pos() image.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return image.Pt(f.x, f.y)
}

func (f *Fake) record(a Action, apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return f.failure
	}
	f.actions = append(f.actions, a)
	if apply != nil {
		apply()
	}
	return nil
}

var _ desktop.Driver = (*Fake)(nil)
