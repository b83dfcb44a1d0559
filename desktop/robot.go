package desktop

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

const moveStep = 10 * time.Millisecond

// Robot drives the real display. Pointer and keyboard go through robotgo,
// screen reads through screenshot on display 0.
type Robot struct{}

// NewRobot returns a Driver for the local display.
func NewRobot() *Robot {
	return &Robot{}
}

func (r *Robot) ScreenSize() (int, int, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return 0, 0, fmt.Errorf("no active display")
	}
	b := screenshot.GetDisplayBounds(0)
	return b.Dx(), b.Dy(), nil
}

func (r *Robot) MousePosition() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

func (r *Robot) Move(ctx context.Context, x, y int, d time.Duration) error {
	if d <= 0 {
		robotgo.Move(x, y)
		return nil
	}
	fromX, fromY := robotgo.Location()
	return glide(ctx, fromX, fromY, x, y, d, moveTo)
}

func (r *Robot) Click(button Button, clicks int) error {
	if clicks == 2 {
		robotgo.Click(string(button), true)
		return nil
	}
	for i := 0; i < clicks; i++ {
		robotgo.Click(string(button))
	}
	return nil
}

func (r *Robot) Drag(ctx context.Context, fromX, fromY, toX, toY int, button Button, d time.Duration) error {
	robotgo.Move(fromX, fromY)
	if err := robotgo.Toggle(string(button)); err != nil {
		return fmt.Errorf("press %s: %w", button, err)
	}
	moved := glide(ctx, fromX, fromY, toX, toY, d, moveTo)
	if err := robotgo.Toggle(string(button), "up"); err != nil {
		return fmt.Errorf("release %s: %w", button, err)
	}
	return moved
}

func (r *Robot) Scroll(amount int) error {
	robotgo.Scroll(0, amount)
	return nil
}

func (r *Robot) KeyTap(key string) error {
	k := NormalizeKey(key)
	if k == "" {
		return ErrEmptyKey
	}
	return robotgo.KeyTap(k)
}

func (r *Robot) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return ErrEmptyKey
	}
	normalized := make([]string, len(keys))
	for i, k := range keys {
		normalized[i] = NormalizeKey(k)
	}
	last := normalized[len(normalized)-1]
	if len(normalized) == 1 {
		return robotgo.KeyTap(last)
	}
	return robotgo.KeyTap(last, normalized[:len(normalized)-1])
}

func (r *Robot) Type(ctx context.Context, text string, interval time.Duration) error {
	if interval <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, ch := range text {
		robotgo.TypeStr(string(ch))
		if err := pause(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

// Capture returns the pixels under rect. The image bounds start at (0, 0).
func (r *Robot) Capture(rect image.Rectangle) (image.Image, error) {
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", rect, err)
	}
	return img, nil
}

func (r *Robot) Pixel(x, y int) (color.RGBA, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("capture pixel (%d, %d): %w", x, y, err)
	}
	origin := img.Bounds().Min
	return img.RGBAAt(origin.X, origin.Y), nil
}

func moveTo(x, y int) {
	robotgo.Move(x, y)
}

// glide moves in straight-line steps from the start to the end point so the
// motion takes roughly d. It stops at the current step when ctx is done.
func glide(ctx context.Context, fromX, fromY, toX, toY int, d time.Duration, move func(x, y int)) error {
	steps := int(d / moveStep)
	if steps < 1 {
		move(toX, toY)
		return nil
	}
	for i := 1; i <= steps; i++ {
		x := fromX + (toX-fromX)*i/steps
		y := fromY + (toY-fromY)*i/steps
		move(x, y)
		if err := pause(ctx, moveStep); err != nil {
			return err
		}
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
