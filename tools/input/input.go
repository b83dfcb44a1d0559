// Package input implements the pointer and keyboard tools. Every absolute
// coordinate is validated against the screen before the driver is touched.
package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/deskagent/desktop"
	"github.com/tailored-agentic-units/deskagent/tools"
)

const (
	defaultMoveDuration = 200 * time.Millisecond
	defaultDragDuration = 500 * time.Millisecond
	defaultTypeInterval = 50 * time.Millisecond
	defaultClickPause   = 200 * time.Millisecond
	defaultFocusPause   = 300 * time.Millisecond
)

// ClickStep is one click of a sequence.
type ClickStep struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
}

// Input drives the pointer and keyboard.
type Input struct {
	driver     desktop.Driver
	clickPause time.Duration
	focusPause time.Duration
}

// Option configures Input.
type Option func(*Input)

// WithPauses overrides the pause before each click of a sequence and the
// pause between focusing a field and typing into it.
func WithPauses(click, focus time.Duration) Option {
	return func(in *Input) {
		in.clickPause = click
		in.focusPause = focus
	}
}

// New returns Input bound to driver.
func New(driver desktop.Driver, opts ...Option) *Input {
	in := &Input{
		driver:     driver,
		clickPause: defaultClickPause,
		focusPause: defaultFocusPause,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Input) Position() tools.Result {
	x, y, err := in.driver.MousePosition()
	if err != nil {
		return tools.Failure("failed to read mouse position: %v", err)
	}
	return tools.Textf("Mouse position: X=%d, Y=%d", x, y)
}

func (in *Input) Move(ctx context.Context, x, y int, d time.Duration) tools.Result {
	if err := desktop.CheckPoint(in.driver, x, y); err != nil {
		return tools.Failure("cannot move mouse: %v", err)
	}
	if err := in.driver.Move(ctx, x, y, d); err != nil {
		return tools.Failure("failed to move mouse to (%d, %d): %v", x, y, err)
	}
	return tools.Textf("Mouse moved to X=%d, Y=%d", x, y)
}

// MoveRelative offsets the pointer from its current position. The target
// must still be on screen.
func (in *Input) MoveRelative(ctx context.Context, dx, dy int, d time.Duration) tools.Result {
	x, y, err := in.driver.MousePosition()
	if err != nil {
		return tools.Failure("failed to read mouse position: %v", err)
	}
	tx, ty := x+dx, y+dy
	if err := desktop.CheckPoint(in.driver, tx, ty); err != nil {
		return tools.Failure("cannot move mouse by (%d, %d): %v", dx, dy, err)
	}
	if err := in.driver.Move(ctx, tx, ty, d); err != nil {
		return tools.Failure("failed to move mouse to (%d, %d): %v", tx, ty, err)
	}
	return tools.Textf("Mouse moved by (dx=%d, dy=%d) to X=%d, Y=%d", dx, dy, tx, ty)
}

// Click presses button clicks times at (x, y), or at the current position
// when both coordinates are nil.
func (in *Input) Click(ctx context.Context, x, y *int, button string, clicks int) tools.Result {
	b, err := desktop.ParseButton(button)
	if err != nil {
		return tools.Failure("cannot click: %v", err)
	}
	if clicks < 1 {
		clicks = 1
	}

	if (x == nil) != (y == nil) {
		return tools.Failure("cannot click: x and y must be given together")
	}

	var px, py int
	if x != nil {
		px, py = *x, *y
		if err := desktop.CheckPoint(in.driver, px, py); err != nil {
			return tools.Failure("cannot click: %v", err)
		}
		if err := in.driver.Move(ctx, px, py, 0); err != nil {
			return tools.Failure("failed to move mouse to (%d, %d): %v", px, py, err)
		}
	} else {
		if px, py, err = in.driver.MousePosition(); err != nil {
			return tools.Failure("failed to read mouse position: %v", err)
		}
	}

	if err := in.driver.Click(b, clicks); err != nil {
		return tools.Failure("failed to click at (%d, %d): %v", px, py, err)
	}
	return tools.Textf("Clicked %s button %d time(s) at (%d, %d)", b, clicks, px, py)
}

func (in *Input) Drag(ctx context.Context, sx, sy, ex, ey int, d time.Duration, button string) tools.Result {
	b, err := desktop.ParseButton(button)
	if err != nil {
		return tools.Failure("cannot drag: %v", err)
	}
	if err := desktop.CheckPoint(in.driver, sx, sy); err != nil {
		return tools.Failure("cannot drag: start %v", err)
	}
	if err := desktop.CheckPoint(in.driver, ex, ey); err != nil {
		return tools.Failure("cannot drag: end %v", err)
	}
	if err := in.driver.Drag(ctx, sx, sy, ex, ey, b, d); err != nil {
		return tools.Failure("failed to drag from (%d, %d) to (%d, %d): %v", sx, sy, ex, ey, err)
	}
	return tools.Textf("Dragged from (%d, %d) to (%d, %d)", sx, sy, ex, ey)
}

func (in *Input) PressKey(key string) tools.Result {
	if strings.TrimSpace(key) == "" {
		return tools.Failure("key is required")
	}
	if err := in.driver.KeyTap(key); err != nil {
		return tools.Failure("failed to press %s: %v", key, err)
	}
	return tools.Textf("Pressed and released key: %s", key)
}

func (in *Input) TypeText(ctx context.Context, text string, interval time.Duration) tools.Result {
	if err := in.driver.Type(ctx, text, interval); err != nil {
		return tools.Failure("failed to type text: %v", err)
	}
	return tools.Textf("Typed text: %s", text)
}

func (in *Input) Hotkey(keys []string) tools.Result {
	if len(keys) == 0 {
		return tools.Failure("at least one key is required")
	}
	if err := in.driver.Hotkey(keys...); err != nil {
		return tools.Failure("failed to press %s: %v", strings.Join(keys, "+"), err)
	}
	return tools.Textf("Pressed key combination: %s", strings.Join(keys, "+"))
}

// Scroll turns the wheel; positive amounts scroll up.
func (in *Input) Scroll(amount int) tools.Result {
	if amount == 0 {
		return tools.Text("Scroll amount is zero; nothing to do")
	}
	if err := in.driver.Scroll(amount); err != nil {
		return tools.Failure("failed to scroll: %v", err)
	}
	direction := "up"
	if amount < 0 {
		direction, amount = "down", -amount
	}
	return tools.Textf("Scrolled %s by %d", direction, amount)
}

// ClickSequence validates every step, then clicks each in turn with a short
// pause before each click. An invalid step rejects the whole sequence.
func (in *Input) ClickSequence(ctx context.Context, steps []ClickStep) tools.Result {
	if len(steps) == 0 {
		return tools.Failure("click sequence is empty")
	}
	for i, s := range steps {
		if _, err := desktop.ParseButton(s.Button); err != nil {
			return tools.Failure("step %d: %v", i+1, err)
		}
		if err := desktop.CheckPoint(in.driver, s.X, s.Y); err != nil {
			return tools.Failure("step %d: %v", i+1, err)
		}
	}

	lines := make([]string, 0, len(steps))
	for i, s := range steps {
		if err := tools.Sleep(ctx, in.clickPause); err != nil {
			lines = append(lines, fmt.Sprintf("Stopped before step %d: %v", i+1, err))
			return tools.Result{Content: strings.Join(lines, "\n"), IsError: true}
		}
		x, y := s.X, s.Y
		r := in.Click(ctx, &x, &y, s.Button, 1)
		lines = append(lines, fmt.Sprintf("Step %d: %s", i+1, r.Content))
		if r.IsError {
			return tools.Result{Content: strings.Join(lines, "\n"), IsError: true}
		}
	}
	return tools.Text(strings.Join(lines, "\n"))
}

// TypeAndClick focuses (x, y) with a click, waits for focus to settle, then
// types text.
func (in *Input) TypeAndClick(ctx context.Context, text string, x, y int, button string) tools.Result {
	click := in.Click(ctx, &x, &y, button, 1)
	if click.IsError {
		return click
	}
	if err := tools.Sleep(ctx, in.focusPause); err != nil {
		return tools.Failure("%s\nstopped before typing: %v", click.Content, err)
	}
	typed := in.TypeText(ctx, text, defaultTypeInterval)
	return tools.Result{Content: click.Content + "\n" + typed.Content, IsError: typed.IsError}
}
