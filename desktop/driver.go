// Package desktop abstracts the pointer, keyboard, and screen buffer of the
// local display. Tool families depend on Driver; the CLI wires Robot and
// tests wire desktoptest.Fake.
package desktop

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"
	"time"
)

// Button names a mouse button.
type Button string

const (
	Left   Button = "left"
	Right  Button = "right"
	Middle Button = "middle"
)

// Buttons lists the accepted button names.
var Buttons = []Button{Left, Right, Middle}

// ParseButton validates a button name. An empty name means Left.
func ParseButton(name string) (Button, error) {
	if name == "" {
		return Left, nil
	}
	b := Button(name)
	if !slices.Contains(Buttons, b) {
		return "", fmt.Errorf("%w: %q (use left, right or middle)", ErrInvalidButton, name)
	}
	return b, nil
}

// Driver controls the pointer and keyboard and reads the screen buffer.
// Coordinates are absolute screen pixels with the origin at the top left of
// the primary display.
type Driver interface {
	ScreenSize() (width, height int, err error)
	MousePosition() (x, y int, err error)

	// Move glides the pointer to (x, y) over d. A zero d jumps. Cancelling
	// ctx stops the glide where it is.
	Move(ctx context.Context, x, y int, d time.Duration) error
	// Click presses button clicks times at the current position.
	Click(button Button, clicks int) error
	// Drag presses button at the start point, glides to the end point over d
	// and releases. The button is released even when ctx is cancelled.
	Drag(ctx context.Context, fromX, fromY, toX, toY int, button Button, d time.Duration) error
	// Scroll turns the wheel; positive amounts scroll up.
	Scroll(amount int) error

	KeyTap(key string) error
	// Hotkey holds every key but the last, taps the last, then releases.
	Hotkey(keys ...string) error
	// Type enters text one character at a time with interval between
	// characters. Cancelling ctx stops before the next character.
	Type(ctx context.Context, text string, interval time.Duration) error

	Capture(rect image.Rectangle) (image.Image, error)
	Pixel(x, y int) (color.RGBA, error)
}
