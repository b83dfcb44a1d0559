package desktop

import (
	"fmt"
	"image"
)

// CheckPoint reports ErrOutOfBounds unless (x, y) lies in [0,w)×[0,h).
func CheckPoint(d Driver, x, y int) error {
	w, h, err := d.ScreenSize()
	if err != nil {
		return err
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return fmt.Errorf("%w: (%d, %d) not within %dx%d", ErrOutOfBounds, x, y, w, h)
	}
	return nil
}

// CheckRegion validates a capture region against the screen and returns it as
// a rectangle. The region must have positive size and fit entirely on screen.
func CheckRegion(d Driver, x, y, width, height int) (image.Rectangle, error) {
	w, h, err := d.ScreenSize()
	if err != nil {
		return image.Rectangle{}, err
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > w || y+height > h {
		return image.Rectangle{}, fmt.Errorf(
			"%w: x=%d y=%d width=%d height=%d exceeds %dx%d",
			ErrInvalidRegion, x, y, width, height, w, h,
		)
	}
	return image.Rect(x, y, x+width, y+height), nil
}

// Screen returns the full screen rectangle.
func Screen(d Driver) (image.Rectangle, error) {
	w, h, err := d.ScreenSize()
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(0, 0, w, h), nil
}
