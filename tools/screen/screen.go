// Package screen implements the screen capture and image search tools.
package screen

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/deskagent/desktop"
	"github.com/tailored-agentic-units/deskagent/tools"
	"github.com/tailored-agentic-units/deskagent/vision"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultImagePoll = 500 * time.Millisecond
	defaultColorPoll = 200 * time.Millisecond
)

// Region is a capture rectangle given as origin and size.
type Region struct {
	X, Y, Width, Height int
}

// Screen reads the display and searches it for template images.
type Screen struct {
	driver    desktop.Driver
	matcher   *vision.Matcher
	imagePoll time.Duration
	colorPoll time.Duration
	now       func() time.Time
}

// Option configures Screen.
type Option func(*Screen)

// WithPollIntervals overrides how often the wait tools sample the screen.
func WithPollIntervals(imagePoll, colorPoll time.Duration) Option {
	return func(s *Screen) {
		s.imagePoll = imagePoll
		s.colorPoll = colorPoll
	}
}

// New returns Screen bound to driver, searching with matcher.
func New(driver desktop.Driver, matcher *vision.Matcher, opts ...Option) *Screen {
	s := &Screen{
		driver:    driver,
		matcher:   matcher,
		imagePoll: defaultImagePoll,
		colorPoll: defaultColorPoll,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Screen) Size() tools.Result {
	w, h, err := s.driver.ScreenSize()
	if err != nil {
		return tools.Failure("failed to read screen size: %v", err)
	}
	return tools.Textf("Screen size: %d x %d pixels", w, h)
}

// Screenshot captures the whole screen, or region when given, and saves it
// when savePath is set.
func (s *Screen) Screenshot(savePath string, region *Region) tools.Result {
	rect, err := desktop.Screen(s.driver)
	if err != nil {
		return tools.Failure("failed to read screen size: %v", err)
	}
	if region != nil {
		if rect, err = desktop.CheckRegion(s.driver, region.X, region.Y, region.Width, region.Height); err != nil {
			return tools.Failure("cannot take screenshot: %v", err)
		}
	}
	return s.capture(rect, savePath)
}

// CaptureRegion captures a validated rectangle of the screen.
func (s *Screen) CaptureRegion(x, y, width, height int, savePath string) tools.Result {
	rect, err := desktop.CheckRegion(s.driver, x, y, width, height)
	if err != nil {
		return tools.Failure("cannot capture region: %v", err)
	}
	return s.capture(rect, savePath)
}

func (s *Screen) capture(rect image.Rectangle, savePath string) tools.Result {
	img, err := s.driver.Capture(rect)
	if err != nil {
		return tools.Failure("failed to capture screen: %v", err)
	}
	if savePath == "" {
		return tools.Textf("Captured %dx%d screenshot of region (%d, %d, %d, %d)",
			rect.Dx(), rect.Dy(), rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	}
	if err := vision.Save(img, savePath); err != nil {
		return tools.Failure("failed to save screenshot: %v", err)
	}
	return tools.Textf("Screenshot saved to: %s", savePath)
}

// Locate searches the screen once for the template at path.
func (s *Screen) Locate(ctx context.Context, path string, opts vision.Options) tools.Result {
	tpl, res, ok := s.template(path)
	if !ok {
		return res
	}
	m, found, err := s.find(ctx, tpl, opts)
	if err != nil {
		return tools.Failure("image search for '%s' failed: %v", path, err)
	}
	if !found {
		return tools.Textf("Image '%s' not found on screen%s", path, s.modeNote())
	}
	c := m.Center()
	return tools.Textf("Found image '%s' at X=%d, Y=%d, width=%d, height=%d, center (%d, %d), similarity %.2f%s",
		path, m.Rect.Min.X, m.Rect.Min.Y, m.Rect.Dx(), m.Rect.Dy(), c.X, c.Y, m.Confidence, s.modeNote())
}

// LocateAll lists every non-overlapping occurrence of the template.
func (s *Screen) LocateAll(ctx context.Context, path string, opts vision.Options) tools.Result {
	tpl, res, ok := s.template(path)
	if !ok {
		return res
	}
	screen, err := s.grab()
	if err != nil {
		return tools.Failure("failed to capture screen: %v", err)
	}
	matches, err := s.matcher.LocateAll(ctx, screen, tpl, opts)
	if err != nil {
		return tools.Failure("image search for '%s' failed: %v", path, err)
	}
	if len(matches) == 0 {
		return tools.Textf("Image '%s' not found on screen%s", path, s.modeNote())
	}

	lines := make([]string, len(matches))
	for i, m := range matches {
		c := m.Center()
		lines[i] = fmt.Sprintf("Match %d: X=%d, Y=%d, width=%d, height=%d, center (%d, %d)",
			i+1, m.Rect.Min.X, m.Rect.Min.Y, m.Rect.Dx(), m.Rect.Dy(), c.X, c.Y)
	}
	return tools.Textf("Found %d matches for '%s'%s:\n%s", len(matches), path, s.modeNote(), strings.Join(lines, "\n"))
}

// WaitForImage polls until the template appears or timeout elapses.
func (s *Screen) WaitForImage(ctx context.Context, path string, timeout time.Duration, opts vision.Options) tools.Result {
	tpl, res, ok := s.template(path)
	if !ok {
		return res
	}
	m, elapsed, res, ok := s.await(ctx, tpl, path, timeout, opts)
	if !ok {
		return res
	}
	c := m.Center()
	return tools.Textf("Found image '%s' after %.2f seconds at (%d, %d)", path, elapsed.Seconds(), c.X, c.Y)
}

// ClickImage finds the template once and clicks its center.
func (s *Screen) ClickImage(ctx context.Context, path string, opts vision.Options, button string, clicks int) tools.Result {
	b, err := desktop.ParseButton(button)
	if err != nil {
		return tools.Failure("cannot click: %v", err)
	}
	if clicks < 1 {
		clicks = 1
	}
	tpl, res, ok := s.template(path)
	if !ok {
		return res
	}
	m, found, err := s.find(ctx, tpl, opts)
	if err != nil {
		return tools.Failure("image search for '%s' failed: %v", path, err)
	}
	if !found {
		return tools.Failure("image '%s' not found on screen; nothing clicked%s", path, s.modeNote())
	}
	c := m.Center()
	if err := s.click(ctx, c, b, clicks); err != nil {
		return tools.Failure("failed to click image '%s' at (%d, %d): %v", path, c.X, c.Y, err)
	}
	return tools.Textf("Clicked %s button %d time(s) at the center (%d, %d) of image '%s'", b, clicks, c.X, c.Y, path)
}

// WaitAndClickImage polls for the template, then clicks its center once.
func (s *Screen) WaitAndClickImage(ctx context.Context, path string, timeout time.Duration, opts vision.Options, button string) tools.Result {
	b, err := desktop.ParseButton(button)
	if err != nil {
		return tools.Failure("cannot click: %v", err)
	}
	tpl, res, ok := s.template(path)
	if !ok {
		return res
	}
	m, elapsed, res, ok := s.await(ctx, tpl, path, timeout, opts)
	if !ok {
		return res
	}
	c := m.Center()
	if err := s.click(ctx, c, b, 1); err != nil {
		return tools.Failure("failed to click image '%s' at (%d, %d): %v", path, c.X, c.Y, err)
	}
	return tools.Textf("Found and clicked image '%s' after %.2f seconds at (%d, %d)", path, elapsed.Seconds(), c.X, c.Y)
}

// FindText reports that on-screen text recognition is not available.
func (s *Screen) FindText(text string) tools.Result {
	return tools.Failure("finding text '%s' on screen needs OCR, which is not available; "+
		"try locate_on_screen with an image of the text instead", text)
}

func (s *Screen) ColorAt(x, y int) tools.Result {
	if err := desktop.CheckPoint(s.driver, x, y); err != nil {
		return tools.Failure("cannot read color: %v", err)
	}
	c, err := s.driver.Pixel(x, y)
	if err != nil {
		return tools.Failure("failed to read color at (%d, %d): %v", x, y, err)
	}
	return tools.Textf("Color at (%d, %d): %s", x, y, rgb(c))
}

// WaitForColorChange polls (x, y) until its color differs from initial, or
// from the current color when initial is nil.
func (s *Screen) WaitForColorChange(ctx context.Context, x, y int, initial *color.RGBA, timeout time.Duration) tools.Result {
	if err := desktop.CheckPoint(s.driver, x, y); err != nil {
		return tools.Failure("cannot watch color: %v", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var from color.RGBA
	if initial != nil {
		from = *initial
	} else {
		c, err := s.driver.Pixel(x, y)
		if err != nil {
			return tools.Failure("failed to read color at (%d, %d): %v", x, y, err)
		}
		from = c
	}

	start := s.now()
	current := from
	for {
		c, err := s.driver.Pixel(x, y)
		if err != nil {
			return tools.Failure("failed to read color at (%d, %d): %v", x, y, err)
		}
		current = c
		if !sameRGB(current, from) {
			return tools.Textf("Color changed after %.2f seconds from %s to %s",
				s.now().Sub(start).Seconds(), rgb(from), rgb(current))
		}
		if s.now().Sub(start) >= timeout {
			break
		}
		if err := tools.Sleep(ctx, s.colorPoll); err != nil {
			return tools.Failure("stopped watching (%d, %d): %v", x, y, err)
		}
	}
	return tools.Failure("color at (%d, %d) did not change within %s; current color %s", x, y, timeout, rgb(current))
}

// template loads the image file at path. The returned result is set when the
// bool is false.
func (s *Screen) template(path string) (image.Image, tools.Result, bool) {
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return nil, tools.Failure("image file '%s' does not exist", path), false
	}
	img, err := vision.Load(path)
	if err != nil {
		return nil, tools.Failure("cannot read image '%s': %v", path, err), false
	}
	return img, tools.Result{}, true
}

func (s *Screen) grab() (image.Image, error) {
	rect, err := desktop.Screen(s.driver)
	if err != nil {
		return nil, err
	}
	return s.driver.Capture(rect)
}

func (s *Screen) find(ctx context.Context, tpl image.Image, opts vision.Options) (vision.Match, bool, error) {
	screen, err := s.grab()
	if err != nil {
		return vision.Match{}, false, fmt.Errorf("capture screen: %w", err)
	}
	return s.matcher.Locate(ctx, screen, tpl, opts)
}

// await polls find until a match, the timeout, or ctx ends. The result is
// set when the bool is false.
func (s *Screen) await(ctx context.Context, tpl image.Image, path string, timeout time.Duration, opts vision.Options) (vision.Match, time.Duration, tools.Result, bool) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	start := s.now()
	for {
		m, found, err := s.find(ctx, tpl, opts)
		if err != nil {
			return vision.Match{}, 0, tools.Failure("image search for '%s' failed: %v", path, err), false
		}
		elapsed := s.now().Sub(start)
		if found {
			return m, elapsed, tools.Result{}, true
		}
		if elapsed >= timeout {
			break
		}
		if err := tools.Sleep(ctx, s.imagePoll); err != nil {
			return vision.Match{}, 0, tools.Failure("stopped waiting for '%s': %v", path, err), false
		}
	}
	return vision.Match{}, 0, tools.Failure("image '%s' did not appear within %s%s", path, timeout, s.modeNote()), false
}

func (s *Screen) click(ctx context.Context, p image.Point, b desktop.Button, clicks int) error {
	if err := s.driver.Move(ctx, p.X, p.Y, 0); err != nil {
		return err
	}
	return s.driver.Click(b, clicks)
}

func (s *Screen) modeNote() string {
	if s.matcher.Precise() {
		return ""
	}
	return " (exact-match mode; confidence ignored)"
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

func sameRGB(a, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}
