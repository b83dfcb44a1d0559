// Package vision finds template images inside screen captures.
package vision

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
)

// DefaultConfidence is the similarity threshold used when none is given.
const DefaultConfidence = 0.7

const (
	// prefilterPixels bounds the template pixels sampled on the first pass.
	prefilterPixels = 100
	// prefilterSlack lowers the threshold of the first pass so that sampling
	// noise does not hide a placement the full template would accept.
	prefilterSlack = 0.15
	// flatEnergy separates flat regions from textured ones. A region with
	// two pixel values differing by one already exceeds it.
	flatEnergy = 0.25
	epsilon    = 1e-9
)

// Options tune a single search.
type Options struct {
	// Confidence is the minimum similarity in (0, 1]. Ignored in exact mode.
	Confidence float64
	// Grayscale compares luminance only.
	Grayscale bool
}

// Match is a located template. Rect is relative to the searched image's
// origin.
type Match struct {
	Rect       image.Rectangle
	Confidence float64
}

// Center returns the midpoint of the match.
func (m Match) Center() image.Point {
	return image.Pt(m.Rect.Min.X+m.Rect.Dx()/2, m.Rect.Min.Y+m.Rect.Dy()/2)
}

// Matcher scores placements of a template with zero-mean normalised
// cross-correlation, so uniform areas score zero against a textured
// template. A flat template matches only regions of the same colour.
//
// Placements are scored first against a sample of the template pixels, and
// only local maxima of that pass are scored against the whole template.
type Matcher struct {
	precise bool
}

// New returns a matcher for cfg.
func New(cfg Config) *Matcher {
	return &Matcher{precise: !cfg.Exact}
}

// Precise reports whether confidence thresholds are honoured.
func (m *Matcher) Precise() bool {
	return m.precise
}

// Locate returns the best placement of needle in haystack with a similarity
// of at least the configured confidence. The bool is false when nothing
// qualifies.
func (m *Matcher) Locate(ctx context.Context, haystack, needle image.Image, opts Options) (Match, bool, error) {
	s, err := m.prepare(haystack, needle, opts)
	if err != nil {
		return Match{}, false, err
	}

	var found []Match
	if m.precise {
		found, err = s.peaks(ctx)
	} else {
		found, err = s.identical(ctx, true)
	}
	if err != nil || len(found) == 0 {
		return Match{}, false, err
	}
	return found[0], true, nil
}

// LocateAll returns every non-overlapping placement that meets the threshold,
// ordered top to bottom then left to right. Where candidates overlap the
// higher similarity wins.
func (m *Matcher) LocateAll(ctx context.Context, haystack, needle image.Image, opts Options) ([]Match, error) {
	s, err := m.prepare(haystack, needle, opts)
	if err != nil {
		return nil, err
	}

	var kept []Match
	if m.precise {
		peaks, err := s.peaks(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range peaks {
			overlaps := slices.ContainsFunc(kept, func(k Match) bool {
				return k.Rect.Overlaps(p.Rect)
			})
			if !overlaps {
				kept = append(kept, p)
			}
		}
	} else {
		if kept, err = s.identical(ctx, false); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(kept, func(a, b Match) int {
		if c := cmp.Compare(a.Rect.Min.Y, b.Rect.Min.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Rect.Min.X, b.Rect.Min.X)
	})
	return kept, nil
}

func (m *Matcher) prepare(haystack, needle image.Image, opts Options) (*search, error) {
	hb, nb := haystack.Bounds(), needle.Bounds()
	if hb.Empty() || nb.Empty() {
		return nil, ErrEmptyImage
	}
	if nb.Dx() > hb.Dx() || nb.Dy() > hb.Dy() {
		return nil, fmt.Errorf("%w: %dx%d in %dx%d", ErrTemplateTooLarge, nb.Dx(), nb.Dy(), hb.Dx(), hb.Dy())
	}

	confidence := 1.0
	if m.precise {
		confidence = opts.Confidence
		if confidence == 0 {
			confidence = DefaultConfidence
		}
		if confidence < 0 || confidence > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfidence, opts.Confidence)
		}
	}

	channels := 3
	var hay, tpl *image.NRGBA
	if opts.Grayscale {
		hay, tpl = imaging.Grayscale(haystack), imaging.Grayscale(needle)
		channels = 1
	} else {
		hay, tpl = imaging.Clone(haystack), imaging.Clone(needle)
	}

	s := &search{
		hay:        hay,
		tw:         tpl.Rect.Dx(),
		th:         tpl.Rect.Dy(),
		channels:   channels,
		confidence: confidence,
	}
	s.full = s.sample(tpl, 1)

	stride := 1
	for s.tw*s.th > stride*stride*prefilterPixels {
		stride++
	}
	if stride > 1 {
		coarse := s.sample(tpl, stride)
		// A sample that misses every detail of a textured template would
		// only match flat regions; scan with the whole template instead.
		if coarse.flat() == s.full.flat() {
			s.coarse = coarse
		}
	}
	return s, nil
}

// search holds the haystack normalised to NRGBA with a (0, 0) origin and the
// template prepared for correlation.
type search struct {
	hay        *image.NRGBA
	tw, th     int
	channels   int
	confidence float64
	full       *samples
	coarse     *samples
}

// samples is a grid of template pixels. offsets index the haystack's Pix
// relative to a placement, one per channel of each sampled pixel.
type samples struct {
	offsets []int
	raw     []uint8
	centred []float64
	mean    [3]float64
	energy  float64
	pixels  int
}

func (p *samples) flat() bool {
	return p.energy < flatEnergy
}

func (s *search) sample(tpl *image.NRGBA, stride int) *samples {
	p := &samples{}
	var sum [3]float64
	for ty := 0; ty < s.th; ty += stride {
		for tx := 0; tx < s.tw; tx += stride {
			p.pixels++
			for c := 0; c < s.channels; c++ {
				v := tpl.Pix[ty*tpl.Stride+tx*4+c]
				p.offsets = append(p.offsets, ty*s.hay.Stride+tx*4+c)
				p.raw = append(p.raw, v)
				sum[c] += float64(v)
			}
		}
	}
	for c := 0; c < s.channels; c++ {
		p.mean[c] = sum[c] / float64(p.pixels)
	}
	p.centred = make([]float64, len(p.raw))
	for k, v := range p.raw {
		d := float64(v) - p.mean[k%s.channels]
		p.centred[k] = d
		p.energy += d * d
	}
	return p
}

func (s *search) rect(x, y int) image.Rectangle {
	return image.Rect(x, y, x+s.tw, y+s.th)
}

// correlate scores the placement at (x, y) against p in [-1, 1].
func (s *search) correlate(p *samples, x, y int) float64 {
	base := y*s.hay.Stride + x*4
	var sum, sq [3]float64
	var cross float64
	for k, off := range p.offsets {
		v := float64(s.hay.Pix[base+off])
		c := k % s.channels
		sum[c] += v
		sq[c] += v * v
		cross += v * p.centred[k]
	}

	n := float64(p.pixels)
	var energy float64
	for c := 0; c < s.channels; c++ {
		energy += sq[c] - sum[c]*sum[c]/n
	}

	if p.flat() {
		if energy >= flatEnergy {
			return 0
		}
		for c := 0; c < s.channels; c++ {
			if math.Abs(sum[c]/n-p.mean[c]) >= 0.5 {
				return 0
			}
		}
		return 1
	}
	if energy < flatEnergy {
		return 0
	}
	return max(-1, min(1, cross/math.Sqrt(p.energy*energy)))
}

// peaks scores every placement and returns the local maxima that meet the
// confidence against the whole template, best first.
func (s *search) peaks(ctx context.Context) ([]Match, error) {
	cols := s.hay.Rect.Dx() - s.tw + 1
	rows := s.hay.Rect.Dy() - s.th + 1

	scan, threshold := s.full, s.confidence
	if s.coarse != nil {
		scan, threshold = s.coarse, max(0, s.confidence-prefilterSlack)
	}

	scores := make([]float32, cols*rows)
	for y := 0; y < rows; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < cols; x++ {
			scores[y*cols+x] = float32(s.correlate(scan, x, y))
		}
	}

	var found []Match
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if float64(scores[y*cols+x]) < threshold-epsilon || !isPeak(scores, cols, rows, x, y) {
				continue
			}
			score := s.correlate(s.full, x, y)
			if score < s.confidence-epsilon {
				continue
			}
			found = append(found, Match{Rect: s.rect(x, y), Confidence: score})
		}
	}

	slices.SortStableFunc(found, func(a, b Match) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return found, nil
}

// isPeak reports whether no neighbour of (x, y) scores higher. Ties go to the
// neighbour earlier in scan order, so a plateau yields one peak.
func isPeak(scores []float32, cols, rows, x, y int) bool {
	v := scores[y*cols+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= cols || ny >= rows {
				continue
			}
			n := scores[ny*cols+nx]
			if n > v || (n == v && (dy < 0 || (dy == 0 && dx < 0))) {
				return false
			}
		}
	}
	return true
}

// identical returns the pixel-identical placements in scan order, skipping
// any that overlap an earlier one. first stops at the first placement.
func (s *search) identical(ctx context.Context, first bool) ([]Match, error) {
	cols := s.hay.Rect.Dx() - s.tw + 1
	rows := s.hay.Rect.Dy() - s.th + 1

	var found []Match
	for y := 0; y < rows; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	placements:
		for x := 0; x < cols; x++ {
			if !s.equal(x, y) {
				continue
			}
			r := s.rect(x, y)
			for i := len(found) - 1; i >= 0 && found[i].Rect.Max.Y > y; i-- {
				if found[i].Rect.Overlaps(r) {
					continue placements
				}
			}
			found = append(found, Match{Rect: r, Confidence: 1})
			if first {
				return found, nil
			}
		}
	}
	return found, nil
}

func (s *search) equal(x, y int) bool {
	base := y*s.hay.Stride + x*4
	for k, off := range s.full.offsets {
		if s.hay.Pix[base+off] != s.full.raw[k] {
			return false
		}
	}
	return true
}
