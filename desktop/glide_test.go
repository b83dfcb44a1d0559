package desktop

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGlide_ReachesTarget(t *testing.T) {
	var path []image.Point
	err := glide(context.Background(), 0, 0, 100, 50, 4*moveStep, func(x, y int) {
		path = append(path, image.Pt(x, y))
	})

	assert.NoError(t, err)
	assert.Len(t, path, 4)
	assert.Equal(t, image.Pt(100, 50), path[len(path)-1])
}

func TestGlide_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*moveStep)
	defer cancel()

	var moves int
	start := time.Now()
	err := glide(ctx, 0, 0, 1000, 0, time.Hour, func(int, int) { moves++ })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Positive(t, moves)
}
