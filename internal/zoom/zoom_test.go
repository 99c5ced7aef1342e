package zoom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset_PointerPastRightEdge(t *testing.T) {
	box := Rect{Left: 0, Top: 0, Width: 100, Height: 100}

	got, ok := Offset(box, 2, Size{Width: 200, Height: 200}, Point{X: 150, Y: 50})

	assert.True(t, ok)
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 0.0, got.Y, 1e-9)
}

func TestOffset_CentersHoveredPoint(t *testing.T) {
	box := Rect{Left: 10, Top: 20, Width: 400, Height: 300}
	pane := Defaults.Pane

	got, ok := Offset(box, Defaults.Factor, pane, Point{X: 210, Y: 170})

	// rx=200, ry=150 -> 175-500, 175-375
	assert.True(t, ok)
	assert.InDelta(t, -325.0, got.X, 1e-9)
	assert.InDelta(t, -200.0, got.Y, 1e-9)
}

func TestOffset_ClampsToFarCorner(t *testing.T) {
	box := Rect{Width: 400, Height: 300}

	got, _ := Offset(box, 2.5, Size{Width: 350, Height: 350}, Point{X: 10_000, Y: 10_000})

	assert.InDelta(t, 350-1000.0, got.X, 1e-9)
	assert.InDelta(t, 350-750.0, got.Y, 1e-9)
}

func TestOffset_PointerBeforeOrigin(t *testing.T) {
	got, _ := Offset(Rect{Left: 50, Top: 50, Width: 400, Height: 300}, 2.5, Defaults.Pane, Point{X: 0, Y: 0})

	assert.Equal(t, Point{}, got)
}

func TestOffset_ImageNotRendered(t *testing.T) {
	_, ok := Offset(Rect{Width: 0, Height: 100}, 2, Defaults.Pane, Point{})

	assert.False(t, ok)
}

func TestBackgroundSize(t *testing.T) {
	assert.Equal(t, Size{Width: 1000, Height: 750}, BackgroundSize(Rect{Width: 400, Height: 300}, 2.5))
}
