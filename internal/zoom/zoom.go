// Package zoom maps a pointer over a rendered product image to the
// background offset of a magnifier pane.
package zoom

// Rect is the rendered image bounding box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a viewport position or a background offset.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewer defaults used by the gallery.
var Defaults = struct {
	Factor float64
	Pane   Size
}{
	Factor: 2.5,
	Pane:   Size{Width: 350, Height: 350},
}

// Offset returns the background position that centres the hovered point of
// box inside the pane, clamped so the zoomed image always covers the pane.
// ok is false while the image has no rendered extent.
func Offset(box Rect, factor float64, pane Size, p Point) (Point, bool) {
	if box.Width <= 0 || box.Height <= 0 {
		return Point{}, false
	}

	rx := clamp(p.X-box.Left, 0, box.Width)
	ry := clamp(p.Y-box.Top, 0, box.Height)

	offX := pane.Width/2 - rx*factor
	offY := pane.Height/2 - ry*factor

	return Point{
		X: clamp(offX, pane.Width-box.Width*factor, 0),
		Y: clamp(offY, pane.Height-box.Height*factor, 0),
	}, true
}

// BackgroundSize is the extent of the zoomed image drawn behind the pane.
func BackgroundSize(box Rect, factor float64) Size {
	return Size{Width: box.Width * factor, Height: box.Height * factor}
}

// clamp bounds v to [lo, hi]. When lo > hi (pane larger than the zoomed
// image) the lower bound wins.
func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
