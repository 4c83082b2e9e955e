// Package cropmap maps crop selections between a downscaled preview and the
// pixel space of the original image.
package cropmap

import "math"

// Point is a position in display space.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned region. A rectangle with a non-positive width or
// height is treated as absent.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether r describes no region at all.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Viewport describes how an original image is fitted into a display box.
type Viewport struct {
	OrigWidth  int
	OrigHeight int
	Scale      float64
	Width      int
	Height     int
}

// epsilon keeps products like 3000*(550/3000) from flooring one pixel short.
const epsilon = 1e-9

// Fit computes the viewport for an image of origW x origH shown inside a box
// of maxW x maxH. Images are never upscaled.
func Fit(origW, origH, maxW, maxH int) Viewport {
	v := Viewport{OrigWidth: origW, OrigHeight: origH}
	if origW <= 0 || origH <= 0 || maxW <= 0 || maxH <= 0 {
		return v
	}

	scale := math.Min(float64(maxW)/float64(origW), float64(maxH)/float64(origH))
	scale = math.Min(scale, 1.0)

	v.Scale = scale
	v.Width = scaleDim(origW, scale, maxW)
	v.Height = scaleDim(origH, scale, maxH)
	return v
}

func scaleDim(orig int, scale float64, limit int) int {
	d := int(math.Floor(float64(orig)*scale + epsilon))
	if d > limit {
		d = limit
	}
	if d > orig {
		d = orig
	}
	return d
}

// Clamp pins p inside [0, Width] x [0, Height].
func (v Viewport) Clamp(p Point) Point {
	return Point{X: clamp(p.X, 0, v.Width), Y: clamp(p.Y, 0, v.Height)}
}

// Selection builds the display-space rectangle spanned by a drag from start
// to end. Both points are clamped to the displayed image first.
func (v Viewport) Selection(start, end Point) Rect {
	a := v.Clamp(start)
	b := v.Clamp(end)
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(a.X - b.X),
		Height: abs(a.Y - b.Y),
	}
}

// ToOriginal maps a display-space rectangle to original pixels. The second
// result is false when the mapping degenerates to no crop.
func (v Viewport) ToOriginal(scaled Rect) (Rect, bool) {
	return ToOriginal(scaled, v.Scale, v.OrigWidth, v.OrigHeight)
}

// ToOriginal divides each component by scale, truncates toward zero and
// clamps the result into the original image bounds.
func ToOriginal(scaled Rect, scale float64, origW, origH int) (Rect, bool) {
	if scaled.Empty() || scale <= 0 {
		return Rect{}, false
	}

	r := Rect{
		X:      int(float64(scaled.X) / scale),
		Y:      int(float64(scaled.Y) / scale),
		Width:  int(float64(scaled.Width) / scale),
		Height: int(float64(scaled.Height) / scale),
	}
	r.X = max(r.X, 0)
	r.Y = max(r.Y, 0)
	r.Width = min(r.Width, origW-r.X)
	r.Height = min(r.Height, origH-r.Y)

	if r.Empty() {
		return Rect{}, false
	}
	return r, true
}

// ToDisplay maps an original-space rectangle onto the preview. It is only
// used for drawing and is not an inverse of ToOriginal.
func (v Viewport) ToDisplay(r Rect) Rect {
	if r.Empty() || v.Scale <= 0 {
		return Rect{}
	}
	d := Rect{
		X:      int(float64(r.X) * v.Scale),
		Y:      int(float64(r.Y) * v.Scale),
		Width:  int(float64(r.Width) * v.Scale),
		Height: int(float64(r.Height) * v.Scale),
	}
	d.X = clamp(d.X, 0, v.Width)
	d.Y = clamp(d.Y, 0, v.Height)
	d.Width = min(d.Width, v.Width-d.X)
	d.Height = min(d.Height, v.Height-d.Y)
	return d
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
