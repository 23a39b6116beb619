// Package classify implements the per-pixel tests that tell the surface
// from the air above it and an anomaly from the surface's own edge: the
// cascade the interaction detector scans with.
package classify

import (
	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/surface"
)

// surfaceDepthTolerance and surfaceSlopeTolerance bound how far a live
// pixel's depth and row-to-row slope may drift from the fitted surface
// model and still count as "on surface"; the reference pair are the
// tighter bounds OnReference applies against the stored reference frame.
const (
	surfaceDepthTolerance = 200.0
	surfaceSlopeTolerance = 5.0

	referenceDepthTolerance = 10.0
	referenceSlopeTolerance = 5.0
)

// OnSurface reports whether the pixel at (x, y) matches the fitted
// power-law surface model in both depth and row-to-row slope.
func OnSurface(f *depth.Frame, m *surface.Model, x, y, delta int) bool {
	d := depth.PixelDepth(f, x, y, delta)
	if !depth.Valid(d) {
		return false
	}

	yPrime := y - 1
	if y == 0 {
		yPrime = y + 1
	}
	dPrime := depth.PixelDepth(f, x, yPrime, delta)

	s := m.Expected(y)
	sPrime := m.Expected(yPrime)

	if abs(d-s) >= surfaceDepthTolerance {
		return false
	}
	return abs((d-dPrime)-(s-sPrime)) < surfaceSlopeTolerance
}

// OnReference reports whether the pixel at (x, y) in the live frame
// matches the stored reference frame in both depth and row-to-row slope,
// using the tighter thresholds appropriate to two live captures of the
// same quiet surface. Callers skip this test when frame is the reference
// itself.
func OnReference(frame, reference *depth.Frame, x, y, delta int) bool {
	d := depth.PixelDepth(frame, x, y, delta)
	if !depth.Valid(d) {
		return false
	}
	rd := depth.PixelDepth(reference, x, y, delta)

	yPrime := y - 1
	if y == 0 {
		yPrime = y + 1
	}
	dPrime := depth.PixelDepth(frame, x, yPrime, delta)
	rdPrime := depth.PixelDepth(reference, x, yPrime, delta)

	if abs(d-rd) >= referenceDepthTolerance {
		return false
	}
	return abs((d-dPrime)-(rd-rdPrime)) < referenceSlopeTolerance
}

// OnSurfaceEdge reports whether (x, y) sits on the boundary of the
// surface mask: either of its vertical neighbor rows (or the row itself)
// has no surface at column x, or y is at the top/bottom of the frame.
func OnSurfaceEdge(b *surface.Bounds, x, y int) bool {
	if y == 0 || y == depth.Height-1 {
		return true
	}
	if !withinRow(b, x, y) {
		return true
	}
	if !withinRow(b, x, y-1) {
		return true
	}
	if !withinRow(b, x, y+1) {
		return true
	}
	return false
}

func withinRow(b *surface.Bounds, x, y int) bool {
	return x > b.LeftX[y] && x < b.RightX[y]
}

// Anomaly reports whether (x, y) is foreign to the surface: it fails
// OnSurface, it is not merely the surface's own edge, and (when frame is
// not the reference) it also differs from the quiet reference capture.
func Anomaly(frame, reference *depth.Frame, m *surface.Model, b *surface.Bounds, x, y, delta int) bool {
	if OnSurface(frame, m, x, y, delta) {
		return false
	}
	if OnSurfaceEdge(b, x, y) {
		return false
	}
	if frame == reference {
		return true
	}
	return !OnReference(frame, reference, x, y, delta)
}

// AnomalyEdge reports whether (x, y) is an anomaly with at least one
// 8-neighbor that is not: the visible boundary where a finger meets the
// surface.
func AnomalyEdge(frame, reference *depth.Frame, m *surface.Model, b *surface.Bounds, x, y, delta int) bool {
	if !Anomaly(frame, reference, m, b, x, y, delta) {
		return false
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !depth.InBounds(nx, ny) {
				continue
			}
			if !Anomaly(frame, reference, m, b, nx, ny, delta) {
				return true
			}
		}
	}
	return false
}

// Variance computes E[d^2] - E[d]^2 over the side x side window centered
// on (x, y), restricted to pixels inside the frame and within the row's
// surface bounds. Pixels outside those bounds contribute 0, deliberately
// inflating the variance when the window strays off-surface.
func Variance(f *depth.Frame, b *surface.Bounds, x, y, side int) float64 {
	half := side / 2
	var sum, sumSq float64
	n := 0
	for dy := -half; dy < side-half; dy++ {
		py := y + dy
		if py < 0 || py >= depth.Height {
			n += side
			continue
		}
		for dx := -half; dx < side-half; dx++ {
			px := x + dx
			n++
			if px < 0 || px >= depth.Width {
				continue
			}
			if px < b.LeftX[py] || px > b.RightX[py] {
				continue
			}
			d := float64(f.At(px, py))
			sum += d
			sumSq += d * d
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	meanSq := sumSq / float64(n)
	return meanSq - mean*mean
}

// BuildBounds derives the per-row surface bounds from a reference frame
// and its fitted model. A pixel is "confidently on surface" only if every
// pixel in its 3x3 neighborhood passes OnSurface(delta=2); this erosion
// produces a conservative interior mask that excludes the surface's own
// edge, where foreign objects would otherwise generate false anomalies.
func BuildBounds(reference *depth.Frame, m *surface.Model) *surface.Bounds {
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		left, right := -1, -1
		for x := 0; x < depth.Width; x++ {
			if !confidentlyOnSurface(reference, m, x, y) {
				continue
			}
			if left == -1 {
				left = x
			}
			right = x
		}
		if left == -1 {
			b.LeftX[y] = depth.Width
			b.RightX[y] = -1
		} else {
			b.LeftX[y] = left
			b.RightX[y] = right
		}
	}
	return b
}

func confidentlyOnSurface(reference *depth.Frame, m *surface.Model, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		py := y + dy
		if py < 0 || py >= depth.Height {
			return false
		}
		for dx := -1; dx <= 1; dx++ {
			px := x + dx
			if px < 0 || px >= depth.Width {
				return false
			}
			if !OnSurface(reference, m, px, py, 2) {
				return false
			}
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
