// Package detect scans a classified depth frame for the single pixel
// where a foreign object touches the surface: the anomaly cascade's
// final stage, run row by row from the bottom of the frame up.
package detect

import (
	"github.com/depthtouch/touchsurface/internal/classify"
	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/surface"
)

// floodThreshold is the minimum count of connected anomaly pixels an
// anomaly-edge candidate must sit on to be treated as a real touch rather
// than a sensor noise speck.
const floodThreshold = 700

// varianceMax is the maximum acceptable depthVariance(side=20) for a
// candidate pixel. A hovering finger sits mostly clear of the surface, so
// its neighborhood variance runs high; only pixels whose neighborhood is
// mostly on-surface pass.
const varianceMax = 3000.0

// classifyDelta and varianceSide match the classifier delta and window the
// spec fixes for C5's cascade.
const (
	classifyDelta = 2
	varianceSide  = 20
)

// Candidate is the raw pixel-space result of a scan: the physical
// location and depth of the touch point, before C6 fills in virtual
// coordinates and C7 tags it as an event.
type Candidate struct {
	X, Y  int
	Depth float64
}

// Scan walks frame from the bottom row up, within each row from
// leftX[y] to min(W, rightX[y]), and returns the first pixel passing the
// full anomaly cascade: isAnomaly, isAnomalyEdge, an 8-connected flood of
// at least floodThreshold anomaly pixels, and depthVariance at or below
// varianceMax. Returns nil if no pixel qualifies.
//
// frame and reference may be the same frame (surface re-fit just ran);
// classify.Anomaly degrades its reference comparison accordingly.
func Scan(frame, reference *depth.Frame, m *surface.Model, b *surface.Bounds) *Candidate {
	for y := depth.Height - 1; y >= 0; y-- {
		if !b.HasSurface(y) {
			continue
		}
		right := b.RightX[y]
		if right >= depth.Width {
			right = depth.Width - 1
		}
		for x := b.LeftX[y]; x <= right; x++ {
			if !classify.Anomaly(frame, reference, m, b, x, y, classifyDelta) {
				continue
			}
			if !classify.AnomalyEdge(frame, reference, m, b, x, y, classifyDelta) {
				continue
			}
			if floodSize(frame, reference, m, b, x, y) < floodThreshold {
				continue
			}
			if classify.Variance(frame, b, x, y, varianceSide) > varianceMax {
				continue
			}
			return &Candidate{X: x, Y: y, Depth: depth.PixelDepth(frame, x, y, 0)}
		}
	}
	return nil
}

// floodSize runs an 8-connected BFS over anomaly pixels starting at
// (x0, y0), bounded to within-frame cells, and returns the number of
// cells reached, capped at floodThreshold (the caller only cares whether
// the true count is at least that many).
func floodSize(frame, reference *depth.Frame, m *surface.Model, b *surface.Bounds, x0, y0 int) int {
	visited := make(map[int]struct{}, floodThreshold)
	queue := []int{y0*depth.Width + x0}
	visited[queue[0]] = struct{}{}

	count := 0
	for len(queue) > 0 && count < floodThreshold {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%depth.Width, idx/depth.Width
		count++

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if !depth.InBounds(nx, ny) {
					continue
				}
				nidx := ny*depth.Width + nx
				if _, seen := visited[nidx]; seen {
					continue
				}
				if !classify.Anomaly(frame, reference, m, b, nx, ny, classifyDelta) {
					continue
				}
				visited[nidx] = struct{}{}
				queue = append(queue, nidx)
			}
		}
	}
	return count
}
