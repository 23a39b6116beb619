package classify

import (
	"testing"

	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/surface"
)

// flatModel returns a Model whose expected depth is a constant d for every
// row (B=0 collapses A*y^B to A), standing in for a fitted power-law
// surface in tests that only care about the classifier thresholds.
func flatModel(d float64) *surface.Model {
	return surface.NewModel(d, 0)
}

// newFlatFrame builds a frame where every in-bounds pixel in [x0,x1]x[0,H)
// holds depth d; everything else is 0 (invalid).
func newFlatFrame(d float32, x0, x1 int) *depth.Frame {
	f := depth.New(0)
	for y := 0; y < depth.Height; y++ {
		for x := x0; x <= x1; x++ {
			f.Set(x, y, d)
		}
	}
	return f
}

func TestOnSurfaceAcceptsMatchingFlatDepth(t *testing.T) {
	m := flatModel(2000)
	f := newFlatFrame(2000, 0, depth.Width-1)

	if !OnSurface(f, m, 250, 200, 0) {
		t.Error("OnSurface: expected true for pixel matching flat model exactly")
	}
}

func TestOnSurfaceRejectsDepthOutsideTolerance(t *testing.T) {
	m := flatModel(2000)
	f := newFlatFrame(2500, 0, depth.Width-1) // 500mm off, beyond 200mm tolerance

	if OnSurface(f, m, 250, 200, 0) {
		t.Error("OnSurface: expected false when depth deviates beyond tolerance")
	}
}

func TestOnSurfaceRejectsInvalidDepth(t *testing.T) {
	m := flatModel(2000)
	f := depth.New(0) // all zeros: invalid

	if OnSurface(f, m, 250, 200, 0) {
		t.Error("OnSurface: expected false for invalid (zero) depth")
	}
}

func TestOnSurfaceEdgeTrueAtFrameBoundary(t *testing.T) {
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		b.LeftX[y], b.RightX[y] = 0, depth.Width-1
	}
	if !OnSurfaceEdge(b, 250, 0) {
		t.Error("OnSurfaceEdge: expected true at y=0 (frame boundary)")
	}
	if !OnSurfaceEdge(b, 250, depth.Height-1) {
		t.Error("OnSurfaceEdge: expected true at bottom row (frame boundary)")
	}
}

func TestOnSurfaceEdgeFalseInteriorOfUniformSurface(t *testing.T) {
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		b.LeftX[y], b.RightX[y] = 0, depth.Width-1
	}
	if OnSurfaceEdge(b, 250, 200) {
		t.Error("OnSurfaceEdge: expected false for interior pixel of a uniformly bounded surface")
	}
}

func TestOnSurfaceEdgeTrueWhenNeighborRowLacksSurface(t *testing.T) {
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		b.LeftX[y], b.RightX[y] = 0, depth.Width-1
	}
	// Row above has no surface at all.
	b.LeftX[199] = depth.Width
	b.RightX[199] = -1

	if !OnSurfaceEdge(b, 250, 200) {
		t.Error("OnSurfaceEdge: expected true when a neighbor row has no surface at this column")
	}
}

func TestVarianceZeroOnConstantDepthFrame(t *testing.T) {
	f := newFlatFrame(2000, 0, depth.Width-1)
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		b.LeftX[y], b.RightX[y] = 0, depth.Width-1
	}

	if v := Variance(f, b, 250, 200, 20); v != 0 {
		t.Errorf("Variance on constant-depth frame = %v, want 0", v)
	}
}

func TestVarianceInflatedOutsideSurfaceBounds(t *testing.T) {
	f := newFlatFrame(2000, 0, depth.Width-1)
	b := surface.NewBounds()
	for y := 0; y < depth.Height; y++ {
		// Surface only covers the left half of the frame.
		b.LeftX[y], b.RightX[y] = 0, depth.Width/2-1
	}

	// Window centered past the surface boundary mixes real depth with
	// zero-contribution off-surface pixels, inflating variance above 0.
	v := Variance(f, b, depth.Width/2+5, 200, 20)
	if v <= 0 {
		t.Errorf("Variance straddling surface boundary = %v, want > 0", v)
	}
}

func TestBuildBoundsSentinelWhenNoSurface(t *testing.T) {
	f := depth.New(0) // all-invalid frame: no surface anywhere
	m := flatModel(2000)

	b := BuildBounds(f, m)
	for y := 0; y < depth.Height; y++ {
		if b.HasSurface(y) {
			t.Fatalf("row %d: expected no-surface sentinel, got leftX=%d rightX=%d", y, b.LeftX[y], b.RightX[y])
		}
	}
}

func TestBuildBoundsInteriorPassesOnSurface(t *testing.T) {
	f := newFlatFrame(2000, 50, 400)
	m := flatModel(2000)

	b := BuildBounds(f, m)
	y := 200
	if !b.HasSurface(y) {
		t.Fatalf("row %d: expected surface to be detected", y)
	}
	for x := b.LeftX[y] + 1; x < b.RightX[y]; x++ {
		if !OnSurface(f, m, x, y, 2) {
			t.Errorf("row %d col %d: interior column failed OnSurface, violating bounds invariant", y, x)
		}
	}
}
