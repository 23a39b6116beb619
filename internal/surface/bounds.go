package surface

import "github.com/depthtouch/touchsurface/internal/depth"

// Bounds holds, for every image row, the inclusive horizontal extent of
// pixels confidently classified as on-surface. A row with no surface is
// marked with the sentinel LeftX[y] = depth.Width, RightX[y] = -1.
type Bounds struct {
	LeftX  []int
	RightX []int
}

// NewBounds allocates a Bounds with every row set to the "no surface"
// sentinel, ready to be filled in by the classify package.
func NewBounds() *Bounds {
	b := &Bounds{
		LeftX:  make([]int, depth.Height),
		RightX: make([]int, depth.Height),
	}
	for y := 0; y < depth.Height; y++ {
		b.LeftX[y] = depth.Width
		b.RightX[y] = -1
	}
	return b
}

// HasSurface reports whether row y has any on-surface pixels.
func (b *Bounds) HasSurface(y int) bool {
	return y >= 0 && y < depth.Height && b.RightX[y] >= b.LeftX[y]
}
