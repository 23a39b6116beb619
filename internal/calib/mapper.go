package calib

import "math"

// Mapper converts physical sensor-image coordinates into virtual
// display-pixel coordinates via piecewise-bilinear interpolation over
// a Grid's cells.
type Mapper struct {
	Grid                       *Grid
	ScreenWidth, ScreenHeight int
}

// NewMapper pairs a Grid with the display dimensions the virtual
// coordinates it produces are scaled against.
func NewMapper(g *Grid, screenWidth, screenHeight int) *Mapper {
	return &Mapper{Grid: g, ScreenWidth: screenWidth, ScreenHeight: screenHeight}
}

// Map finds the calibration cell straddling (px, py) and interpolates
// within it to produce a display-space point, clamped to the screen.
func (m *Mapper) Map(px, py float64) Virtual {
	g := m.Grid

	r := 1
	for r < g.Rows-1 && g.AvgY[r] < py {
		r++
	}

	c := 0
	for cc := g.Cols - 2; cc >= 1; cc-- {
		if colX(g, r, cc, py) >= px {
			c = cc
			break
		}
	}

	xL := colX(g, r, c, py)
	xR := colX(g, r, c+1, py)

	var pctX float64
	if xL != xR {
		// Sensor image x is mirrored relative to display x in the
		// calibrated geometry this was validated against.
		pctX = (xL - px) / (xL - xR)
	}

	var pctY float64
	rowSpan := g.AvgY[r] - g.AvgY[r-1]
	if rowSpan != 0 {
		pctY = (py - g.AvgY[r-1]) / rowSpan
	}

	anchor := g.Virtual[(r-1)*g.Cols+c]
	vx0, vy0 := float64(anchor.X), float64(anchor.Y)
	wv := float64(g.Virtual[(r-1)*g.Cols+c+1].X) - vx0
	hv := float64(g.Virtual[r*g.Cols+c].Y) - vy0

	pctRight := vx0/float64(m.ScreenWidth) + pctX*(wv/float64(m.ScreenWidth))
	pctDown := vy0/float64(m.ScreenHeight) + pctY*(hv/float64(m.ScreenHeight))

	pctRight = clamp01(pctRight)
	pctDown = clamp01(pctDown)

	return Virtual{
		X: int(math.Round(pctRight * float64(m.ScreenWidth))),
		Y: int(math.Round(pctDown * float64(m.ScreenHeight))),
	}
}

// colX linearly interpolates the physical x of column c at sensor-image
// row y = py, between the row-averaged samples at grid rows r-1 and r.
func colX(g *Grid, r, c int, py float64) float64 {
	a, b := g.at(r-1, c), g.at(r, c)
	if b.Y == a.Y {
		return a.X
	}
	t := (py - a.Y) / (b.Y - a.Y)
	return a.X + t*(b.X-a.X)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
