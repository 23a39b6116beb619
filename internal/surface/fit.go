// Package surface fits the oblique-mounted sensor's power-law depth model
// to a reference frame and derives the per-row horizontal bounds of the
// visible projection surface.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/depthtouch/touchsurface/internal/depth"
)

// ErrInsufficientData is returned by Fit when fewer than three usable
// samples survive the walk up the sensor-center column. It corresponds to
// SurfaceModelInsufficientData in the error taxonomy and is fatal to
// Orchestrator.Start.
var ErrInsufficientData = errors.New("surface: insufficient valid depth samples to fit power-law model")

const (
	sampleCount  = 100
	bottomMargin = 20
)

// Model is the fitted power-law surface `d = A * y^B` plus the per-row
// expected depth cache. It is built once per reference frame and is
// immutable until the reference is replaced.
type Model struct {
	A, B     float64
	expected []float64 // expected[y] = A * y^B, cached per row
}

// Expected returns the modelled depth at row y.
func (m *Model) Expected(y int) float64 {
	return m.expected[y]
}

// NewModel builds a Model directly from coefficients, caching the same
// per-row expected-depth table Fit would produce. It exists for callers
// that already know A and B (tests and diagnostic tooling) without a
// reference frame to regress against.
func NewModel(a, b float64) *Model {
	expected := make([]float64, depth.Height)
	for y := 0; y < depth.Height; y++ {
		expected[y] = a * math.Pow(float64(y), b)
	}
	return &Model{A: a, B: b, expected: expected}
}

// Fit builds a Model from a reference frame by sampling the sensor-center
// column from the bottom of the frame upward, then regressing
// `d = A * y^B` in log-log space.
func Fit(reference *depth.Frame) (*Model, error) {
	xc := depth.Width / 2

	yBottom := depth.Height - 1
	for yBottom >= 0 {
		d := depth.PixelDepth(reference, xc, yBottom, 0)
		if d > depth.MinValid && d < depth.MaxValid {
			break
		}
		yBottom--
	}
	yBottom -= bottomMargin
	if yBottom < 0 {
		return nil, fmt.Errorf("%w: no valid depth found near frame bottom", ErrInsufficientData)
	}

	var lnX, lnY, lnXlnY, lnX2 float64
	n := 0
	for i := 0; i < sampleCount; i++ {
		y := yBottom - i
		if y <= 0 {
			break
		}
		d := depth.PixelDepth(reference, xc, y, 0)
		if d <= 0 {
			// ln is undefined for non-positive depths; the source never
			// guarded this. Skip the sample instead of producing NaN.
			continue
		}
		lx := math.Log(float64(y))
		ly := math.Log(d)
		lnX += lx
		lnY += ly
		lnXlnY += lx * ly
		lnX2 += lx * lx
		n++
	}

	if n < 3 {
		return nil, ErrInsufficientData
	}

	fn := float64(n)
	denom := fn*lnX2 - lnX*lnX
	if denom == 0 {
		return nil, ErrInsufficientData
	}
	B := (fn*lnXlnY - lnX*lnY) / denom
	A := math.Exp((lnY - B*lnX) / fn)

	return NewModel(A, B), nil
}
