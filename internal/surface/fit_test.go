package surface

import (
	"math"
	"testing"

	"github.com/depthtouch/touchsurface/internal/depth"
)

func syntheticReference(a, b float64) *depth.Frame {
	f := depth.New(0)
	xc := depth.Width / 2
	for y := 1; y < depth.Height; y++ {
		d := a * math.Pow(float64(y), b)
		f.Set(xc, y, float32(d))
	}
	return f
}

func TestFitRecoversPowerLawCoefficients(t *testing.T) {
	// Choose A0 so that the depth at the frame's bottom row (where the
	// bottom-up walk starts) lands safely inside the valid band; B0 alone
	// controls the curve's shape.
	const b0 = 0.85
	a0 := 3000.0 / math.Pow(depth.Height-1, b0)
	ref := syntheticReference(a0, b0)

	m, err := Fit(ref)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	if math.Abs(m.A-a0) > 1e-4*a0 {
		t.Errorf("A = %v, want within 1e-4 of %v", m.A, a0)
	}
	if math.Abs(m.B-b0) > 1e-4*math.Abs(b0) {
		t.Errorf("B = %v, want within 1e-4 of %v", m.B, b0)
	}
}

func TestFitInsufficientDataWhenCenterColumnIsAllInvalid(t *testing.T) {
	f := depth.New(0)
	// Every pixel is 0, which is outside [MinValid, MaxValid]; the bottom
	// walk never finds a valid starting row.
	_, err := Fit(f)
	if err == nil {
		t.Fatal("Fit with all-invalid center column: expected ErrInsufficientData, got nil")
	}
}

func TestExpectedDepthMatchesFittedCurve(t *testing.T) {
	const b0 = 0.7
	a0 := 3000.0 / math.Pow(depth.Height-1, b0)
	ref := syntheticReference(a0, b0)

	m, err := Fit(ref)
	if err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	y := 300
	want := m.A * math.Pow(float64(y), m.B)
	if got := m.Expected(y); got != want {
		t.Errorf("Expected(%d) = %v, want %v", y, got, want)
	}
}
