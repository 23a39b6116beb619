package calib

import (
	"strings"
	"testing"
)

// linearGrid builds a 3x3 grid where physical and virtual coordinates
// are both exact linear (mirrored-x) images of the row/column index,
// so the mapper's bilinear interpolation is exact at every sample and
// at every point in between.
func linearGrid(t *testing.T) *Grid {
	t.Helper()
	rows, cols := 3, 3
	physical := make([]Physical, 0, rows*cols)
	virtual := make([]Virtual, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// Sensor x decreases left-to-right (mirrored), y increases
			// row-to-row; display x/y both increase with column/row.
			px := float64(200 - c*50)
			py := float64(100 + r*100)
			vx := c * 400
			vy := r * 300
			physical = append(physical, Physical{X: px, Y: py, Z: 2000})
			virtual = append(virtual, Virtual{X: vx, Y: vy})
		}
	}
	g, err := NewGrid(rows, cols, physical, virtual)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestNewGridRejectsTooSmall(t *testing.T) {
	_, err := NewGrid(1, 3, make([]Physical, 3), make([]Virtual, 3))
	if err != ErrGridTooSmall {
		t.Errorf("NewGrid(1 row) error = %v, want ErrGridTooSmall", err)
	}
}

func TestNewGridRejectsNonMonotonicVirtualX(t *testing.T) {
	rows, cols := 2, 2
	physical := make([]Physical, rows*cols)
	for i := range physical {
		physical[i] = Physical{X: float64(i), Y: float64(i / cols * 100), Z: 2000}
	}
	virtual := []Virtual{{0, 0}, {0, 0}, {0, 100}, {400, 100}} // row 0: x does not increase
	_, err := NewGrid(rows, cols, physical, virtual)
	if err == nil {
		t.Error("NewGrid with non-increasing row virtual.x: expected error, got nil")
	}
}

func TestMapperRecoversCalibrationSamplesWithinOnePixel(t *testing.T) {
	g := linearGrid(t)
	m := NewMapper(g, 1600, 900)

	for i, p := range g.Physical {
		want := g.Virtual[i]
		got := m.Map(p.X, p.Y)
		if abs(got.X-want.X) > 1 {
			t.Errorf("sample %d: Map(%v,%v).X = %d, want %d ±1", i, p.X, p.Y, got.X, want.X)
		}
		if abs(got.Y-want.Y) > 1 {
			t.Errorf("sample %d: Map(%v,%v).Y = %d, want %d ±1", i, p.X, p.Y, got.Y, want.Y)
		}
	}
}

func TestMapperClampsArbitraryInput(t *testing.T) {
	g := linearGrid(t)
	m := NewMapper(g, 1600, 900)

	cases := [][2]float64{
		{-10000, -10000},
		{100000, 100000},
		{0, 0},
		{50, 1000},
	}
	for _, c := range cases {
		got := m.Map(c[0], c[1])
		if got.X < 0 || got.X > m.ScreenWidth {
			t.Errorf("Map(%v,%v).X = %d, want within [0,%d]", c[0], c[1], got.X, m.ScreenWidth)
		}
		if got.Y < 0 || got.Y > m.ScreenHeight {
			t.Errorf("Map(%v,%v).Y = %d, want within [0,%d]", c[0], c[1], got.Y, m.ScreenHeight)
		}
	}
}

func TestParseRoundTripsWriteFile(t *testing.T) {
	g := linearGrid(t)

	var sb strings.Builder
	if err := Write(&sb, g); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(strings.NewReader(sb.String()), g.Rows, g.Cols)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := range g.Virtual {
		if got.Virtual[i] != g.Virtual[i] {
			t.Errorf("sample %d: virtual = %+v, want %+v", i, got.Virtual[i], g.Virtual[i])
		}
	}
}

func TestParseRejectsWrongLineCount(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 3 4 5\n"), 3, 3)
	if err == nil {
		t.Error("Parse with too few lines: expected error, got nil")
	}
}

func TestParseRejectsMalformedField(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 notanumber 4 5\n"), 1, 1)
	if err == nil {
		t.Error("Parse with non-numeric field: expected error, got nil")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
