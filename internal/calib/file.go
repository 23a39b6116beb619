package calib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a calibration file's line count or
// field layout doesn't match the text format: 5 whitespace-separated
// fields per line (px py pz vx vy), row-major, no header.
var ErrMalformed = errors.New("calib: malformed calibration file")

// ReadFile parses a calibration file into a Grid with the given
// dimensions. Line count must equal rows*cols exactly.
func ReadFile(path string, rows, cols int) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, rows, cols)
}

// Parse reads the calibration text format from r. Each line holds
// "px py pz vx vy"; unknown lines (wrong field count, unparseable
// numbers) are errors, not skipped.
func Parse(r io.Reader, rows, cols int) (*Grid, error) {
	n := rows * cols
	physical := make([]Physical, 0, n)
	virtual := make([]Virtual, 0, n)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lineNo++
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: line %d: expected 5 fields, got %d", ErrMalformed, lineNo, len(fields))
		}

		px, err1 := strconv.ParseFloat(fields[0], 64)
		py, err2 := strconv.ParseFloat(fields[1], 64)
		pz, err3 := strconv.ParseFloat(fields[2], 64)
		vx, err4 := strconv.Atoi(fields[3])
		vy, err5 := strconv.Atoi(fields[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, fmt.Errorf("%w: line %d: unparseable field", ErrMalformed, lineNo)
		}

		physical = append(physical, Physical{X: px, Y: py, Z: pz})
		virtual = append(virtual, Virtual{X: vx, Y: vy})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if lineNo != n {
		return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrMalformed, n, lineNo)
	}

	return NewGrid(rows, cols, physical, virtual)
}

// WriteFile persists a Grid back to the text format ReadFile/Parse
// accept, row-major, one line per sample.
func WriteFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, g)
}

// Write serializes g to w in the calibration text format.
func Write(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for i, p := range g.Physical {
		v := g.Virtual[i]
		if _, err := fmt.Fprintf(bw, "%g %g %g %d %d\n", p.X, p.Y, p.Z, v.X, v.Y); err != nil {
			return err
		}
	}
	return bw.Flush()
}
