// Package diagnostic writes the plain-text PPM rasters spec.md §4.9
// describes: depth, surface-depth, surface-slope, and interaction
// views, for visual inspection of a session's classification state.
// None of this runs on the detection hot path; the diagnose subcommand
// is its only caller.
package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/depthtouch/touchsurface/internal/classify"
	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/detect"
	"github.com/depthtouch/touchsurface/internal/surface"
)

const maxIntensity = 255

type rgb struct{ r, g, b int }

var (
	colorWhite   = rgb{255, 255, 255}
	colorGray    = rgb{128, 128, 128}
	colorPurple  = rgb{128, 0, 128}
	colorBlue    = rgb{0, 0, 255}
	colorGreen   = rgb{0, 255, 0}
	colorYellow  = rgb{255, 255, 0}
	colorOrange  = rgb{255, 165, 0}
	colorRed     = rgb{255, 0, 0}
	colorDarkRed = rgb{139, 0, 0}
	colorBlack   = rgb{0, 0, 0}

	colorDefault     = rgb{40, 40, 40}
	colorSurface     = rgb{0, 180, 0}
	colorAnomaly     = rgb{220, 0, 0}
	colorInteraction = rgb{255, 0, 255}
)

func writeHeader(w *bufio.Writer) error {
	_, err := fmt.Fprintf(w, "P3 %d %d %d\n", depth.Width, depth.Height, maxIntensity)
	return err
}

func writePixel(w *bufio.Writer, c rgb) error {
	_, err := fmt.Fprintf(w, "%d %d %d ", c.r, c.g, c.b)
	return err
}

// WriteDepth emits the "depth" view: each pixel colored by d mod 256,
// a barber-pole shade that exposes fine relief in the raw readings.
func WriteDepth(w io.Writer, f *depth.Frame) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw); err != nil {
		return err
	}
	for y := 0; y < depth.Height; y++ {
		for x := 0; x < depth.Width; x++ {
			shade := int(math.Mod(float64(f.At(x, y)), 256))
			if shade < 0 {
				shade += 256
			}
			if err := writePixel(bw, rgb{shade, shade, shade}); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// surfaceDepthColor applies the deviation-from-expected color ladder.
func surfaceDepthColor(valid bool, deviation float64) rgb {
	switch {
	case deviation < 10:
		return colorWhite
	case deviation < 25:
		return colorGray
	case deviation < 50:
		return colorPurple
	case deviation < 100:
		return colorBlue
	case deviation < 150:
		return colorGreen
	case deviation < 200:
		return colorYellow
	case deviation < 250:
		return colorOrange
	case deviation < 300:
		return colorRed
	case valid:
		return colorDarkRed
	default:
		return colorBlack
	}
}

// WriteSurfaceDepth emits the "surface-depth" view: each pixel colored
// by |d - expected_surface_depth(y)|.
func WriteSurfaceDepth(w io.Writer, f *depth.Frame, m *surface.Model) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw); err != nil {
		return err
	}
	for y := 0; y < depth.Height; y++ {
		expected := m.Expected(y)
		for x := 0; x < depth.Width; x++ {
			d := depth.PixelDepth(f, x, y, 0)
			valid := depth.Valid(d)
			deviation := math.Abs(d - expected)
			if err := writePixel(bw, surfaceDepthColor(valid, deviation)); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSurfaceSlope emits the "surface-slope" view: red where the
// row-to-row depth change agrees with the surface model's predicted
// change within 5mm, green where depth is valid but slope disagrees
// (and on the top row or below an invalid pixel, where no slope is
// measured), black where depth is invalid.
func WriteSurfaceSlope(w io.Writer, f *depth.Frame, m *surface.Model) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw); err != nil {
		return err
	}
	for y := 0; y < depth.Height; y++ {
		for x := 0; x < depth.Width; x++ {
			d := depth.PixelDepth(f, x, y, 0)
			if !depth.Valid(d) {
				if err := writePixel(bw, colorBlack); err != nil {
					return err
				}
				continue
			}
			c := colorGreen
			if y > 0 {
				prev := depth.PixelDepth(f, x, y-1, 0)
				if depth.Valid(prev) {
					actualSlope := d - prev
					modelSlope := m.Expected(y) - m.Expected(y-1)
					if math.Abs(actualSlope-modelSlope) <= 5 {
						c = colorRed
					}
				}
			}
			if err := writePixel(bw, c); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteInteraction emits the optional "interaction" view: each pixel
// tagged default/surface/anomaly, with the detected candidate (if
// any) picked out in its own color.
func WriteInteraction(w io.Writer, frame, reference *depth.Frame, m *surface.Model, b *surface.Bounds, candidate *detect.Candidate) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw); err != nil {
		return err
	}
	for y := 0; y < depth.Height; y++ {
		for x := 0; x < depth.Width; x++ {
			c := colorDefault
			switch {
			case candidate != nil && candidate.X == x && candidate.Y == y:
				c = colorInteraction
			case classify.Anomaly(frame, reference, m, b, x, y, 2):
				c = colorAnomaly
			case classify.OnSurface(frame, m, x, y, 2):
				c = colorSurface
			}
			if err := writePixel(bw, c); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
