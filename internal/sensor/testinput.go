package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/depthtouch/touchsurface/internal/depth"
)

// frameHeaderSize is the size of each recorded frame's header, a 4-byte
// little-endian frame timestamp. On disk it is followed by
// depth.Width*depth.Height little-endian float32 depths, row-major.
const frameHeaderSize = 4

// TestInput replays a stored binary depth recording, looping, paced at
// a configurable frame rate via golang.org/x/time/rate, standing in
// for the natural cadence a real sensor driver would impose, so a
// --use-test-inputs run exercises the same timeout/pacing code paths
// as a live device.
type TestInput struct {
	frames  []*depth.Frame
	next    int
	limiter *rate.Limiter
	started bool
}

// LoadTestInput reads a recording from path and returns a TestInput
// pacing frame delivery at fps frames per second.
func LoadTestInput(path string, fps float64) (*TestInput, error) {
	frames, err := readRecording(path)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: recording %q contains no frames", ErrUnavailable, path)
	}
	return &TestInput{
		frames:  frames,
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
	}, nil
}

func (t *TestInput) Start() error {
	t.started = true
	return nil
}

func (t *TestInput) Stop() error {
	t.started = false
	return nil
}

func (t *TestInput) Release(*Frames) {}

// ReadFrames waits for the pacing limiter to admit the next frame,
// bounded by timeout, then returns the next frame in the recording,
// looping back to the start once exhausted.
func (t *TestInput) ReadFrames(timeout time.Duration) (*Frames, error) {
	if !t.started {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, ErrTimeout
	}

	f := t.frames[t.next%len(t.frames)]
	t.next++
	return &Frames{Depth: f}, nil
}

func readRecording(path string) ([]*depth.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	recordSize := frameHeaderSize + depth.Width*depth.Height*4
	if len(data) == 0 || len(data)%recordSize != 0 {
		return nil, fmt.Errorf("%w: recording size %d is not a multiple of the %d-byte frame record", ErrUnavailable, len(data), recordSize)
	}

	n := len(data) / recordSize
	frames := make([]*depth.Frame, n)
	for i := 0; i < n; i++ {
		rec := data[i*recordSize : (i+1)*recordSize]
		timestamp := binary.LittleEndian.Uint32(rec[:frameHeaderSize])

		pixels := make([]float32, depth.Width*depth.Height)
		body := rec[frameHeaderSize:]
		for j := range pixels {
			bits := binary.LittleEndian.Uint32(body[j*4 : j*4+4])
			pixels[j] = math.Float32frombits(bits)
		}

		f, err := depth.FromPixels(pixels, timestamp)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return frames, nil
}

// WriteRecording persists frames to path in the format readRecording
// accepts, so a diagnose session can write its retained frames back
// out for later replay under --use-test-inputs.
func WriteRecording(path string, frames []*depth.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, frameHeaderSize+depth.Width*depth.Height*4)
	for _, fr := range frames {
		binary.LittleEndian.PutUint32(buf[:frameHeaderSize], fr.Timestamp)
		body := buf[frameHeaderSize:]
		for y := 0; y < depth.Height; y++ {
			for x := 0; x < depth.Width; x++ {
				idx := (y*depth.Width + x) * 4
				binary.LittleEndian.PutUint32(body[idx:idx+4], math.Float32bits(fr.At(x, y)))
			}
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
