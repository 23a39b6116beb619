// Package sensor defines the depth-sensor contract the orchestrator
// reads frames from, plus a test-input implementation that replays a
// stored binary depth recording instead of a physical device.
package sensor

import (
	"errors"
	"time"

	"github.com/depthtouch/touchsurface/internal/depth"
)

// ErrUnavailable is returned when no sensor is enumerated/started,
// fatal at startup, per the SensorUnavailable taxonomy entry.
var ErrUnavailable = errors.New("sensor: unavailable")

// ErrTimeout is returned when no frame arrives within the read
// timeout. The worker logs it and continues, per SensorTimeout.
var ErrTimeout = errors.New("sensor: timeout")

// Frames is one tick's bundle of sensor output. Depth is always
// present when ReadFrames succeeds; Color/Infrared/Registered are
// optional and nil when the sensor or recording doesn't carry them.
type Frames struct {
	Color      []byte
	Depth      *depth.Frame
	Infrared   []byte
	Registered []byte
}

// Sensor is the contract the orchestrator consumes. It is implemented
// by a real device driver outside this module's scope; TestInput below
// implements it over a stored recording for --use-test-inputs.
type Sensor interface {
	Start() error
	Stop() error
	// ReadFrames blocks until a frame is available or timeout elapses.
	ReadFrames(timeout time.Duration) (*Frames, error)
	// Release returns borrowed frame buffers to the sensor.
	Release(f *Frames)
}
