// Package orchestrator owns the reference frame, surface model,
// calibration grid, and sensor handle, and drives the worker loop that
// turns sensor frames into Interactions. It is the single place the
// concurrency model spec.md §5 describes (a UI task and one worker
// task at a time) is implemented.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/depthtouch/touchsurface/internal/calib"
	"github.com/depthtouch/touchsurface/internal/classify"
	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/detect"
	"github.com/depthtouch/touchsurface/internal/event"
	"github.com/depthtouch/touchsurface/internal/framebuf"
	"github.com/depthtouch/touchsurface/internal/sensor"
	"github.com/depthtouch/touchsurface/internal/surface"
)

// recentFrameCapacity is how many of the most recently processed
// frames RunWorker retains, for out-of-order detection and for a
// diagnose session to dump as a recording after the fact.
const recentFrameCapacity = 120

// Error taxonomy per spec.md §7. Each is a sentinel so callers can
// errors.Is against it rather than matching on string content.
var (
	ErrSensorUnavailable           = errors.New("orchestrator: no sensor enumerated at startup")
	ErrSensorTimeout               = errors.New("orchestrator: sensor read timed out")
	ErrSurfaceModelInsufficientData = errors.New("orchestrator: reference frame has no usable surface samples")
	ErrCalibrationMissing          = errors.New("orchestrator: detect_once called without a calibration grid")
	ErrFrameDimensionMismatch      = errors.New("orchestrator: live frame dimensions do not match the sensor contract")
	ErrCalibrationFileMalformed    = errors.New("orchestrator: calibration file is malformed")
)

// DefaultSensorTimeout is the per-read timeout spec.md §5 names.
const DefaultSensorTimeout = 10 * time.Second

// Mode is the UI task's state machine, per spec.md §5.
type Mode int

const (
	Paused Mode = iota
	Detecting
	Calibrating
)

// Result is one worker tick's outcome: either an Interaction (when the
// cascade found one) or nothing.
type Result struct {
	Found     bool
	PhysX     float64
	PhysY     float64
	PhysZ     float64
	VirtualX  int
	VirtualY  int
	Timestamp uint32
}

// Orchestrator owns the long-lived session state. The zero value is
// not usable; construct with New.
type Orchestrator struct {
	log       *logrus.Entry
	sensor    sensor.Sensor
	sessionID string

	screenWidth, screenHeight int
	sensorTimeout             time.Duration

	mu          sync.Mutex
	reference   *depth.Frame
	model       *surface.Model
	bounds      *surface.Bounds
	grid        *calib.Grid
	mapper      *calib.Mapper
	calibrating bool
	recognizer  *event.Recognizer
	recent      *framebuf.Ring

	cancel          atomic.Bool
	consecutiveTimeouts atomic.Int64

	workerWG sync.WaitGroup
}

// New returns an Orchestrator over the given sensor, with a fresh
// session id for log correlation.
func New(s sensor.Sensor, screenWidth, screenHeight int, log *logrus.Logger) *Orchestrator {
	id := uuid.NewString()
	return &Orchestrator{
		log:           log.WithField("session", id),
		sensor:        s,
		sessionID:     id,
		screenWidth:   screenWidth,
		screenHeight:  screenHeight,
		sensorTimeout: DefaultSensorTimeout,
		recognizer:    event.NewRecognizer(),
		recent:        framebuf.New(recentFrameCapacity),
	}
}

// RecentFrames returns the most recently processed frames, oldest
// first, up to recentFrameCapacity. A diagnose session uses this to
// write a recording of the tail of a run with sensor.WriteRecording.
func (o *Orchestrator) RecentFrames() []*depth.Frame {
	return o.recent.All()
}

// TrackFrame records f in the retained frame tail. RunWorker calls
// this itself; callers that read frames directly (diagnose, which
// drives detect.Scan by hand instead of through RunWorker) must call
// it for their frames to show up in RecentFrames.
func (o *Orchestrator) TrackFrame(f *depth.Frame) {
	o.recent.Push(f)
}

// SessionID returns the session's correlation id, used in log fields
// and diagnostic filenames.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// SetSensorTimeout overrides DefaultSensorTimeout.
func (o *Orchestrator) SetSensorTimeout(d time.Duration) { o.sensorTimeout = d }

// Start acquires the sensor, reads one frame as the reference, and
// builds the SurfaceModel from it.
func (o *Orchestrator) Start() error {
	if err := o.sensor.Start(); err != nil {
		o.log.WithError(err).Error("sensor start failed")
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}

	frames, err := o.sensor.ReadFrames(o.sensorTimeout)
	if err != nil {
		o.log.WithError(err).Error("initial reference read failed")
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	defer o.sensor.Release(frames)

	return o.setReference(frames.Depth)
}

// setReference deep-copies live as the new reference frame and
// (re)builds the SurfaceModel and Bounds from it.
func (o *Orchestrator) setReference(live *depth.Frame) error {
	reference := live.Clone()

	model, err := surface.Fit(reference)
	if err != nil {
		o.log.WithError(err).Warn("surface fit failed")
		return fmt.Errorf("%w: %v", ErrSurfaceModelInsufficientData, err)
	}
	bounds := classify.BuildBounds(reference, model)

	o.mu.Lock()
	o.reference = reference
	o.model = model
	o.bounds = bounds
	o.mu.Unlock()

	o.log.WithFields(logrus.Fields{"a": model.A, "b": model.B}).Info("surface model fit")
	return nil
}

// InvalidateReference drops the current reference, forcing the next
// detect_once call to treat its live frame as the new reference.
func (o *Orchestrator) InvalidateReference() {
	o.mu.Lock()
	o.reference = nil
	o.mu.Unlock()
}

// SetCalibration replaces the CalibrationGrid. Per spec.md §5 this
// must only be called while no worker is running.
func (o *Orchestrator) SetCalibration(rows, cols int, physical []calib.Physical, virtual []calib.Virtual) error {
	g, err := calib.NewGrid(rows, cols, physical, virtual)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCalibrationFileMalformed, err)
	}
	o.mu.Lock()
	o.grid = g
	o.mapper = calib.NewMapper(g, o.screenWidth, o.screenHeight)
	o.mu.Unlock()
	return nil
}

// DetectOnce runs the classification/detection/mapping cascade over
// live once; the event recognizer is fed by RunWorker, not here. calibrating skips C6 (virtual mapping) for a
// calibration-collection session that only needs physical coordinates.
func (o *Orchestrator) DetectOnce(live *depth.Frame, calibrating bool) (Result, error) {
	if len(live.Pixels) != depth.Width*depth.Height {
		return Result{}, ErrFrameDimensionMismatch
	}

	o.mu.Lock()
	reference := o.reference
	model := o.model
	bounds := o.bounds
	mapper := o.mapper
	o.mu.Unlock()

	if reference == nil {
		if err := o.setReference(live); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}
	if model == nil || bounds == nil {
		return Result{}, ErrSurfaceModelInsufficientData
	}
	if !calibrating && mapper == nil {
		return Result{}, ErrCalibrationMissing
	}

	candidate := detect.Scan(live, reference, model, bounds)
	if candidate == nil {
		return Result{}, nil
	}

	res := Result{
		Found:     true,
		PhysX:     float64(candidate.X),
		PhysY:     float64(candidate.Y),
		PhysZ:     candidate.Depth,
		Timestamp: live.Timestamp,
	}
	if !calibrating {
		v := mapper.Map(res.PhysX, res.PhysY)
		res.VirtualX, res.VirtualY = v.X, v.Y
	}
	return res, nil
}

// Snapshot is the orchestrator's diagnostic-session state: the pieces
// internal/diagnostic needs to render a PPM view, exposed only for
// that purpose so RunWorker's hot path never has to assemble them.
type Snapshot struct {
	Reference *depth.Frame
	Model     *surface.Model
	Bounds    *surface.Bounds
}

// DiagnosticSnapshot returns the current reference/model/bounds for
// diagnostic rendering. The zero Snapshot (all nil fields) means no
// reference frame has been fit yet.
func (o *Orchestrator) DiagnosticSnapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{Reference: o.reference, Model: o.model, Bounds: o.bounds}
}

// Stop releases the sensor and drops the reference frame.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	o.reference = nil
	o.model = nil
	o.bounds = nil
	o.mu.Unlock()
	return o.sensor.Stop()
}

// RequestCancel sets the atomic cancellation flag the worker checks at
// the top of each loop iteration.
func (o *Orchestrator) RequestCancel() { o.cancel.Store(true) }

// ConsecutiveTimeouts returns the current run of consecutive
// SensorTimeout results the worker has seen, reset on any successful
// read.
func (o *Orchestrator) ConsecutiveTimeouts() int64 { return o.consecutiveTimeouts.Load() }

// RunWorker drives the tight loop spec.md §5 describes: pull a sensor
// frame, run DetectOnce, feed its presence/location through the event
// recognizer's hysteresis counter, and hand any resulting Start/Move/
// End to onEvent. Repeats until ctx is done or RequestCancel was
// called. Only one worker may run at a time; callers must Join a
// previous worker (or ensure it already returned) before starting
// another.
func (o *Orchestrator) RunWorker(ctx context.Context, calibrating bool, onEvent func(event.Event)) error {
	o.cancel.Store(false)
	o.workerWG.Add(1)
	defer o.workerWG.Done()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			if o.cancel.Load() {
				o.log.Info("worker: cancellation requested")
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			frames, err := o.sensor.ReadFrames(o.sensorTimeout)
			if err != nil {
				if errors.Is(err, sensor.ErrTimeout) {
					n := o.consecutiveTimeouts.Add(1)
					o.log.WithField("consecutive_timeouts", n).Warn("sensor read timed out")
					continue
				}
				o.log.WithError(err).Error("sensor read failed")
				return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
			}
			o.consecutiveTimeouts.Store(0)

			if latest := o.recent.Latest(); latest != nil && frames.Depth.Timestamp <= latest.Timestamp {
				o.log.WithFields(logrus.Fields{"frame_ts": frames.Depth.Timestamp, "latest_ts": latest.Timestamp}).Warn("dropping frame out of timestamp order")
				o.sensor.Release(frames)
				continue
			}
			o.recent.Push(frames.Depth)

			ts := frames.Depth.Timestamp
			res, err := o.DetectOnce(frames.Depth, calibrating)
			o.sensor.Release(frames)
			if err != nil {
				o.log.WithError(err).Warn("detect_once failed for this frame")
				continue
			}

			loc := event.Location{
				PhysX: res.PhysX, PhysY: res.PhysY, PhysZ: res.PhysZ,
				VirtualX: res.VirtualX, VirtualY: res.VirtualY,
			}
			if ev := o.recognizer.Tick(res.Found, loc, ts); ev != nil {
				onEvent(*ev)
			}
		}
	})
	return g.Wait()
}

// Join blocks until any in-flight worker started by RunWorker has
// returned. The UI task must call this before transitioning modes.
func (o *Orchestrator) Join() { o.workerWG.Wait() }
