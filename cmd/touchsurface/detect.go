package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depthtouch/touchsurface/internal/calib"
	"github.com/depthtouch/touchsurface/internal/effector"
	"github.com/depthtouch/touchsurface/internal/event"
	"github.com/depthtouch/touchsurface/internal/orchestrator"
	"github.com/depthtouch/touchsurface/internal/sensor"
	"github.com/depthtouch/touchsurface/pkg/output"
)

// tapMaxFrames and tapMaxDisplacement bound how an End event is
// classified as a discrete Click rather than just a LeftUp: the
// single-tap fixture holds an anomaly for 12 frames with no movement,
// so both are kept generous relative to that.
const (
	tapMaxFrames       = 20
	tapMaxDisplacement = 8.0
)

var (
	detectTestInputs  string
	detectFPS         float64
	detectSingleShot  bool
	detectCalibration string
	detectCalibRows   int
	detectCalibCols   int
	detectDisplay     string
	detectOutput      string
	detectRegion      string
	detectShowViewer  bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run the touch-detection worker over a depth frame source",
	Long: `Acquires a reference frame, fits the surface model, and drives the
worker loop that reports Start/Move/End interactions.

Only --use-test-inputs is supported in this build. A live sensor
driver is an external collaborator outside this module's scope.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectTestInputs, "use-test-inputs", "", "Path to a recorded depth frame file to replay")
	detectCmd.Flags().Float64Var(&detectFPS, "fps", 30, "Frame rate to replay test inputs at")
	detectCmd.Flags().BoolVar(&detectSingleShot, "single-snapshot", false, "Run one detect cycle and exit")
	detectCmd.Flags().StringVar(&detectCalibration, "calibration", "", "Calibration grid file; without one, interactions carry physical coordinates only")
	detectCmd.Flags().IntVar(&detectCalibRows, "calib-rows", 5, "Rows in the calibration grid file")
	detectCmd.Flags().IntVar(&detectCalibCols, "calib-cols", 5, "Columns in the calibration grid file")
	detectCmd.Flags().StringVar(&detectDisplay, "display", "1920x1080", "Display dimensions as WIDTHxHEIGHT")
	detectCmd.Flags().StringVar(&detectOutput, "output", "pretty", "Output format: pretty or json")
	detectCmd.Flags().StringVar(&detectRegion, "region", "", "Only report interactions within minX,minY,maxX,maxY")
	detectCmd.Flags().BoolVar(&detectShowViewer, "show-viewer", false, "Enable a live preview window (optional, external)")
}

func parseDisplay(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("display dimensions must be WIDTHxHEIGHT, got %q", s)
	}
	var w, h int
	if _, err := fmt.Sscanf(parts[0], "%d", &w); err != nil {
		return 0, 0, fmt.Errorf("invalid display width %q: %w", parts[0], err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &h); err != nil {
		return 0, 0, fmt.Errorf("invalid display height %q: %w", parts[1], err)
	}
	return w, h, nil
}

func runDetect(cmd *cobra.Command, _ []string) error {
	if detectTestInputs == "" {
		return fmt.Errorf("detect: --use-test-inputs is required (no live sensor driver is wired in this build)")
	}
	if detectShowViewer {
		warnColor.Fprintln(cmd.OutOrStdout(), "--show-viewer has no live preview window in this build; ignoring")
	}

	w, h, err := parseDisplay(detectDisplay)
	if err != nil {
		return err
	}

	src, err := sensor.LoadTestInput(detectTestInputs, detectFPS)
	if err != nil {
		return fmt.Errorf("loading test input: %w", err)
	}

	log := logrus.StandardLogger()
	orch := orchestrator.New(src, w, h, log)

	calibrating := detectCalibration == ""
	if !calibrating {
		grid, err := calib.ReadFile(detectCalibration, detectCalibRows, detectCalibCols)
		if err != nil {
			return fmt.Errorf("loading calibration: %w", err)
		}
		if err := orch.SetCalibration(grid.Rows, grid.Cols, grid.Physical, grid.Virtual); err != nil {
			return fmt.Errorf("applying calibration: %w", err)
		}
	}

	if err := orch.Start(); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer orch.Stop()

	started := time.Now()
	sessionOut := output.SessionOutput{
		Module:    "detect",
		SessionID: orch.SessionID(),
		Timestamp: started,
	}

	if detectSingleShot {
		frames, err := src.ReadFrames(sessCfg.SensorTimeout)
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		defer src.Release(frames)

		res, err := orch.DetectOnce(frames.Depth, calibrating)
		if err != nil {
			return fmt.Errorf("detect_once: %w", err)
		}
		if res.Found {
			sessionOut.Interactions = append(sessionOut.Interactions, toInteractionFromResult(res))
		}
		sessionOut.Duration = time.Since(started)
		return printSession(cmd, sessionOut)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		orch.RequestCancel()
	}()

	eff := effector.NewLogging(log)
	var (
		mu           sync.Mutex
		tapStartLoc  event.Location
		tapStartTime uint32
	)
	runErr := orch.RunWorker(ctx, calibrating, func(ev event.Event) {
		mu.Lock()
		sessionOut.Interactions = append(sessionOut.Interactions, toInteractionFromEvent(ev))
		mu.Unlock()

		switch ev.Kind {
		case event.Start:
			tapStartLoc, tapStartTime = ev.Loc, ev.Timestamp
			eff.LeftDown(ev.Loc.VirtualX, ev.Loc.VirtualY)
		case event.Move:
			eff.Move(ev.Loc.VirtualX, ev.Loc.VirtualY)
		case event.End:
			eff.LeftUp(ev.Loc.VirtualX, ev.Loc.VirtualY)
			if isTap(tapStartLoc, tapStartTime, ev) {
				eff.Click(ev.Loc.VirtualX, ev.Loc.VirtualY)
			}
		}
	})
	orch.Join()
	signal.Stop(sigCh)

	sessionOut.Duration = time.Since(started)
	if runErr != nil && runErr != context.Canceled {
		sessionOut.Errors = append(sessionOut.Errors, output.Error{Phase: "worker", Message: runErr.Error()})
	}
	return printSession(cmd, sessionOut)
}

// isTap classifies an End event as a discrete tap, per spec.md's "may
// classify a tap vs drag (duration + displacement)": short duration
// and little virtual-space movement since the paired Start.
func isTap(start event.Location, startTime uint32, end event.Event) bool {
	duration := end.Timestamp - startTime
	dx := float64(end.Loc.VirtualX - start.VirtualX)
	dy := float64(end.Loc.VirtualY - start.VirtualY)
	return duration <= tapMaxFrames && math.Hypot(dx, dy) <= tapMaxDisplacement
}

func toInteractionFromResult(res orchestrator.Result) output.Interaction {
	return output.Interaction{
		Timestamp: res.Timestamp,
		PhysX:     res.PhysX,
		PhysY:     res.PhysY,
		PhysZ:     res.PhysZ,
		VirtualX:  res.VirtualX,
		VirtualY:  res.VirtualY,
	}
}

func toInteractionFromEvent(ev event.Event) output.Interaction {
	return output.Interaction{
		Kind:      ev.Kind.String(),
		Timestamp: ev.Timestamp,
		PhysX:     ev.Loc.PhysX,
		PhysY:     ev.Loc.PhysY,
		PhysZ:     ev.Loc.PhysZ,
		VirtualX:  ev.Loc.VirtualX,
		VirtualY:  ev.Loc.VirtualY,
	}
}

func printSession(cmd *cobra.Command, sessionOut output.SessionOutput) error {
	sessionOut.Summary = &output.Summary{
		TotalInteractions: len(sessionOut.Interactions),
		Status:            "ok",
	}
	if len(sessionOut.Errors) > 0 {
		sessionOut.Summary.Status = "error"
	}

	text, err := output.FormatOutput(sessionOut, detectOutput, "normal", !isInteractiveTTY(), detectRegion)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
