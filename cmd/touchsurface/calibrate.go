package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depthtouch/touchsurface/internal/calib"
	"github.com/depthtouch/touchsurface/internal/orchestrator"
	"github.com/depthtouch/touchsurface/internal/sensor"
)

var (
	calibrateTestInputs string
	calibrateFPS        float64
	calibrateRows       int
	calibrateCols       int
	calibrateDisplay    string
	calibrateOut        string
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Build a calibration grid from a sequence of recorded touch points",
	Long: `Replays a test-input recording that contains one touch per
calibration-grid cell, in row-major order, and pairs each detected
physical point with its expected on-screen target to produce a
calibration file detect can load with --calibration.

Drawing the on-screen dots and deciding which dot was touched is the
calibration UI's job and is out of scope for this module; this command
only consumes a recording and an evenly-spaced target grid.`,
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateTestInputs, "use-test-inputs", "", "Path to a recorded depth frame file with one touch per grid cell")
	calibrateCmd.Flags().Float64Var(&calibrateFPS, "fps", 30, "Frame rate to replay test inputs at")
	calibrateCmd.Flags().IntVar(&calibrateRows, "rows", 5, "Rows in the calibration grid")
	calibrateCmd.Flags().IntVar(&calibrateCols, "cols", 5, "Columns in the calibration grid")
	calibrateCmd.Flags().StringVar(&calibrateDisplay, "display", "1920x1080", "Display dimensions as WIDTHxHEIGHT")
	calibrateCmd.Flags().StringVar(&calibrateOut, "output", "calibration.txt", "Path to write the calibration file")
}

// targetGrid lays out rows*cols virtual points evenly across the
// display, the same layout a calibration UI would draw its dots at.
func targetGrid(rows, cols, width, height int) []calib.Virtual {
	targets := make([]calib.Virtual, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := (c * (width - 1)) / (cols - 1)
			y := (r * (height - 1)) / (rows - 1)
			targets = append(targets, calib.Virtual{X: x, Y: y})
		}
	}
	return targets
}

func runCalibrate(cmd *cobra.Command, _ []string) error {
	if calibrateTestInputs == "" {
		return fmt.Errorf("calibrate: --use-test-inputs is required (no live sensor driver is wired in this build)")
	}
	if calibrateRows < 2 || calibrateCols < 2 {
		return fmt.Errorf("calibrate: --rows and --cols must each be at least 2")
	}

	w, h, err := parseDisplay(calibrateDisplay)
	if err != nil {
		return err
	}

	src, err := sensor.LoadTestInput(calibrateTestInputs, calibrateFPS)
	if err != nil {
		return fmt.Errorf("loading test input: %w", err)
	}

	log := logrus.StandardLogger()
	orch := orchestrator.New(src, w, h, log)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer orch.Stop()

	targets := targetGrid(calibrateRows, calibrateCols, w, h)
	physical := make([]calib.Physical, 0, len(targets))

	timeout := sessCfg.SensorTimeout
	if timeout == 0 {
		timeout = orchestrator.DefaultSensorTimeout
	}

	for i := range targets {
		p, err := captureOnePoint(src, orch, timeout)
		if err != nil {
			return fmt.Errorf("calibration point %d/%d: %w", i+1, len(targets), err)
		}
		physical = append(physical, p)
		infoColor.Fprintf(cmd.OutOrStdout(), "captured point %d/%d: phys=(%.1f,%.1f,%.1f) -> target=(%d,%d)\n",
			i+1, len(targets), p.X, p.Y, p.Z, targets[i].X, targets[i].Y)
	}

	grid, err := calib.NewGrid(calibrateRows, calibrateCols, physical, targets)
	if err != nil {
		return fmt.Errorf("building calibration grid: %w", err)
	}

	if err := calib.WriteFile(calibrateOut, grid); err != nil {
		return fmt.Errorf("writing calibration file: %w", err)
	}

	successColor.Fprintf(cmd.OutOrStdout(), "wrote %d-point calibration grid to %s\n", calibrateRows*calibrateCols, calibrateOut)
	return nil
}

// captureOnePoint reads frames until detect_once reports a found
// interaction in calibrating mode (no mapper needed yet), which is
// taken as the touch for the current target dot.
func captureOnePoint(src sensor.Sensor, orch *orchestrator.Orchestrator, timeout time.Duration) (calib.Physical, error) {
	for {
		frames, err := src.ReadFrames(timeout)
		if err != nil {
			return calib.Physical{}, err
		}
		res, err := orch.DetectOnce(frames.Depth, true)
		src.Release(frames)
		if err != nil {
			return calib.Physical{}, err
		}
		if res.Found {
			return calib.Physical{X: res.PhysX, Y: res.PhysY, Z: res.PhysZ}, nil
		}
	}
}
