package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depthtouch/touchsurface/internal/depth"
	"github.com/depthtouch/touchsurface/internal/detect"
	"github.com/depthtouch/touchsurface/internal/diagnostic"
	"github.com/depthtouch/touchsurface/internal/orchestrator"
	"github.com/depthtouch/touchsurface/internal/sensor"
)

var (
	diagnoseTestInputs string
	diagnoseFPS        float64
	diagnoseDisplay    string
	diagnoseFrames     int
	diagnoseDir        string
	diagnoseRecordOut  string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Dump depth/surface/interaction PPM rasters for visual inspection",
	Long: `Runs the same reference-fit and classification cascade detect
uses, but instead of reporting interactions writes one PPM raster per
view per frame (depth, surface-depth, surface-slope, interaction) to
--dir, per spec.md's C9 diagnostic image writer. Never runs on the
detection hot path unless explicitly invoked.`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseTestInputs, "use-test-inputs", "", "Path to a recorded depth frame file to replay")
	diagnoseCmd.Flags().Float64Var(&diagnoseFPS, "fps", 30, "Frame rate to replay test inputs at")
	diagnoseCmd.Flags().StringVar(&diagnoseDisplay, "display", "1920x1080", "Display dimensions as WIDTHxHEIGHT")
	diagnoseCmd.Flags().IntVar(&diagnoseFrames, "frames", 1, "Number of frames to dump after the reference frame")
	diagnoseCmd.Flags().StringVar(&diagnoseDir, "dir", "", "Directory to write PPM rasters to (defaults to the session config's diagnostic_dir)")
	diagnoseCmd.Flags().StringVar(&diagnoseRecordOut, "record", "", "Also write the session's retained frame tail to this recording path")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	if diagnoseTestInputs == "" {
		return fmt.Errorf("diagnose: --use-test-inputs is required (no live sensor driver is wired in this build)")
	}

	dir := diagnoseDir
	if dir == "" {
		dir = sessCfg.DiagnosticDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating diagnostic directory %s: %w", dir, err)
	}

	w, h, err := parseDisplay(diagnoseDisplay)
	if err != nil {
		return err
	}

	src, err := sensor.LoadTestInput(diagnoseTestInputs, diagnoseFPS)
	if err != nil {
		return fmt.Errorf("loading test input: %w", err)
	}

	log := logrus.StandardLogger()
	orch := orchestrator.New(src, w, h, log)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer orch.Stop()

	timeout := sessCfg.SensorTimeout
	if timeout == 0 {
		timeout = orchestrator.DefaultSensorTimeout
	}

	for i := 0; i < diagnoseFrames; i++ {
		frames, err := src.ReadFrames(timeout)
		if err != nil {
			return fmt.Errorf("reading frame %d: %w", i, err)
		}
		live := frames.Depth
		src.Release(frames)
		orch.TrackFrame(live)

		snap := orch.DiagnosticSnapshot()
		if snap.Model == nil {
			infoColor.Fprintln(cmd.OutOrStdout(), "reference frame not yet fit; skipping diagnostic dump for this frame")
			continue
		}

		if err := dumpViews(orch.SessionID(), dir, live, snap); err != nil {
			return fmt.Errorf("dumping frame %d: %w", i, err)
		}
		successColor.Fprintf(cmd.OutOrStdout(), "wrote diagnostics for frame t=%d to %s\n", live.Timestamp, dir)
	}

	if diagnoseRecordOut != "" {
		tail := orch.RecentFrames()
		if err := sensor.WriteRecording(diagnoseRecordOut, tail); err != nil {
			return fmt.Errorf("writing recording %s: %w", diagnoseRecordOut, err)
		}
		infoColor.Fprintf(cmd.OutOrStdout(), "wrote %d-frame recording to %s\n", len(tail), diagnoseRecordOut)
	}

	return nil
}

func dumpViews(sessionID, dir string, live *depth.Frame, snap orchestrator.Snapshot) error {
	candidate := detect.Scan(live, snap.Reference, snap.Model, snap.Bounds)

	views := []struct {
		name  string
		write func(*os.File) error
	}{
		{"depth", func(f *os.File) error { return diagnostic.WriteDepth(f, live) }},
		{"surface-depth", func(f *os.File) error { return diagnostic.WriteSurfaceDepth(f, live, snap.Model) }},
		{"surface-slope", func(f *os.File) error { return diagnostic.WriteSurfaceSlope(f, live, snap.Model) }},
		{"interaction", func(f *os.File) error {
			return diagnostic.WriteInteraction(f, live, snap.Reference, snap.Model, snap.Bounds, candidate)
		}},
	}

	for _, v := range views {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d-%s.ppm", sessionID, live.Timestamp, v.name))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = v.write(f)
		closeErr := f.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}
