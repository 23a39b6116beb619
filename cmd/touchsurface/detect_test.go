package main

import (
	"testing"

	"github.com/depthtouch/touchsurface/internal/calib"
	"github.com/depthtouch/touchsurface/internal/event"
)

func TestParseDisplayParsesWidthAndHeight(t *testing.T) {
	w, h, err := parseDisplay("1920x1080")
	if err != nil {
		t.Fatalf("parseDisplay: %v", err)
	}
	if w != 1920 || h != 1080 {
		t.Errorf("parseDisplay = %dx%d, want 1920x1080", w, h)
	}
}

func TestParseDisplayRejectsMissingSeparator(t *testing.T) {
	if _, _, err := parseDisplay("1920"); err == nil {
		t.Error("expected error for a display string with no 'x' separator")
	}
}

func TestParseDisplayRejectsNonNumericField(t *testing.T) {
	if _, _, err := parseDisplay("abcx1080"); err == nil {
		t.Error("expected error for a non-numeric width")
	}
}

func TestTargetGridCoversCornersAndIsRowMajor(t *testing.T) {
	const width, height = 1001, 501 // chosen so (width-1)/(cols-1) divides evenly
	targets := targetGrid(3, 3, width, height)
	if len(targets) != 9 {
		t.Fatalf("len(targets) = %d, want 9", len(targets))
	}

	first := targets[0]
	if first.X != 0 || first.Y != 0 {
		t.Errorf("first target = %+v, want (0,0)", first)
	}
	last := targets[len(targets)-1]
	if last.X != width-1 || last.Y != height-1 {
		t.Errorf("last target = %+v, want (%d,%d)", last, width-1, height-1)
	}

	var want []calib.Virtual
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want = append(want, calib.Virtual{X: c * 500, Y: r * 250})
		}
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Errorf("targets[%d] = %+v, want %+v", i, targets[i], want[i])
		}
	}
}

func TestIsTapAcceptsShortLowDisplacementEnd(t *testing.T) {
	start := event.Location{VirtualX: 100, VirtualY: 100}
	end := event.Event{Kind: event.End, Loc: event.Location{VirtualX: 102, VirtualY: 101}, Timestamp: 5}
	if !isTap(start, 0, end) {
		t.Error("expected a short, nearly-stationary End to classify as a tap")
	}
}

func TestIsTapRejectsLongDuration(t *testing.T) {
	start := event.Location{VirtualX: 100, VirtualY: 100}
	end := event.Event{Kind: event.End, Loc: event.Location{VirtualX: 100, VirtualY: 100}, Timestamp: tapMaxFrames + 1}
	if isTap(start, 0, end) {
		t.Error("expected an End well past tapMaxFrames to not classify as a tap")
	}
}

func TestIsTapRejectsLargeDisplacement(t *testing.T) {
	start := event.Location{VirtualX: 100, VirtualY: 100}
	end := event.Event{Kind: event.End, Loc: event.Location{VirtualX: 100 + tapMaxDisplacement + 10, VirtualY: 100}, Timestamp: 1}
	if isTap(start, 0, end) {
		t.Error("expected an End displaced well past tapMaxDisplacement to not classify as a tap")
	}
}
