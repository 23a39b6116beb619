package framebuf

import (
	"testing"

	"github.com/depthtouch/touchsurface/internal/depth"
)

func TestRingEvictsOldestPastCapacity(t *testing.T) {
	r := New(3)
	for ts := uint32(1); ts <= 5; ts++ {
		r.Push(depth.New(ts))
	}

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	got := r.All()
	want := []uint32{3, 4, 5}
	for i, f := range got {
		if f.Timestamp != want[i] {
			t.Errorf("All()[%d].Timestamp = %d, want %d", i, f.Timestamp, want[i])
		}
	}
	if latest := r.Latest(); latest.Timestamp != 5 {
		t.Errorf("Latest().Timestamp = %d, want 5", latest.Timestamp)
	}
}

func TestRingEmptyLatestIsNil(t *testing.T) {
	r := New(2)
	if r.Latest() != nil {
		t.Error("Latest() on empty ring: expected nil")
	}
	if len(r.All()) != 0 {
		t.Error("All() on empty ring: expected empty slice")
	}
}

func TestRingClear(t *testing.T) {
	r := New(2)
	r.Push(depth.New(1))
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
}
