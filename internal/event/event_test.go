package event

import "testing"

func TestCounterFlipsIdleToActiveOnActiveThreshold(t *testing.T) {
	c := NewCounter()
	for i := 1; i < activeThreshold; i++ {
		if c.Step(true) {
			t.Fatalf("Step %d: flipped early, want no flip before the %d-th input", i, activeThreshold)
		}
	}
	if !c.Step(true) {
		t.Fatalf("Step %d: expected flip to Active", activeThreshold)
	}
	if c.State() != Active {
		t.Errorf("State() = %v, want Active", c.State())
	}
}

func TestCounterFlipsActiveToIdleOnIdleThreshold(t *testing.T) {
	c := NewCounter()
	for i := 0; i < activeThreshold; i++ {
		c.Step(true)
	}
	if c.State() != Active {
		t.Fatalf("setup: expected Active state before testing the reverse flip")
	}

	for i := 1; i < idleThreshold; i++ {
		if c.Step(false) {
			t.Fatalf("Step %d: flipped early, want no flip before the %d-th input", i, idleThreshold)
		}
	}
	if !c.Step(false) {
		t.Fatalf("Step %d: expected flip to Idle", idleThreshold)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want Idle", c.State())
	}
}

func TestCounterAgreementDoesNotAccumulatePastDisagreement(t *testing.T) {
	c := NewCounter()
	// Build up confidence in Idle, then a single disagreement should
	// not immediately flip. It takes a full fresh run of disagreements.
	for i := 0; i < 5; i++ {
		c.Step(false)
	}
	if c.Step(true) {
		t.Fatal("single disagreeing tick after reinforcement: flipped early")
	}
}

func TestRecognizerEmitsStartMoveEnd(t *testing.T) {
	r := NewRecognizer()
	loc := Location{PhysX: 10, PhysY: 20, PhysZ: 1900, VirtualX: 100, VirtualY: 200}

	var ev *Event
	for i := 0; i < activeThreshold; i++ {
		ev = r.Tick(true, loc, uint32(i))
	}
	if ev == nil || ev.Kind != Start {
		t.Fatalf("expected Start event after %d present ticks, got %+v", activeThreshold, ev)
	}

	ev = r.Tick(true, loc, 100)
	if ev == nil || ev.Kind != Move {
		t.Fatalf("expected Move event while interaction continues, got %+v", ev)
	}

	var lastEv *Event
	for i := 0; i < idleThreshold; i++ {
		lastEv = r.Tick(false, Location{}, uint32(200+i))
	}
	if lastEv == nil || lastEv.Kind != End {
		t.Fatalf("expected End event after %d absent ticks, got %+v", idleThreshold, lastEv)
	}
	if lastEv.Loc != loc {
		t.Errorf("End event location = %+v, want last seen location %+v", lastEv.Loc, loc)
	}
}

func TestRecognizerToleratesBriefDropoutDuringActive(t *testing.T) {
	r := NewRecognizer()
	loc := Location{PhysX: 5, PhysY: 5, VirtualX: 50, VirtualY: 50}

	for i := 0; i < activeThreshold; i++ {
		r.Tick(true, loc, uint32(i))
	}

	// A handful of missed frames, fewer than idleThreshold, must not end
	// the interaction.
	for i := 0; i < idleThreshold-1; i++ {
		ev := r.Tick(false, Location{}, uint32(100+i))
		if ev != nil && ev.Kind == End {
			t.Fatalf("interaction ended after only %d dropped frames, want tolerance up to %d", i+1, idleThreshold-1)
		}
	}

	ev := r.Tick(true, loc, 999)
	if ev == nil || ev.Kind != Move {
		t.Errorf("expected interaction to resume as Move after brief dropout, got %+v", ev)
	}
}
