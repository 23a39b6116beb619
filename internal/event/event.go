// Package event turns the per-tick "interaction present?" signal into
// a debounced stream of Start/Move/End values: the last stage between
// the interaction detector and whatever consumes a touch (a mouse
// effector, a calibration UI, a diagnostic log).
package event

// idleThreshold and activeThreshold are the number of consecutive
// disagreeing ticks needed to enter the idle and active states,
// respectively. Finger landings are crisp, so only activeThreshold=2
// present ticks are needed to start an interaction; lifts are noisy,
// so idleThreshold=10 consecutive absent ticks are required before an
// interaction is considered over.
const (
	idleThreshold   = 10
	activeThreshold = 2
)

// State is one side of the hysteresis counter's two-state machine.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

func opposite(s State) State {
	if s == Idle {
		return Active
	}
	return Idle
}

func threshold(s State) int {
	if s == Idle {
		return activeThreshold
	}
	return idleThreshold
}

// Counter is the asymmetric-threshold hysteresis state machine: a
// plain value, no dynamic dispatch. Constructed fresh it starts Idle.
type Counter struct {
	state State
	count int
}

// NewCounter returns a Counter starting in the Idle state.
func NewCounter() *Counter {
	return &Counter{state: Idle, count: threshold(Idle)}
}

// State reports the counter's current side.
func (c *Counter) State() State { return c.state }

// Step advances the counter by one tick of input and reports whether
// this tick flipped the state. On agreement the count is reinforced
// toward its cap; on disagreement it is spent down, and hitting zero
// flips the state and reloads the count for the new side.
func (c *Counter) Step(present bool) bool {
	agrees := present == (c.state == Active)
	if agrees {
		if max := threshold(c.state); c.count < max {
			c.count++
		}
		return false
	}
	c.count--
	if c.count <= 0 {
		c.state = opposite(c.state)
		c.count = threshold(c.state)
		return true
	}
	return false
}

// Kind tags what an Event reports about an interaction's lifecycle.
type Kind int

const (
	Start Kind = iota
	Move
	End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Location is a touch's position in both coordinate spaces at the
// moment it was last seen.
type Location struct {
	PhysX, PhysY, PhysZ float64
	VirtualX, VirtualY  int
}

// Event is a single tagged value a Recognizer emits: a pure data
// description of what happened, with no behavior attached. Consumers
// (an effector, a calibration collector, a logger) decide what a
// Start/Move/End means to them.
type Event struct {
	Kind      Kind
	Loc       Location
	Timestamp uint32
}

// Recognizer wraps a Counter with the first/last location and
// timestamp bookkeeping spec.md calls for, so downstream code can
// classify a tap vs. a drag from duration and displacement.
type Recognizer struct {
	counter *Counter

	lastLoc       Location
	lastTimestamp uint32
	startLoc      Location
	startTimestamp uint32
}

// NewRecognizer returns a Recognizer in the Idle state.
func NewRecognizer() *Recognizer {
	return &Recognizer{counter: NewCounter()}
}

// Tick feeds one detection result ("present" with its location if
// true) at the given frame timestamp and returns the Event this tick
// produced, or nil if nothing changed. loc is ignored when !present;
// a Move or End event always carries the most recently seen location,
// per spec.md's event semantics.
func (r *Recognizer) Tick(present bool, loc Location, timestamp uint32) *Event {
	wasActive := r.counter.State() == Active
	flipped := r.counter.Step(present)

	if present {
		r.lastLoc = loc
		r.lastTimestamp = timestamp
	}

	switch {
	case flipped && !wasActive:
		r.startLoc, r.startTimestamp = r.lastLoc, r.lastTimestamp
		return &Event{Kind: Start, Loc: r.lastLoc, Timestamp: timestamp}
	case flipped && wasActive:
		return &Event{Kind: End, Loc: r.lastLoc, Timestamp: timestamp}
	case r.counter.State() == Active:
		return &Event{Kind: Move, Loc: r.lastLoc, Timestamp: timestamp}
	default:
		return nil
	}
}

// Start returns the location and timestamp of the most recent Start
// event, for a consumer computing tap-vs-drag displacement.
func (r *Recognizer) Start() (Location, uint32) {
	return r.startLoc, r.startTimestamp
}
