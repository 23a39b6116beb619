// Package effector defines the contract an Interaction is dispatched
// to: whatever turns a touch into a pointer action. It is consumed,
// not implemented, by any specific input backend outside this
// module's scope; Logging stands in for sessions that have no real
// pointer backend wired.
package effector

import "github.com/sirupsen/logrus"

// Effector is the emitted contract spec.md §6 names: move tracks a
// hover, left_down/left_up bracket a press, click is a discrete tap.
type Effector interface {
	Move(vx, vy int)
	LeftDown(vx, vy int)
	LeftUp(vx, vy int)
	Click(vx, vy int)
}

// Logging is an Effector that records each call at debug level rather
// than driving a pointer, for sessions run with no display backend
// (the detect subcommand dispatches its Start/Move/End events to one).
type Logging struct {
	Log *logrus.Logger
}

// NewLogging returns a Logging effector writing through log.
func NewLogging(log *logrus.Logger) *Logging {
	return &Logging{Log: log}
}

func (l *Logging) Move(vx, vy int) {
	l.Log.WithFields(logrus.Fields{"vx": vx, "vy": vy}).Debug("effector: move")
}

func (l *Logging) LeftDown(vx, vy int) {
	l.Log.WithFields(logrus.Fields{"vx": vx, "vy": vy}).Debug("effector: left_down")
}

func (l *Logging) LeftUp(vx, vy int) {
	l.Log.WithFields(logrus.Fields{"vx": vx, "vy": vy}).Debug("effector: left_up")
}

func (l *Logging) Click(vx, vy int) {
	l.Log.WithFields(logrus.Fields{"vx": vx, "vy": vy}).Debug("effector: click")
}
