package effector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoggingEffectorLogsEachCall(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	e := NewLogging(log)
	e.Move(1, 2)
	e.LeftDown(3, 4)
	e.LeftUp(5, 6)
	e.Click(7, 8)

	out := buf.String()
	for _, want := range []string{"move", "left_down", "left_up", "click"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q call: %s", want, out)
		}
	}
}
