package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestConsoleOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("session")
	logger.AddAppender(NewWriterAppender(&buf))

	logger.Infow("pose is reachable", "waypoints", 2)
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	parts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldBeGreaterThanOrEqualTo, 4)
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "session")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, line, test.ShouldContainSubstring, "pose is reachable")
	test.That(t, line, test.ShouldContainSubstring, `{"waypoints": 2}`)
}

func TestLevels(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Errorf("kept %d", 2)
	test.That(t, observed.Len(), test.ShouldEqual, 2)
	test.That(t, observed.All()[1].Message, test.ShouldEqual, "kept 2")

	logger.SetLevel(DEBUG)
	logger.Debugw("now kept", "side", "left")
	test.That(t, observed.Len(), test.ShouldEqual, 3)
	test.That(t, observed.All()[2].ContextMap()["side"], test.ShouldEqual, "left")
}

func TestSubloggerName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("waypoints")
	logger.AddAppender(NewWriterAppender(&buf))

	logger.Sublogger("dispatcher").Info("hello")
	test.That(t, buf.String(), test.ShouldContainSubstring, "waypoints.dispatcher")
}

func TestUnpairedKey(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("msg", "lonely")
	test.That(t, observed.Len(), test.ShouldEqual, 1)
	test.That(t, observed.All()[0].ContextMap()["lonely"], test.ShouldNotBeNil)
}

func TestLevelFromString(t *testing.T) {
	for input, expected := range map[string]Level{"debug": DEBUG, "INFO": INFO, "Warning": WARN, "error": ERROR} {
		level, err := LevelFromString(input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAsZapSharesAppenders(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.AsZap().Infow("from zap", "k", 1)
	test.That(t, observed.FilterMessage("from zap").Len(), test.ShouldEqual, 1)
}
