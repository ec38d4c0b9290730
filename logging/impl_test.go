package logging

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedLoggerLevels(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("debug line", "slot", 3)
	logger.Infof("info %d", 1)
	logger.Warn("warn")
	logger.Error("error")
	test.That(t, logs.Len(), test.ShouldEqual, 4)

	entries := logs.All()
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, entries[0].Message, test.ShouldEqual, "debug line")
	test.That(t, entries[0].ContextMap()["slot"], test.ShouldEqual, int64(3))
	test.That(t, entries[1].Message, test.ShouldEqual, "info 1")

	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warnw("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 5)
	test.That(t, logs.FilterMessage("dropped").Len(), test.ShouldEqual, 0)
}

func TestSubloggerNaming(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("edge")
	subsub := sub.Sublogger("buffers")

	subsub.Info("hello")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "edge.buffers")

	// Subloggers get their own level.
	sub.SetLevel(ERROR)
	sub.Info("quiet")
	logger.Info("loud")
	test.That(t, logs.FilterMessage("quiet").Len(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("loud").Len(), test.ShouldEqual, 1)
}

func TestContextDebugMode(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(INFO)

	ctx := context.Background()
	test.That(t, IsDebugMode(ctx), test.ShouldBeFalse)
	logger.CDebugw(ctx, "hidden")
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	ctx = EnableDebugMode(ctx, "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, len(GetName(ctx)), test.ShouldEqual, 6)
	logger.CDebugw(ctx, "shown", "key", "value")
	test.That(t, logs.FilterMessage("shown").Len(), test.ShouldEqual, 1)

	ctx = EnableDebugMode(context.Background(), "frame-7")
	test.That(t, GetName(ctx), test.ShouldEqual, "frame-7")
}

func TestReplaceGlobal(t *testing.T) {
	logger := NewTestLogger(t)
	orig := Global()
	defer ReplaceGlobal(orig)
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
}

func TestLevelStrings(t *testing.T) {
	test.That(t, DEBUG.String(), test.ShouldEqual, "DEBUG")
	test.That(t, INFO.AsZap(), test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, ERROR.AsZap(), test.ShouldEqual, zapcore.ErrorLevel)
}
