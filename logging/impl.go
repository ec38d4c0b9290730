package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level zap.AtomicLevel
	core  zapcore.Core
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:  newName,
		level: zap.NewAtomicLevelAt(imp.level.Level()),
		core:  imp.core,
	}
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	switch imp.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return ERROR
	case zapcore.InfoLevel, zapcore.InvalidLevel:
	}
	return INFO
}

// AsZap returns a sugared logger writing to the same core. The returned logger
// does not observe later SetLevel calls.
func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugar(0)
}

func (imp *impl) Sync() error {
	return imp.core.Sync()
}

// sugar builds a sugared logger whose caller points at the code that called
// into impl. extraSkip accounts for the impl method frame.
func (imp *impl) sugar(extraSkip int) *zap.SugaredLogger {
	ret := zap.New(
		levelFilterCore{imp.core, imp.level},
		zap.AddCaller(),
		zap.AddCallerSkip(extraSkip),
	).Sugar()
	if imp.name != "" {
		ret = ret.Named(imp.name)
	}
	return ret
}

func (imp *impl) shouldLog(level Level) bool {
	return imp.level.Enabled(level.AsZap())
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar(1).Debug(args...)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar(1).Debugf(template, args...)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar(1).Debugw(msg, keysAndValues...)
	}
}

// CDebugw logs at debug level when either the logger level allows it or the
// context was put in debug mode with EnableDebugMode.
func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) || IsDebugMode(ctx) {
		zap.New(imp.core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar().Named(imp.name).Debugw(msg, keysAndValues...)
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar(1).Info(args...)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar(1).Infof(template, args...)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar(1).Infow(msg, keysAndValues...)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar(1).Warn(args...)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar(1).Warnf(template, args...)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar(1).Warnw(msg, keysAndValues...)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar(1).Error(args...)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar(1).Errorf(template, args...)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar(1).Errorw(msg, keysAndValues...)
	}
}

// levelFilterCore gates an underlying core on a level that can change at runtime.
type levelFilterCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return levelFilterCore{c.Core.With(fields), c.level}
}

func (c levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}
