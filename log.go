package main

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	logger *zap.SugaredLogger
}

var log logger

// statusClearingSyncer erases the status line under the cursor before each
// log entry while the status lines are on screen.
type statusClearingSyncer struct {
	zapcore.WriteSyncer
	showing *atomic.Bool
}

func (w statusClearingSyncer) Write(p []byte) (int, error) {
	if w.showing.Load() {
		if _, err := w.WriteSyncer.Write([]byte(termDetail.eraseLine)); err != nil {
			return 0, err
		}
	}
	return w.WriteSyncer.Write(p)
}

func (l *logger) Print(a ...interface{}) {
	l.logger.Info(a...)
}

func (l *logger) Debug(a ...interface{}) {
	l.logger.Debug(a...)
}

func (l *logger) Warn(a ...interface{}) {
	l.logger.Warn(a...)
}

func (l *logger) Error(a ...interface{}) {
	l.logger.Error(a...)
}

func (l *logger) Fatal(a ...interface{}) {
	l.logger.Fatal(a...)
}

// PrintStatusLog is used instead of the status lines when stdout isn't a
// terminal.
func (l *logger) PrintStatusLog(a ...interface{}) {
	l.logger.Info(a...)
}

// named returns the logger handed to a component.
func (l *logger) named(name string) *zap.SugaredLogger {
	return l.logger.Named(name)
}

func (l *logger) init() {
	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(pe)

	level := zap.InfoLevel
	switch {
	case verboseLog:
		level = zap.DebugLevel
	case quietLog:
		level = zap.ErrorLevel
	}

	out := statusClearingSyncer{WriteSyncer: zapcore.AddSync(os.Stdout), showing: &statusLog.showing}
	core := zapcore.NewCore(consoleEncoder, zapcore.Lock(out), level)
	l.logger = zap.New(core).Sugar()
}

func (l *logger) sync() {
	// Syncing a terminal stdout fails on some platforms, nothing to do about it.
	_ = l.logger.Sync()
}
