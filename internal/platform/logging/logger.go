package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/pipeline-responder/internal/platform/timeutil"
)

// processLogger is built once per process; err is kept so main can report it
// after falling back to a no-op logger.
type processLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	err    error
}

var (
	minLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	shared   = sync.OnceValue(buildProcessLogger)
)

// Cloud Logging severity names. DPanic has no direct match and lands on CRITICAL.
var severityNames = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

func encodeSeverity(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name, ok := severityNames[l]
	if !ok {
		name = "DEFAULT"
	}
	enc.AppendString(name)
}

func encodeTimestamp(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeutil.RFC3339Micros))
}

func cloudEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeSeverity,
		EncodeTime:     encodeTimestamp,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// buildProcessLogger writes JSON lines to stdout. Sampling is off so every
// access log line survives bursts.
func buildProcessLogger() processLogger {
	cfg := zap.Config{
		Level:            minLevel,
		Encoding:         "json",
		EncoderConfig:    cloudEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stdout"},
	}
	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		l = zap.NewNop()
	}
	return processLogger{logger: l, sugar: l.Sugar(), err: err}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a zap level.
// The empty string means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return l, nil
}

// SetLevel changes the minimum level of the process-wide logger, before or after first use.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	minLevel.SetLevel(l)
	return nil
}

// Logger returns the process-wide zap.Logger.
func Logger() *zap.Logger { return shared().logger }

// Sugar returns a sugared view of Logger.
func Sugar() *zap.SugaredLogger { return shared().sugar }

// Sync flushes buffered entries; call it on shutdown.
func Sync() error { return shared().logger.Sync() }

// Err reports why the logger fell back to a no-op, if it did.
func Err() error { return shared().err }
