package gologger

import (
	"context"
	"fmt"
	"io"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-hybridauth/core"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// New builds the logger selected by debug_mode and debug_file. DebugModeNone
// yields a nop logger. The returned closer flushes the zap sink.
func New(mode core.DebugMode, file string) (glog.Logger, io.Closer, error) {
	mode, err := core.ParseDebugMode(string(mode))
	if err != nil {
		return nil, nil, err
	}
	if mode == core.DebugModeNone {
		return glog.Nop(), nopCloser{}, nil
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel(mode))
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.Sampling = nil
	if file = strings.TrimSpace(file); file != "" {
		zcfg.OutputPaths = []string{file}
		zcfg.ErrorOutputPaths = []string{file}
	}

	base, err := zcfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, fmt.Errorf("gologger: build logger: %w", err)
	}
	logger := NewZap(base)
	return logger, logger, nil
}

// ZapLogger adapts a *zap.Logger to glog.Logger, glog.FieldsLogger and
// glog.LoggerProvider.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

func NewZap(base *zap.Logger) *ZapLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &ZapLogger{base: base, sugar: base.Sugar()}
}

// Trace has no zap counterpart and logs at debug level.
func (l *ZapLogger) Trace(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *ZapLogger) Fatal(msg string, args ...any) {
	l.sugar.Fatalw(msg, args...)
}

func (l *ZapLogger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *ZapLogger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	return NewZap(l.base.With(zapFields...))
}

func (l *ZapLogger) GetLogger(name string) glog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return l
	}
	return NewZap(l.base.Named(name))
}

func (l *ZapLogger) Close() error {
	// Sync on stderr/stdout reports EINVAL on some platforms.
	if err := l.base.Sync(); err != nil && !isStdSyncError(err) {
		return err
	}
	return nil
}

func zapLevel(mode core.DebugMode) zapcore.Level {
	switch mode {
	case core.DebugModeError:
		return zapcore.ErrorLevel
	case core.DebugModeDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func isStdSyncError(err error) bool {
	message := err.Error()
	return strings.Contains(message, "invalid argument") || strings.Contains(message, "inappropriate ioctl")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var (
	_ glog.Logger         = (*ZapLogger)(nil)
	_ glog.FieldsLogger   = (*ZapLogger)(nil)
	_ glog.LoggerProvider = (*ZapLogger)(nil)
)
