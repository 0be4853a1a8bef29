package logx

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/marcodd23/go-micro-dbx/pkg/configx"
	"github.com/rs/zerolog"
)

type ZeroLogWrapper struct {
	zeroLog            *zerolog.Logger
	projectName        string
	isLocalEnvironment bool
}

// SetupLogger sets up the process wide Logger from the service configuration.
func SetupLogger(config configx.Config) Logger {
	var zLog zerolog.Logger

	isLocalEnvironment := config.IsLocalEnvironment()
	if isLocalEnvironment {
		zLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		zLog = zerolog.New(os.Stdout)
	}

	// Add common fields
	zLog = zLog.Level(parseLevel(config.GetLoggingConfig().Level)).With().
		Timestamp().
		Str("service", config.GetServiceName()).
		Str("project", config.GetGcpConfig().ProjectId).
		Interface("serviceContext", ServiceContext{Environment: config.GetEnvironment(), Version: config.GetVersion()}).
		Logger()

	logger = &ZeroLogWrapper{
		zeroLog:            &zLog,
		projectName:        config.GetGcpConfig().ProjectId,
		isLocalEnvironment: isLocalEnvironment,
	}

	return logger
}

// NewZeroLogger builds a JSON zerolog backed Logger writing to w, without touching the
// process wide logger.
func NewZeroLogger(w io.Writer, level string, fields Fields) Logger {
	zLog := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Fields(map[string]any(fields)).Logger()

	return &ZeroLogWrapper{zeroLog: &zLog}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (lm *ZeroLogWrapper) logWithContext(_ context.Context, level zerolog.Level, errs []error, msg string) {
	logEvent := lm.zeroLog.WithLevel(level)

	switch level {
	case zerolog.DebugLevel:
		logEvent = logEvent.Str("severity", "DEBUG")
	case zerolog.InfoLevel:
		logEvent = logEvent.Str("severity", "INFO")
	case zerolog.WarnLevel:
		logEvent = logEvent.Str("severity", "WARNING")
	case zerolog.ErrorLevel:
		logEvent = logEvent.Str("severity", "ERROR")
	case zerolog.FatalLevel, zerolog.PanicLevel:
		logEvent = logEvent.Str("severity", "CRITICAL")
	}

	switch len(errs) {
	case 0:
	case 1:
		logEvent = logEvent.Err(errs[0])
	default:
		logEvent = logEvent.Errs("errors", errs)
	}

	logEvent.Msg(msg)
}

func (lm *ZeroLogWrapper) LogInfo(ctx context.Context, msg string) {
	lm.logWithContext(ctx, zerolog.InfoLevel, nil, msg)
}

func (lm *ZeroLogWrapper) LogDebug(ctx context.Context, msg string) {
	lm.logWithContext(ctx, zerolog.DebugLevel, nil, msg)
}

func (lm *ZeroLogWrapper) LogWarning(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.WarnLevel, errs, msg)
}

func (lm *ZeroLogWrapper) LogError(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.ErrorLevel, errs, msg)
}

func (lm *ZeroLogWrapper) LogPanic(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.PanicLevel, errs, msg)
}

func (lm *ZeroLogWrapper) LogFatal(ctx context.Context, msg string, errs ...error) {
	lm.logWithContext(ctx, zerolog.FatalLevel, errs, msg)
}

// With returns a child logger carrying fields.
func (lm *ZeroLogWrapper) With(fields Fields) Logger {
	child := lm.zeroLog.With().Fields(map[string]any(fields)).Logger()

	return &ZeroLogWrapper{
		zeroLog:            &child,
		projectName:        lm.projectName,
		isLocalEnvironment: lm.isLocalEnvironment,
	}
}

// GetLogger - returns the underlying logger.
func (lm *ZeroLogWrapper) GetLogger() interface{} {
	return lm.zeroLog
}
