//nolint:gochecknoglobals
package logx

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

type ServiceContext struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// Fields - structured key/value pairs attached to every line of a derived logger.
type Fields map[string]any

// Logger - logger interface.
type Logger interface {
	// LogInfo logs a message at Info level.
	LogInfo(ctx context.Context, msg string)
	// LogDebug logs a message at Debug level.
	LogDebug(ctx context.Context, msg string)
	// LogWarning logs a message at Warning level.
	LogWarning(ctx context.Context, msg string, errs ...error)
	// LogError logs a message at Error level.
	LogError(ctx context.Context, msg string, errs ...error)
	// LogPanic logs a message at Panic level then panics.
	LogPanic(ctx context.Context, msg string, errs ...error)
	// LogFatal logs a message at Fatal Level.
	// The logger then calls os.Exit(1), even if logging at FatalLevel is
	// disabled.
	LogFatal(ctx context.Context, msg string, errs ...error)
	// With returns a child logger carrying the given fields on every line.
	With(fields Fields) Logger

	GetLogger() interface{}
}

var logger Logger

// GetLogger - returns an instance of the Logger.
// If called before SetupLogger a standard library backed logger will be returned.
func GetLogger() Logger {
	if logger == nil {
		return &DefaultLogger{}
	}

	return logger
}

// DefaultLogger - Logger implementation on top of the standard log package.
type DefaultLogger struct {
	prefix string
}

func (nl *DefaultLogger) print(level, msg string, errs []error) {
	line := level + " " + nl.prefix + msg
	for _, err := range errs {
		if err != nil {
			line += " error=" + err.Error()
		}
	}
	log.Println(line)
}

// LogInfo logs through the standard logger.
func (nl *DefaultLogger) LogInfo(ctx context.Context, msg string) {
	nl.print("INFO", msg, nil)
}

// LogDebug logs through the standard logger.
func (nl *DefaultLogger) LogDebug(ctx context.Context, msg string) {
	nl.print("DEBUG", msg, nil)
}

// LogWarning logs through the standard logger.
func (nl *DefaultLogger) LogWarning(ctx context.Context, msg string, errs ...error) {
	nl.print("WARN", msg, errs)
}

// LogError logs through the standard logger.
func (nl *DefaultLogger) LogError(ctx context.Context, msg string, errs ...error) {
	nl.print("ERROR", msg, errs)
}

// LogPanic logs through the standard logger then panics.
func (nl *DefaultLogger) LogPanic(ctx context.Context, msg string, errs ...error) {
	log.Panicln("PANIC " + nl.prefix + msg)
}

// LogFatal logs through the standard logger then exits.
func (nl *DefaultLogger) LogFatal(ctx context.Context, msg string, errs ...error) {
	log.Fatalln("FATAL " + nl.prefix + msg)
}

// With prefixes every line with the sorted fields.
func (nl *DefaultLogger) With(fields Fields) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(nl.prefix)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s=%v ", k, fields[k]))
	}

	return &DefaultLogger{prefix: sb.String()}
}

// GetLogger returns nil, there is no underlying structured logger.
func (nl *DefaultLogger) GetLogger() interface{} { return nil }

// NopLogger - Logger implementation that discards every message.
// LogPanic still panics, LogFatal returns without exiting the process.
type NopLogger struct{}

func (NopLogger) LogInfo(context.Context, string) {}

func (NopLogger) LogDebug(context.Context, string) {}

func (NopLogger) LogWarning(context.Context, string, ...error) {}

func (NopLogger) LogError(context.Context, string, ...error) {}

func (NopLogger) LogPanic(_ context.Context, msg string, _ ...error) { panic(msg) }

// LogFatal does not call os.Exit.
func (NopLogger) LogFatal(context.Context, string, ...error) {}

func (n NopLogger) With(Fields) Logger { return n }

func (NopLogger) GetLogger() interface{} { return nil }
