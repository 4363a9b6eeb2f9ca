package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.DurationFieldUnit = time.Second
}

var logLevels = map[string]zerolog.Level{
	"trace": zerolog.TraceLevel,
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// logOutput picks the writer for the "log" section. Unknown formats
// keep the pretty console output.
func logOutput(c Config) io.Writer {
	switch c.StrOr("format", "pretty") {
	case "json":
		return os.Stdout
	case "file":
		return &lumberjack.Logger{
			Filename:   c.StrOr("file", "$PWD/$APP.log"),
			MaxSize:    c.IntOr("max_size_mb", 100),
			MaxBackups: c.IntOr("max_backups", 0),
		}
	default:
		return zerolog.ConsoleWriter{Out: os.Stdout}
	}
}

func configureLogging(c Config) {
	level, ok := logLevels[c.StrOr("level", "info")]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(logOutput(c))
}

// Log carries request-scoped loggers through context.Context
var Log ctxLogger

type ctxLogger struct{}

func (l ctxLogger) From(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(l).(zerolog.Logger)
	if !ok {
		return log.Logger
	}
	return logger
}

func (l ctxLogger) To(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, l, logger)
}

func (l ctxLogger) nest(ctx context.Context, cb func(zerolog.Context) zerolog.Context) context.Context {
	return l.To(ctx, cb(l.From(ctx).With()).Logger())
}

func (l ctxLogger) WithStringer(ctx context.Context, key string, value fmt.Stringer) context.Context {
	return l.nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Stringer(key, value)
	})
}

func (l ctxLogger) WithStr(ctx context.Context, key, value string) context.Context {
	return l.nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Str(key, value)
	})
}

func (l ctxLogger) WithInt(ctx context.Context, key string, value int) context.Context {
	return l.nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Int(key, value)
	})
}
