package app

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"gopkg.in/natefinch/lumberjack.v2"
)

type x int

func (y x) String() string {
	return fmt.Sprint(int(y))
}

func TestLoggingInContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := Log.To(context.Background(), zerolog.New(&buf))

	ctx = Log.WithInt(ctx, "a", 1)
	ctx = Log.WithStr(ctx, "b", "b")
	ctx = Log.WithStringer(ctx, "c", x(2))

	logger := Log.From(ctx)
	logger.Info().Msg("test")

	assert.JSONEq(t, `{"level":"info","a":1,"b":"b","c":"2","message":"test"}`, buf.String())
}

func TestLoggingFallsBackToGlobal(t *testing.T) {
	logger := Log.From(context.Background())
	assert.Equal(t, log.Logger.GetLevel(), logger.GetLevel())
}

func TestLogOutput(t *testing.T) {
	_, ok := logOutput(Config{}).(zerolog.ConsoleWriter)
	assert.True(t, ok)

	file := filepath.Join(t.TempDir(), "proxyman.log")
	lj, ok := logOutput(Config{
		"format":      "file",
		"file":        file,
		"max_backups": "3",
	}).(*lumberjack.Logger)
	assert.True(t, ok)
	assert.Equal(t, file, lj.Filename)
	assert.Equal(t, 3, lj.MaxBackups)
}

func TestConfigureLoggingLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	configureLogging(Config{"level": "warn", "format": "json"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	configureLogging(Config{"level": "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
