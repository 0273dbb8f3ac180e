package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newTestGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM licenses WHERE serial = $1", 1 }

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), query, nil)
		assert.Zero(t, logs.Len())
	})

	t.Run("info level logs query at debug", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), query, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SQL Query", entries[0].Message)
		assert.Equal(t, zap.DebugLevel, entries[0].Level)
	})

	t.Run("error logged with error field", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), query, errors.New("boom"))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SQL Error", entries[0].Message)
	})

	t.Run("record not found suppressed", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("slow query logged as warning", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
	})

	t.Run("tenant id from context stamped on query", func(t *testing.T) {
		gl, logs := newTestGormLogger(gormlogger.Info)
		ctx, _ := WithTenantID(context.Background(), zap.NewNop(), "tenant-b")
		gl.Trace(ctx, time.Now(), query, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "tenant-b", entries[0].ContextMap()["tenant_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newTestGormLogger(gormlogger.Warn)
	silenced := gl.LogMode(gormlogger.Silent)

	// Original unchanged
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, gormlogger.Silent, silenced.(*GormLogger).logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("bogus"))
}
