package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold marks queries worth a warning. Tier and promotion
// tables are small; anything slower than this is a missing index.
const slowQueryThreshold = 200 * time.Millisecond

// gormAdapter bridges GORM's logger interface onto zap so query logs share
// the engine's encoders and pick up the request id from the context.
type gormAdapter struct {
	log   *zap.Logger
	level gormlogger.LogLevel
}

// NewGormLogger wraps a zap logger for use as the GORM logger
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormAdapter{log: log.Named("gorm"), level: level}
}

// LogMode implements gormlogger.Interface
func (a *gormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *a
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (a *gormAdapter) Info(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Info {
		a.log.Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface
func (a *gormAdapter) Warn(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Warn {
		a.log.Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface
func (a *gormAdapter) Error(_ context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Error {
		a.log.Sugar().Errorf(msg, args...)
	}
}

// Trace implements gormlogger.Interface. ErrRecordNotFound is not logged;
// repositories translate it into domain not-found errors.
func (a *gormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	switch {
	case err != nil && a.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		a.log.Error("query failed", append(fields, zap.Error(err))...)
	case elapsed > slowQueryThreshold && a.level >= gormlogger.Warn:
		a.log.Warn("slow query", fields...)
	case a.level >= gormlogger.Info:
		a.log.Debug("query", fields...)
	}
}

// MapGormLogLevel maps the engine's log level onto GORM's
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
