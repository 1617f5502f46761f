package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger adapts GORM's logger to the process-wide slog logger
type GormLogger struct {
	level     logger.LogLevel
	slowQuery time.Duration
}

// NewGormLogger creates a logger that reports errors and slow statements.
// A zero slowQuery disables slow statement warnings.
func NewGormLogger(slowQuery time.Duration) *GormLogger {
	return &GormLogger{level: logger.Warn, slowQuery: slowQuery}
}

// LogMode returns a copy of the logger at the given level
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		slog.InfoContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		slog.WarnContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		slog.ErrorContext(ctx, fmt.Sprintf(msg, args...), slog.String("component", "gorm"))
	}
}

// Trace logs a finished statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		slog.ErrorContext(ctx, "query failed",
			slog.String("component", "gorm"),
			slog.String("error", err.Error()),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("duration", elapsed),
		)
	case l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= logger.Warn:
		sql, rows := fc()
		slog.WarnContext(ctx, "slow query",
			slog.String("component", "gorm"),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("duration", elapsed),
		)
	case l.level >= logger.Info:
		sql, rows := fc()
		slog.DebugContext(ctx, "query",
			slog.String("component", "gorm"),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("duration", elapsed),
		)
	}
}
