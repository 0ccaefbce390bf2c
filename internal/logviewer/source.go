package logviewer

import (
	"context"

	"github.com/akave-ai/logviewer/internal/model"
)

// Source reads log messages for a time window.
type Source interface {
	// CanHandleLargeLogs reports whether any window can be scanned safely.
	CanHandleLargeLogs() bool
	// CheckCanOpenLogs reports whether this particular window is small
	// enough to scan.
	CheckCanOpenLogs(period model.LogTimePeriod) bool
	// Scan calls fn for every message inside period. Scanning stops at the
	// first error returned by fn.
	Scan(ctx context.Context, period model.LogTimePeriod, fn func(*model.LogMessage) error) error
}

// LevelCounter is implemented by sources that can count levels without a
// full scan.
type LevelCounter interface {
	CountLevels(ctx context.Context, period model.LogTimePeriod) (model.LogLevelCounts, error)
}
