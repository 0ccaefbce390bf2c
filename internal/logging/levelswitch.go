package logging

import (
	"sync/atomic"

	"github.com/akave-ai/logviewer/internal/model"
	"github.com/rs/zerolog"
)

// LevelSwitch holds the minimum level the process currently emits.
// It is created once at startup and shared by reference; reads and writes
// are atomic and the last write wins.
type LevelSwitch struct {
	level atomic.Int32
}

// NewLevelSwitch returns a switch initialised to level.
func NewLevelSwitch(level model.LogLevel) *LevelSwitch {
	s := &LevelSwitch{}
	s.level.Store(int32(level))
	return s
}

// MinimumLevel returns the current minimum level.
func (s *LevelSwitch) MinimumLevel() model.LogLevel {
	return model.LogLevel(s.level.Load())
}

// SetMinimumLevel replaces the minimum level.
func (s *LevelSwitch) SetMinimumLevel(level model.LogLevel) {
	s.level.Store(int32(level))
}

// Enabled reports whether an event at zerolog level l passes the switch.
// Events without a level always pass.
func (s *LevelSwitch) Enabled(l zerolog.Level) bool {
	if l == zerolog.NoLevel {
		return true
	}
	if l == zerolog.Disabled {
		return false
	}
	return FromZerolog(l) >= s.MinimumLevel()
}

// FromZerolog maps a zerolog level onto a severity.
func FromZerolog(l zerolog.Level) model.LogLevel {
	switch l {
	case zerolog.TraceLevel:
		return model.LevelVerbose
	case zerolog.DebugLevel:
		return model.LevelDebug
	case zerolog.InfoLevel:
		return model.LevelInformation
	case zerolog.WarnLevel:
		return model.LevelWarning
	case zerolog.ErrorLevel:
		return model.LevelError
	default:
		return model.LevelFatal
	}
}

// switchWriter drops events below the switch's current level.
type switchWriter struct {
	sw  *LevelSwitch
	out zerolog.LevelWriter
}

func (w switchWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w switchWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if !w.sw.Enabled(l) {
		return len(p), nil
	}
	return w.out.WriteLevel(l, p)
}
