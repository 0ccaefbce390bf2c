package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LogLevel is the severity of a log event. Values are ordered.
type LogLevel int

const (
	LevelVerbose LogLevel = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{"Verbose", "Debug", "Information", "Warning", "Error", "Fatal"}

// AllLevels lists every severity from lowest to highest.
func AllLevels() []LogLevel {
	return []LogLevel{LevelVerbose, LevelDebug, LevelInformation, LevelWarning, LevelError, LevelFatal}
}

func (l LogLevel) String() string {
	if l < LevelVerbose || l > LevelFatal {
		return "Unknown"
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined severities.
func (l LogLevel) Valid() bool {
	return l >= LevelVerbose && l <= LevelFatal
}

// ParseLogLevel accepts severity names ("Information"), the short names
// written by zerolog ("info", "warn", "trace", "panic") and integers 0..5.
// Matching is case-insensitive.
func ParseLogLevel(s string) (LogLevel, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "verbose", "trace":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "fatal", "panic":
		return LevelFatal, nil
	}
	if n, err := strconv.Atoi(v); err == nil && LogLevel(n).Valid() {
		return LogLevel(n), nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LogLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseLogLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LogLevelCounts maps a severity name to the number of entries at that level.
type LogLevelCounts map[string]int

// NewLogLevelCounts returns counts with every level present at zero.
func NewLogLevelCounts() LogLevelCounts {
	c := make(LogLevelCounts, len(levelNames))
	for _, name := range levelNames {
		c[name] = 0
	}
	return c
}
