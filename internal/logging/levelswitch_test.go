package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/akave-ai/logviewer/internal/model"
	"github.com/rs/zerolog"
)

func TestLevelSwitchSetGet(t *testing.T) {
	sw := NewLevelSwitch(model.LevelInformation)
	for _, lvl := range model.AllLevels() {
		sw.SetMinimumLevel(lvl)
		if got := sw.MinimumLevel(); got != lvl {
			t.Errorf("MinimumLevel() = %v, want %v", got, lvl)
		}
	}
}

func TestLevelSwitchConcurrentWrites(t *testing.T) {
	sw := NewLevelSwitch(model.LevelVerbose)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sw.SetMinimumLevel(model.AllLevels()[i%6])
			_ = sw.MinimumLevel()
		}(i)
	}
	wg.Wait()
	if !sw.MinimumLevel().Valid() {
		t.Fatalf("expected a valid level after concurrent writes, got %d", sw.MinimumLevel())
	}
}

func TestSwitchWriterFiltersByCurrentLevel(t *testing.T) {
	var buf bytes.Buffer
	sw := NewLevelSwitch(model.LevelWarning)
	logger := zerolog.New(switchWriter{sw: sw, out: zerolog.MultiLevelWriter(&buf)}).Level(zerolog.TraceLevel)

	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept-warn")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info event should be filtered at Warning: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "kept-warn") {
		t.Fatalf("warn event missing: %s", buf.String())
	}

	sw.SetMinimumLevel(model.LevelDebug)
	logger.Debug().Msg("kept-debug")
	if !strings.Contains(buf.String(), "kept-debug") {
		t.Fatalf("debug event should pass after lowering the switch: %s", buf.String())
	}
}

func TestLevelMapping(t *testing.T) {
	tests := map[zerolog.Level]model.LogLevel{
		zerolog.TraceLevel: model.LevelVerbose,
		zerolog.DebugLevel: model.LevelDebug,
		zerolog.InfoLevel:  model.LevelInformation,
		zerolog.WarnLevel:  model.LevelWarning,
		zerolog.ErrorLevel: model.LevelError,
		zerolog.FatalLevel: model.LevelFatal,
		zerolog.PanicLevel: model.LevelFatal,
	}
	for zl, want := range tests {
		if got := FromZerolog(zl); got != want {
			t.Errorf("FromZerolog(%v) = %v, want %v", zl, got, want)
		}
	}
}
