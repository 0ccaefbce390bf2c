package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options controls where the root logger writes.
type Options struct {
	// Console switches stderr output to zerolog's human-readable writer.
	Console bool
	// Sinks receive every event that passes the level switch, as JSON lines.
	Sinks []io.Writer
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New builds the root logger. The logger itself accepts every level; the
// level switch decides what reaches stderr and the sinks, so a change to the
// switch takes effect on the next event.
func New(sw *LevelSwitch, opts Options) zerolog.Logger {
	var stderr io.Writer = os.Stderr
	if opts.Console {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	writers := make([]io.Writer, 0, len(opts.Sinks)+1)
	writers = append(writers, stderr)
	writers = append(writers, opts.Sinks...)

	out := switchWriter{sw: sw, out: zerolog.MultiLevelWriter(writers...)}
	return zerolog.New(out).Level(zerolog.TraceLevel).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
