package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DateLayout is the date stamp in daily log file names.
const DateLayout = "20060102"

// FileName returns the daily log file name: <prefix>.<machine>.<yyyyMMdd>.json
func FileName(prefix, machine string, day time.Time) string {
	return fmt.Sprintf("%s.%s.%s.json", prefix, machine, day.Format(DateLayout))
}

// DailyFileWriter appends JSON log lines to one file per day, switching files
// when the date changes.
type DailyFileWriter struct {
	dir     string
	prefix  string
	machine string
	now     func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewDailyFileWriter creates dir if needed. machine defaults to the host name.
func NewDailyFileWriter(dir, prefix, machine string) (*DailyFileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if machine == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "localhost"
		}
		machine = host
	}
	return &DailyFileWriter{dir: dir, prefix: prefix, machine: machine, now: time.Now}, nil
}

func (w *DailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if day := now.Format(DateLayout); day != w.day || w.file == nil {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

func (w *DailyFileWriter) rotate(now time.Time) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	name := filepath.Join(w.dir, FileName(w.prefix, w.machine, now))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.file = f
	w.day = now.Format(DateLayout)
	return nil
}

// Close closes the current file.
func (w *DailyFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
