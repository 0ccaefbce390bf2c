package logviewer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/model"
)

// DefaultMaxWindowBytes is the largest total file size a JSON file window
// may cover before the viewer refuses to scan it.
const DefaultMaxWindowBytes int64 = 100 << 20

const (
	jsonExt = ".json"
	gzipExt = ".json.gz"
)

func init() {
	GlobalRegistry.Register(jsonFileFactory{})
}

type jsonFileFactory struct{}

func (jsonFileFactory) Name() string { return "jsonfile" }

func (jsonFileFactory) Create(cfg SourceConfig) (Source, error) {
	if cfg.Dir == "" {
		return nil, errors.New("jsonfile source: log directory is required")
	}
	return NewJSONFileSource(cfg.Dir, cfg.FilePrefix, cfg.MaxWindowBytes), nil
}

// JSONFileSource reads the daily JSON log files written by
// logging.DailyFileWriter, including files the archiver has compressed.
type JSONFileSource struct {
	dir            string
	prefix         string
	maxWindowBytes int64
	loc            *time.Location
	parsers        fastjson.ParserPool
}

// NewJSONFileSource reads files named <prefix>.<machine>.<yyyyMMdd>.json[.gz]
// under dir. maxWindowBytes <= 0 selects DefaultMaxWindowBytes.
func NewJSONFileSource(dir, prefix string, maxWindowBytes int64) *JSONFileSource {
	if maxWindowBytes <= 0 {
		maxWindowBytes = DefaultMaxWindowBytes
	}
	return &JSONFileSource{dir: dir, prefix: prefix, maxWindowBytes: maxWindowBytes, loc: time.Local}
}

func (s *JSONFileSource) CanHandleLargeLogs() bool { return false }

// CheckCanOpenLogs approves the window when the files it touches add up to
// no more than the configured limit.
func (s *JSONFileSource) CheckCanOpenLogs(period model.LogTimePeriod) bool {
	var total int64
	for _, path := range s.files(period) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		total += info.Size()
		if total > s.maxWindowBytes {
			return false
		}
	}
	return true
}

func (s *JSONFileSource) Scan(ctx context.Context, period model.LogTimePeriod, fn func(*model.LogMessage) error) error {
	for _, path := range s.files(period) {
		if err := s.scanFile(ctx, path, period, fn); err != nil {
			return err
		}
	}
	return nil
}

// files lists the log files whose date falls inside period, oldest first.
// The directory is read once, so the cost follows the number of files and not
// the length of the window. When a day exists both plain and compressed, the
// plain file wins.
func (s *JSONFileSource) files(period model.LogTimePeriod) []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	local := model.LogTimePeriod{StartTime: period.StartTime.In(s.loc), EndTime: period.EndTime.In(s.loc)}

	type datedFile struct {
		day  time.Time
		path string
	}
	var found []datedFile
	plain := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, ok := s.fileDay(e.Name())
		if !ok || !local.CoversDay(day) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if strings.HasSuffix(path, jsonExt) {
			plain[path] = true
		}
		found = append(found, datedFile{day: day, path: path})
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].day.Equal(found[j].day) {
			return found[i].day.Before(found[j].day)
		}
		return found[i].path < found[j].path
	})

	out := make([]string, 0, len(found))
	for _, f := range found {
		if strings.HasSuffix(f.path, gzipExt) && plain[strings.TrimSuffix(f.path, ".gz")] {
			continue
		}
		out = append(out, f.path)
	}
	return out
}

// fileDay reads the date stamp of <prefix>.<machine>.<yyyyMMdd>.json[.gz].
func (s *JSONFileSource) fileDay(name string) (time.Time, bool) {
	switch {
	case strings.HasSuffix(name, gzipExt):
		name = strings.TrimSuffix(name, gzipExt)
	case strings.HasSuffix(name, jsonExt):
		name = strings.TrimSuffix(name, jsonExt)
	default:
		return time.Time{}, false
	}
	rest, ok := strings.CutPrefix(name, s.prefix+".")
	if !ok {
		return time.Time{}, false
	}
	i := strings.LastIndexByte(rest, '.')
	if i < 0 {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logging.DateLayout, rest[i+1:], s.loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func (s *JSONFileSource) scanFile(ctx context.Context, path string, period model.LogTimePeriod, fn func(*model.LogMessage) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, gzipExt) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gzip %s: %w", filepath.Base(path), err)
		}
		defer zr.Close()
		r = zr
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	br := bufio.NewReaderSize(r, 64*1024)
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, readErr := br.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			msg, err := parseLine(p, line)
			if err == nil && period.Contains(msg.Timestamp) {
				if err := fn(&msg); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(path), readErr)
		}
	}
}
