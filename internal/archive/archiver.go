// Package archive compresses, uploads and expires the daily log files.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/storage"
)

const (
	jsonExt = ".json"
	gzipExt = ".json.gz"
)

// Uploader stores compressed archives remotely. *storage.O3Client satisfies it.
type Uploader interface {
	ListKeys(ctx context.Context, prefix string) (map[string]bool, error)
	PutFile(ctx context.Context, key, localPath string) error
}

var _ Uploader = (*storage.O3Client)(nil)

// Options configures an Archiver.
type Options struct {
	Dir    string
	Prefix string
	// CompressAfterDays is the age in days at which a file is compressed.
	// Values below 1 are treated as 1 so the current file is never touched.
	CompressAfterDays int
	// RetentionDays removes files older than this many days. 0 keeps files.
	RetentionDays int
	Interval      time.Duration
	// Uploader is optional.
	Uploader Uploader
}

// Archiver runs the archive job over one log directory.
type Archiver struct {
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

func New(opts Options, logger zerolog.Logger) *Archiver {
	if opts.CompressAfterDays < 1 {
		opts.CompressAfterDays = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	return &Archiver{opts: opts, logger: logger, now: time.Now}
}

// Run executes the job immediately and then on every interval until ctx is
// done.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()
	for {
		if err := a.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("archive run failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// dailyFile is a log file name split into its parts.
type dailyFile struct {
	path    string
	machine string
	day     time.Time
	gz      bool
}

// RunOnce compresses, uploads and expires files once. Failures on single
// files are logged and do not stop the run.
func (a *Archiver) RunOnce(ctx context.Context) error {
	files, err := a.scan()
	if err != nil {
		return err
	}
	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var archives []dailyFile
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		age := int(math.Round(today.Sub(f.day).Hours() / 24))
		if age < 1 {
			continue
		}
		if a.opts.RetentionDays > 0 && age > a.opts.RetentionDays {
			if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
				a.logger.Warn().Err(err).Str("file", filepath.Base(f.path)).Msg("remove expired log file")
				continue
			}
			a.logger.Info().Str("file", filepath.Base(f.path)).Int("age_days", age).Msg("removed expired log file")
			continue
		}
		if !f.gz && age >= a.opts.CompressAfterDays {
			gzPath, err := compress(f.path)
			if err != nil {
				a.logger.Warn().Err(err).Str("file", filepath.Base(f.path)).Msg("compress log file")
				continue
			}
			a.logger.Info().Str("file", filepath.Base(gzPath)).Msg("compressed log file")
			f.path, f.gz = gzPath, true
		}
		if f.gz {
			archives = append(archives, f)
		}
	}

	if a.opts.Uploader != nil {
		return a.upload(ctx, archives)
	}
	return nil
}

// upload sends every local archive not yet present in the bucket.
func (a *Archiver) upload(ctx context.Context, archives []dailyFile) error {
	existing := make(map[string]map[string]bool)
	for _, f := range archives {
		prefix := storage.KeyPrefix(f.machine)
		keys, ok := existing[prefix]
		if !ok {
			var err error
			keys, err = a.opts.Uploader.ListKeys(ctx, prefix)
			if err != nil {
				return fmt.Errorf("list archives: %w", err)
			}
			existing[prefix] = keys
		}
		key := storage.KeyForArchive(f.machine, filepath.Base(f.path))
		if keys[key] {
			continue
		}
		if err := a.opts.Uploader.PutFile(ctx, key, f.path); err != nil {
			a.logger.Warn().Err(err).Str("key", key).Msg("upload archive")
			continue
		}
		a.logger.Info().Str("key", key).Msg("uploaded archive")
	}
	return nil
}

// scan lists the daily files in the directory. When a day exists both plain
// and compressed, only the plain file is returned so it gets recompressed.
func (a *Archiver) scan() ([]dailyFile, error) {
	matches, err := filepath.Glob(filepath.Join(a.opts.Dir, a.opts.Prefix+".*.json*"))
	if err != nil {
		return nil, err
	}
	plain := make(map[string]bool)
	for _, m := range matches {
		if strings.HasSuffix(m, jsonExt) {
			plain[m] = true
		}
	}
	var out []dailyFile
	for _, m := range matches {
		f, ok := a.parse(m)
		if !ok || (f.gz && plain[strings.TrimSuffix(m, ".gz")]) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// parse splits <prefix>.<machine>.<yyyyMMdd>.json[.gz].
func (a *Archiver) parse(path string) (dailyFile, bool) {
	name := filepath.Base(path)
	f := dailyFile{path: path}
	switch {
	case strings.HasSuffix(name, gzipExt):
		f.gz = true
		name = strings.TrimSuffix(name, gzipExt)
	case strings.HasSuffix(name, jsonExt):
		name = strings.TrimSuffix(name, jsonExt)
	default:
		return f, false
	}
	name, ok := strings.CutPrefix(name, a.opts.Prefix+".")
	if !ok {
		return f, false
	}
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return f, false
	}
	day, err := time.ParseInLocation(logging.DateLayout, name[i+1:], a.now().Location())
	if err != nil {
		return f, false
	}
	f.machine, f.day = name[:i], day
	return f, true
}

// compress writes path.gz beside path and removes path.
func compress(path string) (string, error) {
	gzPath := path + ".gz"
	tmp := gzPath + ".tmp"

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	zw, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		dst.Close()
		os.Remove(tmp)
		return "", err
	}
	zw.Name = filepath.Base(path)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, gzPath); err != nil {
		os.Remove(tmp)
		return "", err
	}
	src.Close()
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return gzPath, nil
}
