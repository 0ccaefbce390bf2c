package logviewer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/valyala/fastjson"

	"github.com/akave-ai/logviewer/internal/model"
)

func init() {
	GlobalRegistry.Register(sqliteFactory{})
}

type sqliteFactory struct{}

func (sqliteFactory) Name() string { return "sqlite" }

func (sqliteFactory) Create(cfg SourceConfig) (Source, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite source: database path is required")
	}
	return OpenSQLiteSource(cfg.SQLitePath)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS logs (
    timestamp INTEGER NOT NULL,
    level INTEGER NOT NULL,
    template TEXT NOT NULL,
    message TEXT NOT NULL,
    exception TEXT NOT NULL DEFAULT '',
    properties TEXT
);

CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs(timestamp);
CREATE INDEX IF NOT EXISTS idx_logs_level ON logs(level);
`

// SQLiteSource stores log lines in SQLite and answers queries from there.
// It is also an io.Writer: attach it to the root logger as a sink.
type SQLiteSource struct {
	db      *sql.DB
	mu      sync.Mutex
	insert  *sql.Stmt
	parsers fastjson.ParserPool
}

// OpenSQLiteSource opens (or creates) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create logs table: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO logs (timestamp, level, template, message, exception, properties) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &SQLiteSource{db: db, insert: stmt}, nil
}

// Write stores one JSON log line. Lines that do not parse are dropped so a
// bad event never blocks the logger.
func (s *SQLiteSource) Write(p []byte) (int, error) {
	parser := s.parsers.Get()
	msg, err := parseLine(parser, p)
	s.parsers.Put(parser)
	if err != nil {
		return len(p), nil
	}
	if err := s.Insert(context.Background(), &msg); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Insert stores a parsed message.
func (s *SQLiteSource) Insert(ctx context.Context, msg *model.LogMessage) error {
	var props []byte
	if len(msg.Properties) > 0 {
		var err error
		props, err = json.Marshal(msg.Properties)
		if err != nil {
			return fmt.Errorf("encode properties: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.insert.ExecContext(ctx,
		msg.Timestamp.UnixNano(),
		int(msg.Level),
		msg.MessageTemplateText,
		msg.RenderedMessage,
		msg.Exception,
		nullable(props),
	)
	return err
}

func nullable(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func (s *SQLiteSource) CanHandleLargeLogs() bool { return true }

func (s *SQLiteSource) CheckCanOpenLogs(model.LogTimePeriod) bool { return true }

func (s *SQLiteSource) Scan(ctx context.Context, period model.LogTimePeriod, fn func(*model.LogMessage) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, level, template, message, exception, properties
		FROM logs
		WHERE timestamp BETWEEN ? AND ?
		ORDER BY timestamp, rowid`,
		period.StartTime.UnixNano(), period.EndTime.UnixNano())
	if err != nil {
		return fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	parser := s.parsers.Get()
	defer s.parsers.Put(parser)

	for rows.Next() {
		var (
			ts    int64
			level int
			props sql.NullString
			msg   model.LogMessage
		)
		if err := rows.Scan(&ts, &level, &msg.MessageTemplateText, &msg.RenderedMessage, &msg.Exception, &props); err != nil {
			return fmt.Errorf("scan log row: %w", err)
		}
		msg.Timestamp = time.Unix(0, ts)
		msg.Level = model.LogLevel(level)
		if props.Valid && props.String != "" {
			if v, err := parser.Parse(props.String); err == nil {
				if m, ok := valueToAny(v).(map[string]any); ok {
					msg.Properties = m
				}
			}
		}
		if err := fn(&msg); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountLevels counts entries per level with a single grouped query.
func (s *SQLiteSource) CountLevels(ctx context.Context, period model.LogTimePeriod) (model.LogLevelCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, COUNT(*)
		FROM logs
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY level`,
		period.StartTime.UnixNano(), period.EndTime.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("count levels: %w", err)
	}
	defer rows.Close()

	counts := model.NewLogLevelCounts()
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		if lvl := model.LogLevel(level); lvl.Valid() {
			counts[lvl.String()] += n
		}
	}
	return counts, rows.Err()
}

// Close releases the database.
func (s *SQLiteSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.insert.Close()
	return s.db.Close()
}
