package logviewer

import (
	"context"
	"errors"
	"sort"

	"github.com/akave-ai/logviewer/internal/filter"
	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/model"
	"github.com/akave-ai/logviewer/internal/repository"
)

// DefaultPageSize is the number of entries per page of GetLogs.
const DefaultPageSize = 100

// Viewer is the log-reading collaborator behind the log viewer endpoints.
type Viewer interface {
	CanHandleLargeLogs() bool
	CheckCanOpenLogs(period model.LogTimePeriod) bool
	GetNumberOfErrors(ctx context.Context, period model.LogTimePeriod) (int, error)
	GetLogLevelCounts(ctx context.Context, period model.LogTimePeriod) (model.LogLevelCounts, error)
	GetMessageTemplates(ctx context.Context, period model.LogTimePeriod) ([]model.LogTemplate, error)
	GetLogs(ctx context.Context, period model.LogTimePeriod, query model.LogQuery) (model.PagedResult[model.LogMessage], error)
	GetSavedSearches(ctx context.Context) ([]model.SavedLogSearch, error)
	AddSavedSearch(ctx context.Context, name, query string) ([]model.SavedLogSearch, error)
	DeleteSavedSearch(ctx context.Context, name, query string) ([]model.SavedLogSearch, error)
	GetLogLevel() string
}

// LogViewer implements Viewer over any Source.
type LogViewer struct {
	source   Source
	searches repository.SavedSearchStore
	levels   *logging.LevelSwitch
}

var _ Viewer = (*LogViewer)(nil)

// New returns a LogViewer. source, searches and levels are required.
func New(source Source, searches repository.SavedSearchStore, levels *logging.LevelSwitch) (*LogViewer, error) {
	switch {
	case source == nil:
		return nil, errors.New("logviewer: source is required")
	case searches == nil:
		return nil, errors.New("logviewer: saved search store is required")
	case levels == nil:
		return nil, errors.New("logviewer: level switch is required")
	}
	return &LogViewer{source: source, searches: searches, levels: levels}, nil
}

func (v *LogViewer) CanHandleLargeLogs() bool {
	return v.source.CanHandleLargeLogs()
}

func (v *LogViewer) CheckCanOpenLogs(period model.LogTimePeriod) bool {
	return v.source.CheckCanOpenLogs(period)
}

// GetNumberOfErrors counts Error and Fatal entries and entries carrying an
// exception.
func (v *LogViewer) GetNumberOfErrors(ctx context.Context, period model.LogTimePeriod) (int, error) {
	count := 0
	err := v.source.Scan(ctx, period, func(m *model.LogMessage) error {
		if m.IsError() {
			count++
		}
		return nil
	})
	return count, err
}

func (v *LogViewer) GetLogLevelCounts(ctx context.Context, period model.LogTimePeriod) (model.LogLevelCounts, error) {
	if lc, ok := v.source.(LevelCounter); ok {
		return lc.CountLevels(ctx, period)
	}
	counts := model.NewLogLevelCounts()
	err := v.source.Scan(ctx, period, func(m *model.LogMessage) error {
		if m.Level.Valid() {
			counts[m.Level.String()]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GetMessageTemplates returns every distinct template, most frequent first.
func (v *LogViewer) GetMessageTemplates(ctx context.Context, period model.LogTimePeriod) ([]model.LogTemplate, error) {
	counts := make(map[string]int)
	err := v.source.Scan(ctx, period, func(m *model.LogMessage) error {
		counts[m.MessageTemplateText]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.LogTemplate, 0, len(counts))
	for tmpl, n := range counts {
		out = append(out, model.LogTemplate{MessageTemplate: tmpl, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].MessageTemplate < out[j].MessageTemplate
	})
	return out, nil
}

// GetLogs filters, orders and pages the entries in period.
func (v *LogViewer) GetLogs(ctx context.Context, period model.LogTimePeriod, query model.LogQuery) (model.PagedResult[model.LogMessage], error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageNumber := query.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}

	match := filter.Compile(query.FilterExpression)
	levels := levelSet(query.LogLevels)

	var items []model.LogMessage
	err := v.source.Scan(ctx, period, func(m *model.LogMessage) error {
		if levels != nil && !levels[m.Level] {
			return nil
		}
		if match(m) {
			items = append(items, *m)
		}
		return nil
	})
	if err != nil {
		return model.PagedResult[model.LogMessage]{}, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if query.OrderDirection == model.Descending {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].Timestamp.Before(items[j].Timestamp)
	})

	total := len(items)
	// Compare before multiplying so huge page numbers cannot overflow.
	start := total
	if pageNumber-1 < (total+pageSize-1)/pageSize {
		start = (pageNumber - 1) * pageSize
	}
	end := total
	if total-start > pageSize {
		end = start + pageSize
	}
	return model.NewPagedResult(total, pageNumber, pageSize, items[start:end]), nil
}

// levelSet returns nil when no level filter applies. Unknown names match
// nothing.
func levelSet(names []string) map[model.LogLevel]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[model.LogLevel]bool, len(names))
	for _, name := range names {
		if lvl, err := model.ParseLogLevel(name); err == nil {
			set[lvl] = true
		}
	}
	return set
}

func (v *LogViewer) GetSavedSearches(ctx context.Context) ([]model.SavedLogSearch, error) {
	return v.searches.List(ctx)
}

func (v *LogViewer) AddSavedSearch(ctx context.Context, name, query string) ([]model.SavedLogSearch, error) {
	if err := v.searches.Add(ctx, model.SavedLogSearch{Name: name, Query: query}); err != nil {
		return nil, err
	}
	return v.searches.List(ctx)
}

func (v *LogViewer) DeleteSavedSearch(ctx context.Context, name, query string) ([]model.SavedLogSearch, error) {
	if err := v.searches.Delete(ctx, model.SavedLogSearch{Name: name, Query: query}); err != nil {
		return nil, err
	}
	return v.searches.List(ctx)
}

// GetLogLevel returns the name of the level currently emitted.
func (v *LogViewer) GetLogLevel() string {
	return v.levels.MinimumLevel().String()
}
