package model

import "time"

// LogMessage is a single parsed log event.
type LogMessage struct {
	Timestamp           time.Time      `json:"timestamp"`
	Level               LogLevel       `json:"level"`
	MessageTemplateText string         `json:"messageTemplateText"`
	RenderedMessage     string         `json:"renderedMessage"`
	Properties          map[string]any `json:"properties,omitempty"`
	Exception           string         `json:"exception,omitempty"`
}

// IsError reports whether the event counts towards the error total.
func (m *LogMessage) IsError() bool {
	return m.Level == LevelError || m.Level == LevelFatal || m.Exception != ""
}

// LogTemplate is a distinct message template and how often it was seen.
type LogTemplate struct {
	MessageTemplate string `json:"messageTemplate"`
	Count           int    `json:"count"`
}

// Direction is a sort order over log timestamps.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "Descending"
	}
	return "Ascending"
}

// ParseDirection maps exactly "Descending" to Descending; any other value
// is Ascending.
func ParseDirection(s string) Direction {
	if s == "Descending" {
		return Descending
	}
	return Ascending
}

// LogQuery holds the paging and filtering options for a log listing.
type LogQuery struct {
	FilterExpression string
	PageNumber       int
	PageSize         int
	OrderDirection   Direction
	LogLevels        []string
}

// PagedResult is one page of a larger result set.
type PagedResult[T any] struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	Items      []T `json:"items"`
}

// NewPagedResult computes the page count for totalItems at pageSize.
func NewPagedResult[T any](totalItems, pageNumber, pageSize int, items []T) PagedResult[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: totalItems,
		Items:      items,
	}
}
