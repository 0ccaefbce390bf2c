package model

import (
	"time"

	"github.com/google/uuid"
)

// SavedLogSearch is a named filter expression kept for reuse.
type SavedLogSearch struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// SavedSearchRecord is a saved search as persisted in the database.
type SavedSearchRecord struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Query     string    `db:"query"`
	CreatedAt time.Time `db:"created_at"`
}

// DefaultSavedSearches are seeded into a new store.
func DefaultSavedSearches() []SavedLogSearch {
	return []SavedLogSearch{
		{Name: "Find all logs where the Level is NOT Verbose and NOT Debug", Query: "NOT level:Verbose AND NOT level:Debug"},
		{Name: "Find all logs that has an exception property", Query: `exception!=""`},
		{Name: "Find all logs with the level Error or Fatal", Query: "level:Error OR level:Fatal"},
		{Name: "Find all logs from the HTTP server", Query: "component:http"},
		{Name: "Find all logs that mention a timeout", Query: `"timeout"`},
	}
}
