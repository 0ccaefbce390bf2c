package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/logviewer/internal/model"
)

// SavedSearchStore persists saved log searches.
type SavedSearchStore interface {
	List(ctx context.Context) ([]model.SavedLogSearch, error)
	Add(ctx context.Context, search model.SavedLogSearch) error
	Delete(ctx context.Context, search model.SavedLogSearch) error
}

// SavedSearchRepository stores saved searches in Postgres.
type SavedSearchRepository struct {
	pool *pgxpool.Pool
}

// NewSavedSearchRepository returns a SavedSearchRepository using the given pool.
func NewSavedSearchRepository(pool *pgxpool.Pool) *SavedSearchRepository {
	return &SavedSearchRepository{pool: pool}
}

// List returns all saved searches in insertion order.
func (r *SavedSearchRepository) List(ctx context.Context) ([]model.SavedLogSearch, error) {
	records, err := r.records(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]model.SavedLogSearch, 0, len(records))
	for _, rec := range records {
		list = append(list, model.SavedLogSearch{Name: rec.Name, Query: rec.Query})
	}
	return list, nil
}

func (r *SavedSearchRepository) records(ctx context.Context) ([]model.SavedSearchRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, query, created_at
		FROM saved_searches
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SavedSearchRecord
	for rows.Next() {
		var rec model.SavedSearchRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Query, &rec.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Add inserts a saved search. Duplicates are allowed.
func (r *SavedSearchRepository) Add(ctx context.Context, search model.SavedLogSearch) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_searches (id, name, query)
		VALUES ($1, $2, $3)`,
		uuid.New(), search.Name, search.Query)
	return err
}

// Delete removes every saved search matching both name and query.
func (r *SavedSearchRepository) Delete(ctx context.Context, search model.SavedLogSearch) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM saved_searches
		WHERE name = $1 AND query = $2`,
		search.Name, search.Query)
	return err
}
