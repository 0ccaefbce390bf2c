package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/akave-ai/logviewer/internal/model"
)

// FileSavedSearchStore keeps saved searches in a JSON file. A missing file is
// created with the default searches on first read.
type FileSavedSearchStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSavedSearchStore returns a store backed by path.
func NewFileSavedSearchStore(path string) *FileSavedSearchStore {
	return &FileSavedSearchStore{path: path}
}

func (s *FileSavedSearchStore) List(ctx context.Context) ([]model.SavedLogSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileSavedSearchStore) Add(ctx context.Context, search model.SavedLogSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(list, search))
}

func (s *FileSavedSearchStore) Delete(ctx context.Context, search model.SavedLogSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, item := range list {
		if item.Name == search.Name && item.Query == search.Query {
			continue
		}
		kept = append(kept, item)
	}
	return s.save(kept)
}

func (s *FileSavedSearchStore) load() ([]model.SavedLogSearch, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		defaults := model.DefaultSavedSearches()
		if err := s.save(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved searches: %w", err)
	}
	var list []model.SavedLogSearch
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode saved searches: %w", err)
	}
	if list == nil {
		list = []model.SavedLogSearch{}
	}
	return list, nil
}

// save writes through a temp file so a crash never leaves a truncated list.
func (s *FileSavedSearchStore) save(list []model.SavedLogSearch) error {
	if list == nil {
		list = []model.SavedLogSearch{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode saved searches: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create saved searches dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write saved searches: %w", err)
	}
	return os.Rename(tmp, s.path)
}
