package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/voicetimeapp/voicetime/internal/model"
)

// EntryRepo provides operations for TimeEntry entities.
type EntryRepo struct {
	db *DB
}

// NewEntryRepo creates a new entry repository.
func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// Create creates a new entry with a generated key.
func (r *EntryRepo) Create(entry *model.TimeEntry) error {
	// Generate UUID v7 for time-sortable keys
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	entry.Key = model.GenerateEntryKey(id.String())
	return r.db.Set(entry)
}

// CreateBatch creates all entries in a single transaction. Entries spawned
// by one recording must land together or not at all.
func (r *EntryRepo) CreateBatch(entries []*model.TimeEntry) error {
	models := make([]model.Model, len(entries))
	for i, entry := range entries {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry.Key = model.GenerateEntryKey(id.String())
		models[i] = entry
	}
	return r.db.SetAll(models)
}

// Get retrieves an entry by key.
func (r *EntryRepo) Get(key string) (*model.TimeEntry, error) {
	entry := &model.TimeEntry{}
	if err := r.db.Get(key, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update updates an existing entry.
func (r *EntryRepo) Update(entry *model.TimeEntry) error {
	return r.db.Set(entry)
}

// Delete removes an entry by key.
func (r *EntryRepo) Delete(key string) error {
	return r.db.Delete(key)
}

// List retrieves all entries, newest first.
func (r *EntryRepo) List() ([]*model.TimeEntry, error) {
	entries, err := GetAllByPrefix(r.db, model.PrefixEntry+":", func() *model.TimeEntry {
		return &model.TimeEntry{}
	})
	if err != nil {
		return nil, err
	}
	sortByRecency(entries)
	return entries, nil
}

// ListBetween retrieves entries recorded within [start, end), newest first.
func (r *EntryRepo) ListBetween(start, end time.Time) ([]*model.TimeEntry, error) {
	entries, err := GetFilteredByPrefix(r.db, model.PrefixEntry+":", func() *model.TimeEntry {
		return &model.TimeEntry{}
	}, func(e *model.TimeEntry) bool {
		t := e.RecordedTime()
		return !t.Before(start) && t.Before(end)
	}, 0)
	if err != nil {
		return nil, err
	}
	sortByRecency(entries)
	return entries, nil
}

// ListByCategory retrieves entries referencing the given category, newest
// first.
func (r *EntryRepo) ListByCategory(categoryID string) ([]*model.TimeEntry, error) {
	entries, err := GetFilteredByPrefix(r.db, model.PrefixEntry+":", func() *model.TimeEntry {
		return &model.TimeEntry{}
	}, func(e *model.TimeEntry) bool {
		return e.CategoryID != nil && *e.CategoryID == categoryID
	}, 0)
	if err != nil {
		return nil, err
	}
	sortByRecency(entries)
	return entries, nil
}

// CategoryAggregate holds total tracked minutes for one category within a
// window. Uncategorized entries aggregate under an empty CategoryID.
type CategoryAggregate struct {
	CategoryID string
	Minutes    int
	EntryCount int
}

// TotalsByCategory aggregates entry durations by category within [start, end),
// longest totals first.
func (r *EntryRepo) TotalsByCategory(start, end time.Time) ([]CategoryAggregate, error) {
	entries, err := r.ListBetween(start, end)
	if err != nil {
		return nil, err
	}

	agg := make(map[string]*CategoryAggregate)
	for _, e := range entries {
		id := ""
		if e.CategoryID != nil {
			id = *e.CategoryID
		}
		if _, ok := agg[id]; !ok {
			agg[id] = &CategoryAggregate{CategoryID: id}
		}
		agg[id].Minutes += e.Duration
		agg[id].EntryCount++
	}

	var result []CategoryAggregate
	for _, a := range agg {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Minutes > result[j].Minutes
	})
	return result, nil
}

// sortByRecency orders entries newest first. Entries sharing a RecordedAt
// (a multi-activity split) keep their creation order via the time-sortable
// key.
func sortByRecency(entries []*model.TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RecordedAt != entries[j].RecordedAt {
			return entries[i].RecordedAt > entries[j].RecordedAt
		}
		return entries[i].Key < entries[j].Key
	})
}
