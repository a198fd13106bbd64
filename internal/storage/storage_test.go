package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() {
		assert.NoError(t, db.Close(), "failed to close database")
	})
	return db
}

// createTestEntry creates and saves an entry recorded at the given time.
func createTestEntry(t *testing.T, repo *EntryRepo, recordedAt time.Time, minutes int, categoryID string) *model.TimeEntry {
	t.Helper()
	var catPtr *string
	if categoryID != "" {
		catPtr = &categoryID
	}
	entry := model.NewTimeEntry(recordedAt.Unix(), minutes, model.StringPtr("transcript"), model.StringPtr("summary"), catPtr, nil, nil)
	require.NoError(t, repo.Create(entry))
	return entry
}

func TestEntryRepo_CreateAssignsKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	entry := createTestEntry(t, repo, time.Now(), 30, "work")
	assert.Contains(t, entry.Key, model.PrefixEntry+":")

	loaded, err := repo.Get(entry.Key)
	require.NoError(t, err)
	assert.Equal(t, entry.RecordedAt, loaded.RecordedAt)
	assert.Equal(t, 30, loaded.Duration)
	require.NotNil(t, loaded.CategoryID)
	assert.Equal(t, "work", *loaded.CategoryID)
}

func TestEntryRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	_, err := repo.Get("entry:does-not-exist")
	assert.True(t, IsErrKeyNotFound(err))
}

func TestEntryRepo_CreateBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	now := time.Now()

	entries := []*model.TimeEntry{
		model.NewTimeEntry(now.Unix(), 20, model.StringPtr("t"), model.StringPtr("coding"), model.StringPtr("work"), nil, nil),
		model.NewTimeEntry(now.Unix(), 10, model.StringPtr("t"), model.StringPtr("lunch"), model.StringPtr("personal"), nil, nil),
		model.NewTimeEntry(now.Unix(), 30, model.StringPtr("t"), model.StringPtr("gym"), model.StringPtr("health"), nil, nil),
	}
	require.NoError(t, repo.CreateBatch(entries))

	for _, e := range entries {
		assert.NotEmpty(t, e.Key)
	}

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Entries sharing a RecordedAt keep creation order via the sortable key.
	assert.Equal(t, "coding", *all[0].Summary)
	assert.Equal(t, "lunch", *all[1].Summary)
	assert.Equal(t, "gym", *all[2].Summary)
}

func TestEntryRepo_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	now := time.Now()

	createTestEntry(t, repo, now.Add(-2*time.Hour), 10, "work")
	newest := createTestEntry(t, repo, now, 10, "work")
	createTestEntry(t, repo, now.Add(-1*time.Hour), 10, "work")

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, newest.Key, entries[0].Key)
	assert.True(t, entries[0].RecordedAt >= entries[1].RecordedAt)
	assert.True(t, entries[1].RecordedAt >= entries[2].RecordedAt)
}

func TestEntryRepo_ListBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	dayStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	before := createTestEntry(t, repo, dayStart.Add(-time.Minute), 10, "work")
	inside := createTestEntry(t, repo, dayStart.Add(12*time.Hour), 10, "work")
	atStart := createTestEntry(t, repo, dayStart, 10, "work")
	atEnd := createTestEntry(t, repo, dayEnd, 10, "work")

	entries, err := repo.ListBetween(dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	keys := []string{entries[0].Key, entries[1].Key}
	assert.Contains(t, keys, inside.Key)
	assert.Contains(t, keys, atStart.Key) // start is inclusive
	assert.NotContains(t, keys, before.Key)
	assert.NotContains(t, keys, atEnd.Key) // end is exclusive
}

func TestEntryRepo_ListByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	now := time.Now()

	createTestEntry(t, repo, now, 10, "work")
	createTestEntry(t, repo, now, 10, "health")
	createTestEntry(t, repo, now, 10, "work")
	uncategorized := model.NewTimeEntry(now.Unix(), 10, nil, nil, nil, nil, nil)
	require.NoError(t, repo.Create(uncategorized))

	entries, err := repo.ListByCategory("work")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEntryRepo_TotalsByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	now := time.Now()

	createTestEntry(t, repo, now, 30, "work")
	createTestEntry(t, repo, now, 45, "work")
	createTestEntry(t, repo, now, 20, "health")
	uncategorized := model.NewTimeEntry(now.Unix(), 5, nil, nil, nil, nil, nil)
	require.NoError(t, repo.Create(uncategorized))

	totals, err := repo.TotalsByCategory(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 3)

	// Longest totals first.
	assert.Equal(t, "work", totals[0].CategoryID)
	assert.Equal(t, 75, totals[0].Minutes)
	assert.Equal(t, 2, totals[0].EntryCount)
	assert.Equal(t, "health", totals[1].CategoryID)
	assert.Equal(t, 20, totals[1].Minutes)

	// Uncategorized entries aggregate under the empty id.
	assert.Equal(t, "", totals[2].CategoryID)
	assert.Equal(t, 5, totals[2].Minutes)
}

func TestCategoryRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	category := model.NewCategory("reading", "Reading", "#AABBCC", "📖")
	require.NoError(t, repo.Create(category))

	loaded, err := repo.Get("reading")
	require.NoError(t, err)
	assert.Equal(t, "Reading", loaded.Name)
	assert.Equal(t, "#AABBCC", loaded.Color)
}

func TestCategoryRepo_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	require.NoError(t, repo.Create(model.NewCategory("work", "Work", "", "")))
	err := repo.Create(model.NewCategory("work", "Work Again", "", ""))
	assert.ErrorIs(t, err, apperrors.ErrCategoryExists)
}

func TestCategoryRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	_, err := repo.Get("nope")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestCategoryRepo_DeleteKeepsEntries(t *testing.T) {
	db := setupTestDB(t)
	categories := NewCategoryRepo(db)
	entries := NewEntryRepo(db)
	now := time.Now()

	require.NoError(t, categories.Create(model.NewCategory("work", "Work", "", "")))
	e1 := createTestEntry(t, entries, now, 30, "work")
	e2 := createTestEntry(t, entries, now, 15, "work")
	other := createTestEntry(t, entries, now, 10, "health")

	require.NoError(t, categories.Delete("work", entries))

	_, err := categories.Get("work")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	// Entries survive with their category reference cleared.
	for _, key := range []string{e1.Key, e2.Key} {
		loaded, err := entries.Get(key)
		require.NoError(t, err)
		assert.Nil(t, loaded.CategoryID)
		assert.NotZero(t, loaded.Duration)
	}

	// Entries in other categories are untouched.
	loaded, err := entries.Get(other.Key)
	require.NoError(t, err)
	require.NotNil(t, loaded.CategoryID)
	assert.Equal(t, "health", *loaded.CategoryID)
}

func TestCategoryRepo_DeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	categories := NewCategoryRepo(db)
	entries := NewEntryRepo(db)

	err := categories.Delete("ghost", entries)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestCategoryRepo_SeedDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	require.NoError(t, repo.SeedDefaults())

	categories, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	otherCat, err := repo.Get(model.CategoryOther)
	require.NoError(t, err)
	assert.Equal(t, "Other", otherCat.Name)
}

func TestCategoryRepo_SeedDefaultsPreservesEdits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	require.NoError(t, repo.SeedDefaults())

	work, err := repo.Get("work")
	require.NoError(t, err)
	work.Name = "Deep Work"
	require.NoError(t, repo.Update(work))

	// Re-seeding must not clobber the edit.
	require.NoError(t, repo.SeedDefaults())
	work, err = repo.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "Deep Work", work.Name)
}

func TestSettingsRepo_GetCreatesDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	settings, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 60, settings.NotificationInterval)
	assert.True(t, settings.NotificationEnabled)
	assert.Equal(t, 9, settings.NotificationStart)
	assert.Equal(t, 21, settings.NotificationEnd)
	assert.Equal(t, 120, settings.MaxRecordingSeconds)
	assert.Nil(t, settings.LastCheckInTime)

	// The defaults are persisted, not recreated per call.
	again, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.NotificationInterval, again.NotificationInterval)
}

func TestSettingsRepo_SetValueRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	tests := []struct {
		key  string
		set  string
		want string
	}{
		{"notification_interval", "30", "30"},
		{"notification_enabled", "false", "false"},
		{"notification_start_hour", "8", "8"},
		{"notification_end_hour", "20", "20"},
		{"max_recording_seconds", "90", "90"},
	}
	for _, tc := range tests {
		require.NoError(t, repo.SetValue(tc.key, tc.set), tc.key)
		got, err := repo.GetValue(tc.key)
		require.NoError(t, err, tc.key)
		assert.Equal(t, tc.want, got, tc.key)
	}
}

func TestSettingsRepo_APIKeyNeverEchoed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	got, err := repo.GetValue("api_key")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, repo.SetValue("api_key", "sk-secret-value"))
	got, err = repo.GetValue("api_key")
	require.NoError(t, err)
	assert.Equal(t, "(set)", got)
	assert.NotContains(t, got, "secret")
}

func TestSettingsRepo_SetValueRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	assert.Error(t, repo.SetValue("notification_interval", "0"))
	assert.Error(t, repo.SetValue("notification_interval", "abc"))
	assert.Error(t, repo.SetValue("notification_start_hour", "24"))
	assert.Error(t, repo.SetValue("notification_enabled", "maybe"))
	assert.Error(t, repo.SetValue("unknown_key", "1"))

	// Failed sets must not have corrupted the stored settings.
	settings, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 60, settings.NotificationInterval)
}

func TestSettingsRepo_SetValueRejectsInvertedWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	// 9..21 default; moving the end below the start must fail validation.
	assert.Error(t, repo.SetValue("notification_end_hour", "8"))
}

func TestSettingsRepo_CheckIn(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	now := time.Now().Unix()
	require.NoError(t, repo.CheckIn(now))

	settings, err := repo.Get()
	require.NoError(t, err)
	last, ok := settings.LastCheckIn()
	require.True(t, ok)
	assert.Equal(t, now, last.Unix())
}

func TestDB_SetAllIsAtomic(t *testing.T) {
	db := setupTestDB(t)

	a := model.NewTimeEntry(time.Now().Unix(), 10, nil, nil, nil, nil, nil)
	a.Key = "entry:a"
	b := model.NewTimeEntry(time.Now().Unix(), 20, nil, nil, nil, nil, nil)
	b.Key = "entry:b"

	require.NoError(t, db.SetAll([]model.Model{a, b}))

	for _, key := range []string{"entry:a", "entry:b"} {
		exists, err := db.Exists(key)
		require.NoError(t, err)
		assert.True(t, exists, key)
	}
}
