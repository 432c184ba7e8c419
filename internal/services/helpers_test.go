package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"syllabus-tracker/internal/database"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *testClock) Set(t time.Time) { c.now = t }

func seedCatalog(t *testing.T, store *database.MemoryStore, syllabi map[string][]string) {
	t.Helper()
	catalog := database.NewCatalog()
	for name, tasks := range syllabi {
		catalog.Syllabi[name] = &database.Syllabus{Tasks: tasks}
	}
	require.NoError(t, store.SaveCatalog(catalog))
}

func newTestEngine(t *testing.T, syllabi map[string][]string) (*ProgressService, *database.MemoryStore, *testClock) {
	t.Helper()
	store := database.NewMemoryStore()
	seedCatalog(t, store, syllabi)

	clock := &testClock{now: t0}
	ps := NewProgressService(store, nil)
	ps.SetClock(clock.Now)
	return ps, store, clock
}

func loadSyllabusProgress(t *testing.T, store *database.MemoryStore, name string) *database.SyllabusProgress {
	t.Helper()
	progress, err := store.LoadProgress()
	require.NoError(t, err)
	p, ok := progress.SyllabiProgress[name]
	require.True(t, ok, "no progress for %q", name)
	return p
}

func mathSyllabus() map[string][]string {
	return map[string][]string{
		"Math":    {"Algebra", "Geometry", "Calculus"},
		"Physics": {"Mechanics", "Optics"},
	}
}
