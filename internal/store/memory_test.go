package store

import (
	"testing"
	"time"

	"github.com/tj/assert"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(maxEntries int, maxAge time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(maxEntries, maxAge)
	s.now = clock.Now
	return s, clock
}

func TestSaveAndGet(t *testing.T) {
	s, _ := newTestStore(10, time.Hour)

	id := s.Save(airquality.Report{City: "Bengaluru"})
	assert.NotEmpty(t, id)

	r, err := s.Get(id)
	assert.NoError(t, err)
	assert.Equal(t, "Bengaluru", r.City)

	_, err = s.Get("missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestSaveEvictsOldest(t *testing.T) {
	s, _ := newTestStore(2, 0)

	first := s.Save(airquality.Report{City: "a"})
	second := s.Save(airquality.Report{City: "b"})
	third := s.Save(airquality.Report{City: "c"})

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(first)
	assert.Equal(t, ErrNotFound, err)
	_, err = s.Get(second)
	assert.NoError(t, err)
	_, err = s.Get(third)
	assert.NoError(t, err)
}

func TestExpiredReportsArePruned(t *testing.T) {
	s, clock := newTestStore(0, 10*time.Minute)

	old := s.Save(airquality.Report{City: "old"})
	clock.now = clock.now.Add(6 * time.Minute)
	fresh := s.Save(airquality.Report{City: "fresh"})
	clock.now = clock.now.Add(6 * time.Minute)

	_, err := s.Get(old)
	assert.Equal(t, ErrNotFound, err)

	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())

	r, err := s.Get(fresh)
	assert.NoError(t, err)
	assert.Equal(t, "fresh", r.City)
}

func TestPruneWithoutMaxAge(t *testing.T) {
	s, clock := newTestStore(0, 0)
	s.Save(airquality.Report{})
	clock.now = clock.now.Add(24 * time.Hour)

	assert.Equal(t, 0, s.Prune())
	assert.Equal(t, 1, s.Len())
}
