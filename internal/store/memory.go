package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/aqi-dashboard/internal/airquality"
)

var (
	// ErrNotFound is returned when no report is cached under an id.
	ErrNotFound = errors.New("no report for id")
)

type entry struct {
	report  airquality.Report
	savedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of rendered reports. The
// dashboard keeps reports here only so the chart and CSV of a page can be
// served without re-querying upstream; new queries never read from it.
type MemoryStore struct {
	mu sync.RWMutex

	data  map[string]entry
	order []string // ids, oldest first

	// retention configuration
	maxEntries int           // max number of cached reports (0 = unlimited)
	maxAge     time.Duration // max age of a cached report (0 = unlimited)

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save caches a report and returns its id. The oldest reports are evicted
// beyond maxEntries.
func (s *MemoryStore) Save(report airquality.Report) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = entry{report: report, savedAt: s.now()}
	s.order = append(s.order, id)

	if s.maxEntries > 0 && len(s.order) > s.maxEntries {
		over := len(s.order) - s.maxEntries
		for _, old := range s.order[:over] {
			delete(s.data, old)
		}
		s.order = s.order[over:]
	}

	return id
}

// Get returns the cached report for id.
func (s *MemoryStore) Get(id string) (airquality.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[id]
	if !ok {
		return airquality.Report{}, ErrNotFound
	}
	if s.expired(e, s.now()) {
		return airquality.Report{}, ErrNotFound
	}
	return e.report, nil
}

// Prune drops expired reports and returns how many were removed.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	i := 0
	for ; i < len(s.order); i++ {
		if !s.expired(s.data[s.order[i]], now) {
			break
		}
		delete(s.data, s.order[i])
	}
	s.order = s.order[i:]
	return i
}

// Len returns the number of cached reports, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(e.savedAt) > s.maxAge
}
