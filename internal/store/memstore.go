package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore implements Store in memory. It is used by tests and by the
// server when no database path is configured.
type MemStore struct {
	mu    sync.Mutex
	byID  map[string]*Assessment
	order map[string]int64 // insertion sequence, breaks timestamp ties
	seq   int64
	now   func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:  make(map[string]*Assessment),
		order: make(map[string]int64),
		now:   time.Now,
	}
}

// SaveAssessment implements Store.
func (s *MemStore) SaveAssessment(a *Assessment) (string, error) {
	if a == nil {
		return "", errors.New("assessment is nil")
	}
	if a.PatientID == "" {
		return "", errors.New("assessment has no patient id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.ID = uuid.NewString()
	if cp.Timestamp.IsZero() {
		cp.Timestamp = s.now()
	}
	cp.Timestamp = cp.Timestamp.UTC()
	s.seq++
	s.byID[cp.ID] = &cp
	s.order[cp.ID] = s.seq
	return cp.ID, nil
}

// GetAssessment implements Store.
func (s *MemStore) GetAssessment(id string) (*Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// ListAssessments implements Store.
func (s *MemStore) ListAssessments(patientID string, limit int) ([]*Assessment, error) {
	out := s.filter(func(a *Assessment) bool { return a.PatientID == patientID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListAssessmentsSince implements Store.
func (s *MemStore) ListAssessmentsSince(patientID string, since time.Time) ([]*Assessment, error) {
	return s.filter(func(a *Assessment) bool {
		return a.PatientID == patientID && a.Timestamp.After(since)
	}), nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }

// filter returns copies of matching assessments, newest first.
func (s *MemStore) filter(keep func(*Assessment) bool) []*Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Assessment
	for _, a := range s.byID {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out
}
