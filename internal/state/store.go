package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/mnemo/internal/memory"
)

// Snapshot represents the latest library data available to the UI.
type Snapshot struct {
	Documents           []memory.Document
	Folders             []memory.FaceFolder
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the backend has been unreachable for multiple
// refreshes. A rejected request does not count as offline.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2 && memory.IsUnreachable(s.LastError)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored library. When err is non-nil the previous data
// is kept but the error is recorded for visibility.
func (s *Store) Update(docs []memory.Document, folders []memory.FaceFolder, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Documents = clone(docs)
	s.snapshot.Folders = clone(folders)
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// RemoveDocument drops a document locally after a successful delete so the
// UI does not wait for the next refresh.
func (s *Store) RemoveDocument(id memory.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshot.Documents[:0:0]
	for _, d := range s.snapshot.Documents {
		if d.DocumentID != id {
			kept = append(kept, d)
		}
	}
	s.snapshot.Documents = kept
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Documents = clone(s.snapshot.Documents)
	snap.Folders = clone(s.snapshot.Folders)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func clone[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
