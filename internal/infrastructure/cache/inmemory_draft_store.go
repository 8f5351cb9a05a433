package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
)

type draftEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryDraftStore implements DraftStore using an in-memory map.
// Drafts do not survive a restart; suitable for single-instance deployments and testing.
type InMemoryDraftStore struct {
	mu        sync.RWMutex
	entries   map[string]draftEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDraftStore creates a new in-memory draft store.
// It starts a background goroutine to clean up expired drafts.
func NewInMemoryDraftStore() *InMemoryDraftStore {
	store := &InMemoryDraftStore{
		entries:  make(map[string]draftEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(5 * time.Minute)

	return store
}

// Save stores a draft; a non-positive ttl keeps it until deleted
func (s *InMemoryDraftStore) Save(_ context.Context, tenantID, taxInvoiceID uuid.UUID, snap taxinvoice.SessionSnapshot, ttl time.Duration) error {
	data, err := encodeDraft(snap)
	if err != nil {
		return err
	}

	e := draftEntry{data: data}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[draftKey("", tenantID, taxInvoiceID)] = e
	return nil
}

// Load returns the draft, or shared.ErrNotFound when missing or expired
func (s *InMemoryDraftStore) Load(_ context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoice.SessionSnapshot, error) {
	s.mu.RLock()
	e, ok := s.entries[draftKey("", tenantID, taxInvoiceID)]
	s.mu.RUnlock()

	if !ok || s.expired(e, s.now()) {
		return nil, shared.ErrNotFound
	}
	return decodeDraft(e.data)
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *InMemoryDraftStore) Delete(_ context.Context, tenantID, taxInvoiceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, draftKey("", tenantID, taxInvoiceID))
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryDraftStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored drafts, including expired ones not yet cleaned up
func (s *InMemoryDraftStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryDraftStore) expired(e draftEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *InMemoryDraftStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired drafts from the store
func (s *InMemoryDraftStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, key)
		}
	}
}

var _ taxinvoice.DraftStore = (*InMemoryDraftStore)(nil)
