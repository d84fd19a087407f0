// Package memory holds process-local implementations of storage ports.
package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/news-api/internal/domain"
)

const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	records map[string]domain.VerificationRecord
}

// VerificationStore keeps one-time codes in memory. Keys are spread over
// independently locked shards so unrelated identities do not contend.
// Expired records are removed lazily by the coordinator, or by Sweep.
type VerificationStore struct {
	shards [shardCount]*shard
	now    func() time.Time
}

// NewVerificationStore returns an empty store. now defaults to time.Now.
func NewVerificationStore(now func() time.Time) *VerificationStore {
	if now == nil {
		now = time.Now
	}
	s := &VerificationStore{now: now}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]domain.VerificationRecord)}
	}
	return s
}

func (s *VerificationStore) shardFor(identity string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return s.shards[h.Sum32()%shardCount]
}

func (s *VerificationStore) Put(_ context.Context, identity, code string, ttl time.Duration) error {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	sh.records[identity] = domain.VerificationRecord{
		Identity:  identity,
		Code:      code,
		ExpiresAt: s.now().Add(ttl),
	}
	sh.mu.Unlock()
	return nil
}

func (s *VerificationStore) Get(_ context.Context, identity string) (*domain.VerificationRecord, error) {
	sh := s.shardFor(identity)
	sh.mu.RLock()
	rec, ok := sh.records[identity]
	sh.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("verification code: %w", domain.ErrNotFound)
	}
	return &rec, nil
}

func (s *VerificationStore) Remove(_ context.Context, identity string) error {
	sh := s.shardFor(identity)
	sh.mu.Lock()
	delete(sh.records, identity)
	sh.mu.Unlock()
	return nil
}

func (s *VerificationStore) RemoveIfMatch(_ context.Context, rec *domain.VerificationRecord) (bool, error) {
	sh := s.shardFor(rec.Identity)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur, ok := sh.records[rec.Identity]
	if !ok || cur.Code != rec.Code || !cur.ExpiresAt.Equal(rec.ExpiresAt) {
		return false, nil
	}
	delete(sh.records, rec.Identity)
	return true, nil
}

// Len returns the number of stored records, expired or not.
func (s *VerificationStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep drops every record that has expired and returns how many it removed.
func (s *VerificationStore) Sweep() int {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, rec := range sh.records {
			if rec.Expired(now) {
				delete(sh.records, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *VerificationStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
