package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"FeedEngager/internal/ports"
)

// Key namespaces inside the persistence collaborator.
const (
	itemPrefix        = "item:"
	fingerprintPrefix = "fp:"
	authorPrefix      = "author:"
)

// Store is the persistent record of "already acted upon" identity: item
// ids, content fingerprints and author recency timestamps. A full in-memory
// mirror is loaded once at construction for O(1) lookups; every mark writes
// through to the key-value collaborator immediately.
//
// Marks are first-write-wins: re-marking an existing key changes nothing.
// Entries leave the store only through TTL eviction or explicit cleanup.
type Store struct {
	kv      ports.KeyValueStore
	logger  *slog.Logger
	timeNow func() time.Time

	mu    sync.RWMutex
	marks map[string]int64 // namespaced key -> first-write unix millis
}

// New pings the persistence collaborator and loads the full mirror. It
// fails fast when the store is unreachable so a run never starts with an
// unreliable dedup guarantee.
func New(ctx context.Context, kv ports.KeyValueStore, logger *slog.Logger) (*Store, error) {
	return newWithClock(ctx, kv, logger, time.Now)
}

func newWithClock(ctx context.Context, kv ports.KeyValueStore, logger *slog.Logger, timeNow func() time.Time) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("key-value store is not configured")
	}
	if err := kv.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping dedup persistence: %w", err)
	}

	entries, err := kv.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load dedup records: %w", err)
	}

	marks := make(map[string]int64, len(entries))
	for _, entry := range entries {
		millis, convErr := strconv.ParseInt(entry.Value, 10, 64)
		if convErr != nil {
			// Unreadable timestamps still count as "seen"; stamp
			// them now so eviction can age them out eventually.
			millis = timeNow().UnixMilli()
		}
		marks[entry.Key] = millis
	}

	store := &Store{kv: kv, logger: logger, timeNow: timeNow, marks: marks}
	store.debug("dedup store loaded", "records", len(marks))
	return store, nil
}

// HasItem reports whether the given identifier was already acted upon.
func (s *Store) HasItem(id string) bool {
	return s.has(itemPrefix + id)
}

// HasFingerprint reports whether content with this fingerprint was already
// acted upon under any identifier.
func (s *Store) HasFingerprint(hash string) bool {
	return s.has(fingerprintPrefix + hash)
}

// HasAuthorRecently reports whether the author was engaged within the
// window. A non-positive window disables the check.
func (s *Store) HasAuthorRecently(authorKey string, window time.Duration) bool {
	if window <= 0 {
		return false
	}

	s.mu.RLock()
	millis, ok := s.marks[authorPrefix+authorKey]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	age := s.timeNow().UnixMilli() - millis
	return age < window.Milliseconds()
}

// MarkItems records every alias of an acted-upon item.
func (s *Store) MarkItems(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.mark(ctx, itemPrefix+id); err != nil {
			return fmt.Errorf("mark item %s: %w", id, err)
		}
	}
	return nil
}

// MarkFingerprint records an acted-upon content fingerprint.
func (s *Store) MarkFingerprint(ctx context.Context, hash string) error {
	if err := s.mark(ctx, fingerprintPrefix+hash); err != nil {
		return fmt.Errorf("mark fingerprint: %w", err)
	}
	return nil
}

// MarkAuthor records the engagement timestamp for an author.
func (s *Store) MarkAuthor(ctx context.Context, authorKey string) error {
	if err := s.mark(ctx, authorPrefix+authorKey); err != nil {
		return fmt.Errorf("mark author %s: %w", authorKey, err)
	}
	return nil
}

// EvictOlderThan removes entries whose first-write timestamp is older than
// the given duration and returns how many were dropped. Run at the start of
// a run, never mid-run.
func (s *Store) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.timeNow().UnixMilli() - maxAge.Milliseconds()

	s.mu.Lock()
	var expired []string
	for key, millis := range s.marks {
		if millis < cutoff {
			expired = append(expired, key)
		}
	}
	s.mu.Unlock()

	if len(expired) == 0 {
		return 0, nil
	}

	if err := s.kv.Delete(ctx, expired); err != nil {
		return 0, fmt.Errorf("evict dedup records: %w", err)
	}

	s.mu.Lock()
	for _, key := range expired {
		delete(s.marks, key)
	}
	s.mu.Unlock()

	s.debug("evicted dedup records", "count", len(expired))
	return len(expired), nil
}

// Size returns the number of live records in the mirror.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.marks)
}

func (s *Store) has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.marks[key]
	return ok
}

func (s *Store) mark(ctx context.Context, key string) error {
	s.mu.Lock()
	if _, exists := s.marks[key]; exists {
		s.mu.Unlock()
		return nil
	}
	millis := s.timeNow().UnixMilli()
	s.marks[key] = millis
	s.mu.Unlock()

	if err := s.kv.Set(ctx, key, strconv.FormatInt(millis, 10)); err != nil {
		// Keep mirror and persistence consistent so a later retry can
		// write through again.
		s.mu.Lock()
		delete(s.marks, key)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
