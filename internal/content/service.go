package content

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/platform/cache"
)

const (
	lockTTL       = 90 * time.Second
	lockWait      = 10 * time.Second
	lockPollEvery = 250 * time.Millisecond
)

// Unlocker releases a held generation lock.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// Locker provides per-key mutual exclusion around content generation.
type Locker interface {
	// TryLock attempts to acquire the key. ok is false when another
	// holder owns it.
	TryLock(ctx context.Context, key string) (lock Unlocker, ok bool, err error)
}

// NopLocker never contends. Suitable for single-process deployments and
// tests; the store's conditional create still keeps the cache consistent.
type NopLocker struct{}

type nopUnlock struct{}

func (nopUnlock) Unlock(context.Context) error { return nil }

func (NopLocker) TryLock(context.Context, string) (Unlocker, bool, error) {
	return nopUnlock{}, true, nil
}

// RedisLocker implements Locker on the shared Redis cache, so mutual
// exclusion holds across processes.
type RedisLocker struct {
	cache *cache.Cache
}

// NewRedisLocker creates a Redis-backed generation locker.
func NewRedisLocker(c *cache.Cache) *RedisLocker {
	return &RedisLocker{cache: c}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (Unlocker, bool, error) {
	token := make([]byte, 16)
	rand.Read(token)
	lock, ok, err := l.cache.TryLock(ctx, "quizgen:"+key, fmt.Sprintf("%x", token), lockTTL)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock, true, nil
}

// GenerateFunc produces a question set. It must not block unboundedly and
// must never fail: a generation problem yields an empty set.
type GenerateFunc func(ctx context.Context) []Question

// Service is the get-or-generate front of the quiz content cache.
type Service struct {
	store  Store
	locker Locker
}

// NewService creates a content cache service. A nil locker disables
// cross-process exclusion but keeps the conditional-create guarantee.
func NewService(store Store, locker Locker) *Service {
	if locker == nil {
		locker = NopLocker{}
	}
	return &Service{store: store, locker: locker}
}

// GetOrGenerate returns the cached question set for (topic, language), or
// generates and caches it. cached reports whether the result came from the
// cache. An empty generation result is returned as-is and never cached, so a
// later request retries.
//
// The per-key lock makes generation happen at most once per key under
// concurrent misses; a loser that times out waiting still cannot poison the
// cache because the persist is a conditional create.
func (s *Service) GetOrGenerate(ctx context.Context, topicID, languageCode string, generate GenerateFunc) (questions []Question, cached bool, err error) {
	entry, err := s.store.Get(ctx, topicID, languageCode)
	if err == nil {
		return entry.Questions, true, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, err
	}

	key := Key(topicID, languageCode)
	lock, ok, err := s.locker.TryLock(ctx, key)
	if err != nil {
		// Lock backend trouble must not take the learner flow down;
		// fall through to generation guarded by the conditional create.
		slog.Warn("generation lock unavailable", "key", key, "error", err)
	} else if !ok {
		// Another worker is generating this key. Wait a bounded time
		// for its entry, then give up and generate for this request.
		if entry := s.awaitEntry(ctx, topicID, languageCode); entry != nil {
			return entry.Questions, true, nil
		}
	} else {
		defer func() {
			if uerr := lock.Unlock(ctx); uerr != nil {
				slog.Warn("failed to release generation lock", "key", key, "error", uerr)
			}
		}()

		// Re-check under the lock: the previous holder may have
		// populated the entry between our miss and the acquire.
		if entry, err := s.store.Get(ctx, topicID, languageCode); err == nil {
			return entry.Questions, true, nil
		} else if !apperr.IsNotFound(err) {
			return nil, false, err
		}
	}

	generated := generate(ctx)
	if len(generated) == 0 {
		slog.Warn("generation yielded no questions, not caching",
			"topic_id", topicID, "language", languageCode)
		return []Question{}, false, nil
	}

	created, err := s.store.PutIfAbsent(ctx, &Entry{
		TopicID:   topicID,
		Language:  languageCode,
		Questions: generated,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache question set: %w", err)
	}
	if !created {
		// Lost the conditional create: return the winner's entry so all
		// callers observe identical content.
		if entry, err := s.store.Get(ctx, topicID, languageCode); err == nil {
			return entry.Questions, true, nil
		}
	}

	slog.Info("quiz content generated",
		"topic_id", topicID, "language", languageCode, "questions", len(generated))
	return generated, false, nil
}

// awaitEntry polls for the entry while another worker generates it. Returns
// nil when the wait budget or the request context expires.
func (s *Service) awaitEntry(ctx context.Context, topicID, languageCode string) *Entry {
	deadline := time.NewTimer(lockWait)
	defer deadline.Stop()
	tick := time.NewTicker(lockPollEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-tick.C:
			if entry, err := s.store.Get(ctx, topicID, languageCode); err == nil {
				return entry
			}
		}
	}
}
