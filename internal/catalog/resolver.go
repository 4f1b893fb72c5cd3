package catalog

import (
	"context"

	"github.com/biocactus/biocactus/internal/apperr"
)

// Resolver looks up topic definitions, checking the shared catalog first and
// falling back to the learner's custom curriculum.
type Resolver struct {
	store              Store
	defaultLessonCount int
}

// NewResolver creates a topic resolver backed by the given store.
// defaultLessonCount is used when a topic definition carries no lesson count.
func NewResolver(store Store, defaultLessonCount int) *Resolver {
	if defaultLessonCount < 1 {
		defaultLessonCount = 5
	}
	return &Resolver{store: store, defaultLessonCount: defaultLessonCount}
}

// Resolve finds the topic with the given id. custom is the learner's custom
// curriculum, consulted only when the shared catalog has no such topic.
func (r *Resolver) Resolve(ctx context.Context, id string, custom []Topic) (Topic, error) {
	topic, err := r.store.GetTopic(ctx, id)
	if err == nil {
		return topic, nil
	}
	if !apperr.IsNotFound(err) {
		return Topic{}, err
	}

	for _, t := range custom {
		if t.ID == id {
			return t, nil
		}
	}
	return Topic{}, apperr.NotFoundf("topic not found: %s", id)
}

// LessonCount returns the topic's lesson count, falling back to the configured
// default when the definition cannot resolve a count. The fallback is a
// deliberate graceful-degradation policy for hand-written or AI-generated
// curricula with missing counts.
func (r *Resolver) LessonCount(ctx context.Context, id string, custom []Topic) int {
	topic, err := r.Resolve(ctx, id, custom)
	if err != nil || topic.LessonCount < 1 {
		return r.defaultLessonCount
	}
	return topic.LessonCount
}

// Topics returns the learner's effective curriculum: the custom one when
// present, otherwise the shared catalog ordered by topic order.
func (r *Resolver) Topics(ctx context.Context, custom []Topic) ([]Topic, error) {
	if len(custom) > 0 {
		return custom, nil
	}
	return r.store.ListTopics(ctx)
}
