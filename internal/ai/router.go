package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router tries registered providers in registration order until one
// answers. The first provider is the primary for every task; the rest
// are fallbacks for outages and rate limits.
type Router struct {
	mu        sync.RWMutex
	providers []namedProvider
}

type namedProvider struct {
	name     string
	provider Provider
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Register appends a provider to the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, namedProvider{name: name, provider: provider})
}

// Complete runs the request against the chain, returning the first
// successful response. The last provider error is wrapped when all fail.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	chain := r.providers
	r.mu.RUnlock()

	if len(chain) == 0 {
		return CompletionResponse{}, fmt.Errorf("no AI providers registered")
	}

	var lastErr error
	for _, p := range chain {
		resp, err := p.provider.Complete(ctx, req)
		if err != nil {
			lastErr = err
			slog.Warn("AI provider failed, trying next",
				"provider", p.name,
				"task", req.Task.String(),
				"error", err,
			)
			continue
		}

		slog.Debug("AI request completed",
			"provider", p.name,
			"task", req.Task.String(),
			"model", resp.Model,
			"tokens", resp.TotalTokens(),
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("all AI providers failed: %w", lastErr)
}

// HasProvider reports whether at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
