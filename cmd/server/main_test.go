package main

import (
	"context"
	"testing"

	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/platform/config"
)

func TestNewAIRouter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		wantAny bool
	}{
		{"none configured", config.AIConfig{}, false},
		{"google only", config.AIConfig{Google: config.GoogleConfig{APIKey: "key"}}, true},
		{"ollama enabled", config.AIConfig{Ollama: config.OllamaConfig{Enabled: true, URL: "http://localhost:11434"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAIRouter(tt.cfg)
			if router.HasProvider() != tt.wantAny {
				t.Errorf("HasProvider() = %v, want %v", router.HasProvider(), tt.wantAny)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		if logger := newLogger(config.LogConfig{Level: level, Format: "text"}); logger == nil {
			t.Errorf("newLogger(%q) = nil", level)
		}
	}
}

func TestSeedCatalog_FallsBackToBuiltins(t *testing.T) {
	store := catalog.NewMemoryStore()

	if err := seedCatalog(context.Background(), t.TempDir(), store); err != nil {
		t.Fatalf("seedCatalog() error = %v", err)
	}

	topics, err := store.ListTopics(context.Background())
	if err != nil {
		t.Fatalf("ListTopics() error = %v", err)
	}
	if len(topics) != len(catalog.DefaultTopics()) {
		t.Errorf("len(topics) = %d, want %d", len(topics), len(catalog.DefaultTopics()))
	}
}
