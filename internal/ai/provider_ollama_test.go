package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete(t *testing.T) {
	var receivedModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		// Ollama takes no Authorization header.
		if r.Header.Get("Authorization") != "" {
			t.Error("Ollama should not send Authorization header")
		}

		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)
		receivedModel = req.Model

		fmt.Fprint(w, openaiReply("Ollama response", req.Model, 5, 10))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, WithOllamaModel("mistral:7b"))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Ollama response" {
		t.Errorf("content = %q, want %q", resp.Content, "Ollama response")
	}
	if receivedModel != "mistral:7b" {
		t.Errorf("model = %q, want configured default", receivedModel)
	}
	if resp.InputTokens != 5 {
		t.Errorf("input_tokens = %d, want 5", resp.InputTokens)
	}
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not found"))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewOllamaProvider(server.URL)
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOllamaProvider_Models(t *testing.T) {
	provider := NewOllamaProvider("http://localhost:11434", WithOllamaModel("phi3:mini"))
	models := provider.Models()

	if len(models) != 1 || models[0].ID != "phi3:mini" {
		t.Errorf("Models() = %+v, want configured model", models)
	}
}
