package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Narrate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Model != "llama3.1" || req.System != systemPrompt {
			t.Errorf("Unexpected request: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1",
			Response:        "The MFA requirement is certain (100%).",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL + "/", Model: "llama3.1", Timeout: 5, Strict: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Narrate(context.Background(), NarrateRequest{Report: sampleReport()})
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if resp.Text != "The MFA requirement is certain (100%)." {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Narrate_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "No figures here.", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Strict: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Narrate(context.Background(), NarrateRequest{Report: sampleReport(), Prompt: "abcdefgh"})
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if want := (len("abcdefgh") + len("No figures here.")) / 4; resp.TokensUsed != want {
		t.Errorf("Expected %d estimated tokens, got %d", want, resp.TokensUsed)
	}
	if resp.Model != "mistral" {
		t.Errorf("Expected fallback model mistral, got %s", resp.Model)
	}
}

func TestOllamaProvider_Narrate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Narrate(context.Background(), NarrateRequest{Report: sampleReport()})
	if err == nil || !strings.Contains(err.Error(), "model 'nope' not found") {
		t.Fatalf("Expected API error message, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer up.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: up.URL, Model: "llama3.1"})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	provider, _ = NewOllamaProvider(Config{BaseURL: down.URL, Model: "llama3.1"})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable")
	}
}

func TestNewOllamaProvider_RequiresModel(t *testing.T) {
	if _, err := NewOllamaProvider(Config{}); err == nil {
		t.Fatal("Expected error for missing model")
	}
}
