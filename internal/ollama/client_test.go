package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:    server.URL,
		EmbedModel: "test-embed",
		ChatModel:  "test-chat",
	})
	return client, server
}

func TestEmbed(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req["model"] != "test-embed" || req["prompt"] != "hello" {
			t.Errorf("unexpected request body: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	})
	defer server.Close()

	vec, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("got %d dims, want 3", len(vec))
	}
}

func TestEmbedUnavailable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	if _, err := client.Embed(context.Background(), "hello"); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("got %v, want ErrEmbeddingUnavailable", err)
	}

	// Unreachable endpoint is the same failure class.
	server.Close()
	if _, err := client.Embed(context.Background(), "hello"); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("got %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedInvalidBody(t *testing.T) {
	for _, body := range []string{`{}`, `{"embedding":[]}`, `not json`} {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		if _, err := client.Embed(context.Background(), "hello"); !errors.Is(err, ErrInvalidEmbedding) {
			t.Errorf("body %q: got %v, want ErrInvalidEmbedding", body, err)
		}
		server.Close()
	}
}

func TestChat(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
			Stream   bool      `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("chat requests must be non-streaming")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("unexpected messages: %v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "pong"}})
	})
	defer server.Close()

	reply, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a test."},
		{Role: RoleUser, Content: "ping"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "pong" {
		t.Errorf("got %q, want %q", reply, "pong")
	}
}

func TestChatMissingContent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{}}`))
	})
	defer server.Close()

	if _, err := client.Chat(context.Background(), nil); !errors.Is(err, ErrInvalidChatResponse) {
		t.Errorf("got %v, want ErrInvalidChatResponse", err)
	}
}
