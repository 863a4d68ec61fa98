package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/internal/ollama"
	"github.com/sentrasec/sentra/params"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

type stubSearcher struct {
	results  []knowledge.SearchResult
	lastOpts knowledge.SearchOptions
}

func (s *stubSearcher) Search(ctx context.Context, queryEmbedding []float32, opts knowledge.SearchOptions) ([]knowledge.SearchResult, error) {
	s.lastOpts = opts
	return s.results, nil
}

type stubChat struct {
	reply    string
	err      error
	messages []ollama.Message
}

func (s *stubChat) Chat(ctx context.Context, messages []ollama.Message) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestChatWithContext(t *testing.T) {
	searcher := &stubSearcher{results: []knowledge.SearchResult{
		{Content: "CVE-2024-1234 affects nginx", Similarity: 0.91},
		{Content: "Patch released in 1.25.4", Similarity: 0.84},
	}}
	chat := &stubChat{reply: "Patch to 1.25.4."}
	clientID := uint(7)

	o := NewOrchestrator(&stubEmbedder{}, searcher, chat)
	resp, err := o.Chat(context.Background(), ChatRequest{Message: "how do I fix it?", ClientID: &clientID})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Response != "Patch to 1.25.4." {
		t.Errorf("unexpected response %q", resp.Response)
	}
	if !resp.Context.HasContext || resp.Context.DocumentsFound != 2 {
		t.Errorf("unexpected context %+v", resp.Context)
	}
	if searcher.lastOpts.ClientID == nil || *searcher.lastOpts.ClientID != clientID {
		t.Error("search not scoped to the requesting tenant")
	}
	if searcher.lastOpts.Threshold != params.MatchThreshold || searcher.lastOpts.TopK != params.MatchCount {
		t.Errorf("unexpected search options %+v", searcher.lastOpts)
	}

	system := chat.messages[0]
	if system.Role != ollama.RoleSystem {
		t.Fatal("first message must be the system prompt")
	}
	if !strings.Contains(system.Content, "Document 1:") || !strings.Contains(system.Content, "Document 2:") {
		t.Error("system prompt must number each retrieved document")
	}
	if !strings.Contains(system.Content, "CVE-2024-1234 affects nginx") {
		t.Error("retrieved content missing from context block")
	}
}

func TestChatWithoutContext(t *testing.T) {
	chat := &stubChat{reply: "General advice."}
	o := NewOrchestrator(&stubEmbedder{}, &stubSearcher{}, chat)

	resp, err := o.Chat(context.Background(), ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Context.HasContext || resp.Context.DocumentsFound != 0 {
		t.Errorf("unexpected context %+v", resp.Context)
	}
	system := chat.messages[0].Content
	if strings.Contains(system, "Document 1:") {
		t.Error("no-context prompt must not carry a context block")
	}
	if !strings.Contains(system, "general knowledge") {
		t.Error("no-context prompt must tell the model to use general knowledge")
	}
}

func TestChatHistoryTruncation(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	o := NewOrchestrator(&stubEmbedder{}, &stubSearcher{}, chat)

	var history []ollama.Message
	for i := 0; i < 25; i++ {
		history = append(history, ollama.Message{Role: ollama.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}

	if _, err := o.Chat(context.Background(), ChatRequest{Message: "latest", History: history}); err != nil {
		t.Fatal(err)
	}

	// system + last 10 history turns + current user message
	if len(chat.messages) != params.ChatHistoryLimit+2 {
		t.Fatalf("forwarded %d messages, want %d", len(chat.messages), params.ChatHistoryLimit+2)
	}
	if chat.messages[1].Content != "turn 15" {
		t.Errorf("history window starts at %q, want %q", chat.messages[1].Content, "turn 15")
	}
	if chat.messages[len(chat.messages)-1].Content != "latest" {
		t.Error("current user message must come last")
	}
}

func TestChatEmbeddingFailureIsFatal(t *testing.T) {
	o := NewOrchestrator(&stubEmbedder{err: ollama.ErrEmbeddingUnavailable}, &stubSearcher{}, &stubChat{})
	if _, err := o.Chat(context.Background(), ChatRequest{Message: "q"}); !errors.Is(err, ollama.ErrEmbeddingUnavailable) {
		t.Errorf("got %v, want wrapped ErrEmbeddingUnavailable", err)
	}
}

func TestChatMissingContentFallsBack(t *testing.T) {
	chat := &stubChat{err: ollama.ErrInvalidChatResponse}
	o := NewOrchestrator(&stubEmbedder{}, &stubSearcher{}, chat)

	resp, err := o.Chat(context.Background(), ChatRequest{Message: "q"})
	if err != nil {
		t.Fatalf("missing content must not fail the request: %v", err)
	}
	if resp.Response != params.ChatFallbackResponse {
		t.Errorf("got %q, want the fixed fallback text", resp.Response)
	}
}
