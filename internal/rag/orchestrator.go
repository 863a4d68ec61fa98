package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/internal/ollama"
	"github.com/sentrasec/sentra/params"
)

// Embedder embeds the interactive query. Unlike batch ingestion, a failure
// here is fatal for the request.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the slice of knowledge.Store the orchestrator needs.
type Searcher interface {
	Search(ctx context.Context, queryEmbedding []float32, opts knowledge.SearchOptions) ([]knowledge.SearchResult, error)
}

// ChatModel generates the final reply from an assembled message list.
type ChatModel interface {
	Chat(ctx context.Context, messages []ollama.Message) (string, error)
}

type ChatRequest struct {
	Message  string
	ClientID *uint
	History  []ollama.Message
}

type ChatContext struct {
	DocumentsFound int  `json:"documentsFound"`
	HasContext     bool `json:"hasContext"`
}

type ChatResponse struct {
	Response string      `json:"response"`
	Context  ChatContext `json:"context"`
}

// Orchestrator runs the retrieval-augmented chat flow: embed the query,
// retrieve similar knowledge entries for the tenant, assemble the prompt and
// forward it to the chat model.
type Orchestrator struct {
	embedder Embedder
	searcher Searcher
	chat     ChatModel
}

func NewOrchestrator(embedder Embedder, searcher Searcher, chat ChatModel) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		searcher: searcher,
		chat:     chat,
	}
}

func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	queryEmbedding, err := o.embedder.Embed(ctx, req.Message)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := o.searcher.Search(ctx, queryEmbedding, knowledge.SearchOptions{
		Threshold: params.MatchThreshold,
		TopK:      params.MatchCount,
		ClientID:  req.ClientID,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("knowledge search failed: %w", err)
	}

	history := req.History
	if len(history) > params.ChatHistoryLimit {
		history = history[len(history)-params.ChatHistoryLimit:]
	}

	messages := make([]ollama.Message, 0, len(history)+2)
	messages = append(messages, ollama.Message{Role: ollama.RoleSystem, Content: buildSystemPrompt(results)})
	messages = append(messages, history...)
	messages = append(messages, ollama.Message{Role: ollama.RoleUser, Content: req.Message})

	chatCtx := ChatContext{
		DocumentsFound: len(results),
		HasContext:     len(results) > 0,
	}

	reply, err := o.chat.Chat(ctx, messages)
	if errors.Is(err, ollama.ErrInvalidChatResponse) {
		// The backend answered but without content; degrade to the fixed
		// apology instead of failing the request.
		slog.Warn("Chat response missing content, using fallback text")
		return ChatResponse{Response: params.ChatFallbackResponse, Context: chatCtx}, nil
	}
	if err != nil {
		return ChatResponse{}, err
	}

	return ChatResponse{Response: reply, Context: chatCtx}, nil
}
