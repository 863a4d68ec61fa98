package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmbeddingUnavailable covers transport failures and non-2xx replies
	// from the embedding endpoint.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrInvalidEmbedding is returned when the response body carries no
	// numeric embedding array.
	ErrInvalidEmbedding = errors.New("embedding response missing vector")
	// ErrChatUnavailable covers transport failures and non-2xx replies from
	// the chat endpoint.
	ErrChatUnavailable = errors.New("chat service unavailable")
	// ErrInvalidChatResponse is returned when the reply has no message
	// content. Callers substitute their fallback text.
	ErrInvalidChatResponse = errors.New("chat response missing message content")
)

// Message is one turn of a chat conversation, in the wire format the chat
// endpoint expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Config struct {
	BaseURL    string
	EmbedModel string
	ChatModel  string
}

// Client talks to a local Ollama server. Both calls are single-shot JSON
// POSTs; retries are left to the caller.
type Client struct {
	baseURL    string
	embedModel string
	chatModel  string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		httpClient: http.DefaultClient,
	}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.embedModel, Prompt: text})
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, "/api/embeddings", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrEmbeddingUnavailable, resp.StatusCode)
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmbedding, err)
	}
	if len(decoded.Embedding) == 0 {
		return nil, ErrInvalidEmbedding
	}
	return decoded.Embedding, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends the message list and returns the model's reply text. The
// request is always non-streaming.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.chatModel, Messages: messages, Stream: false})
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrChatUnavailable, resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidChatResponse, err)
	}
	if decoded.Message.Content == "" {
		return "", ErrInvalidChatResponse
	}
	return decoded.Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
