package knowledge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sentrasec/sentra/params"
)

var (
	ErrNoChunksProcessed = errors.New("no document chunks could be processed")
)

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Inserter is the slice of Store the ingestor needs.
type Inserter interface {
	Insert(ctx context.Context, entries []Entry) error
}

type DocumentInput struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type IngestResult struct {
	DocumentsProcessed int `json:"documentsProcessed"`
	ChunksProcessed    int `json:"chunksProcessed"`
}

// Ingestor chunks documents, embeds each chunk and stores the results.
// Embedding failures are per-chunk skippable: the batch succeeds as long as
// at least one chunk makes it into the store.
type Ingestor struct {
	store    Inserter
	embedder Embedder
	dim      int
}

// NewIngestor creates an Ingestor. dim is the deployment's fixed embedding
// dimensionality; vectors of any other length are treated as failed chunks.
func NewIngestor(store Inserter, embedder Embedder, dim int) *Ingestor {
	return &Ingestor{
		store:    store,
		embedder: embedder,
		dim:      dim,
	}
}

func (ing *Ingestor) IngestDocuments(ctx context.Context, docs []DocumentInput, clientID *uint) (IngestResult, error) {
	var result IngestResult
	var entries []Entry

	for docIdx, doc := range docs {
		chunks := Chunk(doc.Content, params.DefaultChunkSize, params.DefaultChunkOverlap)
		stored := 0
		for chunkIdx, chunk := range chunks {
			embedding, err := ing.embedder.Embed(ctx, chunk)
			if err != nil {
				slog.Warn("Skipping chunk, embedding failed", "document", docIdx, "chunk", chunkIdx, "error", err)
				continue
			}
			if ing.dim > 0 && len(embedding) != ing.dim {
				slog.Warn("Skipping chunk, unexpected embedding dimensionality",
					"document", docIdx, "chunk", chunkIdx, "got", len(embedding), "want", ing.dim)
				continue
			}

			metadata := map[string]any{
				"chunk_index":  chunkIdx,
				"chunk_count":  len(chunks),
				"document_idx": docIdx,
			}
			for k, v := range doc.Metadata {
				metadata[k] = v
			}

			entries = append(entries, Entry{
				Content:   chunk,
				Metadata:  metadata,
				Embedding: embedding,
				ClientID:  clientID,
			})
			stored++
		}
		if stored > 0 {
			result.DocumentsProcessed++
			result.ChunksProcessed += stored
		}
	}

	if len(entries) == 0 {
		if len(docs) == 0 {
			return result, nil
		}
		return result, ErrNoChunksProcessed
	}

	if err := ing.store.Insert(ctx, entries); err != nil {
		return IngestResult{}, err
	}
	return result, nil
}
