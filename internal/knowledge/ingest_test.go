package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeEmbedder struct {
	dim      int
	failOn   map[string]bool
	requests int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.requests++
	if f.failOn[text] {
		return nil, errors.New("embedding backend down")
	}
	return make([]float32, f.dim), nil
}

type captureInserter struct {
	entries []Entry
	err     error
}

func (c *captureInserter) Insert(ctx context.Context, entries []Entry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entries...)
	return nil
}

func TestIngestDocuments(t *testing.T) {
	embedder := &fakeEmbedder{dim: 8}
	inserter := &captureInserter{}
	ing := NewIngestor(inserter, embedder, 8)

	clientID := uint(42)
	docs := []DocumentInput{
		{Content: strings.Repeat("A", 2500), Metadata: map[string]any{"source": "upload"}},
		{Content: "short doc"},
	}

	result, err := ing.IngestDocuments(context.Background(), docs, &clientID)
	if err != nil {
		t.Fatalf("IngestDocuments failed: %v", err)
	}
	if result.DocumentsProcessed != 2 {
		t.Errorf("documentsProcessed = %d, want 2", result.DocumentsProcessed)
	}
	if result.ChunksProcessed != 4 {
		t.Errorf("chunksProcessed = %d, want 4 (3 + 1)", result.ChunksProcessed)
	}
	if len(inserter.entries) != 4 {
		t.Fatalf("stored %d entries, want 4", len(inserter.entries))
	}
	for _, entry := range inserter.entries {
		if entry.ClientID == nil || *entry.ClientID != clientID {
			t.Error("entry not scoped to the requesting tenant")
		}
	}
	if inserter.entries[0].Metadata["source"] != "upload" {
		t.Error("document metadata not propagated to chunks")
	}
}

func TestIngestSkipsFailedChunks(t *testing.T) {
	embedder := &fakeEmbedder{dim: 8, failOn: map[string]bool{"bad": true}}
	inserter := &captureInserter{}
	ing := NewIngestor(inserter, embedder, 8)

	result, err := ing.IngestDocuments(context.Background(), []DocumentInput{
		{Content: "bad"},
		{Content: "good"},
	}, nil)
	if err != nil {
		t.Fatalf("batch with one surviving chunk must succeed: %v", err)
	}
	if result.DocumentsProcessed != 1 || result.ChunksProcessed != 1 {
		t.Errorf("got %+v, want 1 document / 1 chunk", result)
	}
}

func TestIngestAllChunksFail(t *testing.T) {
	embedder := &fakeEmbedder{dim: 8, failOn: map[string]bool{"bad": true}}
	ing := NewIngestor(&captureInserter{}, embedder, 8)

	_, err := ing.IngestDocuments(context.Background(), []DocumentInput{{Content: "bad"}}, nil)
	if !errors.Is(err, ErrNoChunksProcessed) {
		t.Errorf("got %v, want ErrNoChunksProcessed", err)
	}
}

func TestIngestRejectsWrongDimensionality(t *testing.T) {
	// Embedder returns 8-dim vectors but the deployment is fixed at 768.
	embedder := &fakeEmbedder{dim: 8}
	ing := NewIngestor(&captureInserter{}, embedder, 768)

	_, err := ing.IngestDocuments(context.Background(), []DocumentInput{{Content: "doc"}}, nil)
	if !errors.Is(err, ErrNoChunksProcessed) {
		t.Errorf("got %v, want ErrNoChunksProcessed", err)
	}
}

func TestIngestEmptyBatch(t *testing.T) {
	ing := NewIngestor(&captureInserter{}, &fakeEmbedder{dim: 8}, 8)
	result, err := ing.IngestDocuments(context.Background(), nil, nil)
	if err != nil || result.ChunksProcessed != 0 {
		t.Errorf("empty batch: got %+v, %v", result, err)
	}
}
