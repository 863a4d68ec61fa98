package knowledge

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/sentrasec/sentra/model"
	"github.com/sentrasec/sentra/params"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one chunk to persist in the knowledge base. A nil ClientID marks
// a global entry visible to every tenant.
type Entry struct {
	Content   string
	Metadata  map[string]any
	Embedding []float32
	ClientID  *uint
}

// SearchResult mirrors the rows of the match_documents similarity query.
type SearchResult struct {
	ID         uint              `json:"id"`
	Content    string            `json:"content"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	ClientID   *uint             `json:"clientId,omitempty"`
	Similarity float64           `json:"similarity"`
}

type SearchOptions struct {
	// Threshold is the minimum similarity (exclusive). Zero means the
	// default from params.
	Threshold float64
	// TopK caps the result count. Zero means the default from params.
	TopK int
	// ClientID scopes results to one tenant plus global entries. Nil
	// restricts the search to global entries only.
	ClientID *uint
}

// Store persists embedded chunks and runs cosine-similarity search through
// the pgvector extension.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*model.KnowledgeEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, &model.KnowledgeEntry{
			Content:   entry.Content,
			Metadata:  datatypes.JSONMap(entry.Metadata),
			Embedding: pgvector.NewVector(entry.Embedding),
			ClientID:  entry.ClientID,
		})
	}
	return s.db.WithContext(ctx).Create(rows).Error
}

// buildSearchQuery assembles the similarity query and its bound arguments.
// Similarity is 1 - cosine distance; the threshold comparison is strict and
// the tenant filter admits the tenant's own rows plus global rows only.
func buildSearchQuery(vec pgvector.Vector, opts SearchOptions) (string, []interface{}) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = params.MatchThreshold
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = params.MatchCount
	}

	query := `
		SELECT id, content, metadata, client_id, 1 - (embedding <=> ?) AS similarity
		FROM knowledge_entry
		WHERE 1 - (embedding <=> ?) > ?`
	args := []interface{}{vec, vec, threshold}

	if opts.ClientID != nil {
		query += ` AND (client_id = ? OR client_id IS NULL)`
		args = append(args, *opts.ClientID)
	} else {
		query += ` AND client_id IS NULL`
	}

	query += ` ORDER BY embedding <=> ? LIMIT ?`
	args = append(args, vec, topK)
	return query, args
}

// Search returns entries whose cosine similarity to queryEmbedding exceeds
// the threshold, ordered by ascending distance and truncated to topK.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]SearchResult, error) {
	query, args := buildSearchQuery(pgvector.NewVector(queryEmbedding), opts)

	var results []SearchResult
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Clear deletes every knowledge entry belonging to a tenant and returns the
// number of rows removed.
func (s *Store) Clear(ctx context.Context, clientID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&model.KnowledgeEntry{})
	return result.RowsAffected, result.Error
}

// Count reports the number of entries for a tenant, or of global entries
// when clientID is nil.
func (s *Store) Count(ctx context.Context, clientID *uint) (int64, error) {
	query := s.db.WithContext(ctx).Model(&model.KnowledgeEntry{})
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	} else {
		query = query.Where("client_id IS NULL")
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
