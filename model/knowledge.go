package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeEntry is one embedded chunk in the RAG knowledge base. ClientID
// is nil for global entries visible to every tenant. The embedding
// dimensionality is fixed per deployment by the configured embedding model.
type KnowledgeEntry struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Content   string            `gorm:"type:text;not null" json:"content"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	Embedding pgvector.Vector   `gorm:"type:vector" json:"-"`
	ClientID  *uint             `gorm:"index" json:"clientId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (k *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if k.ID == 0 {
		k.ID = GenerateID()
	}
	return nil
}
