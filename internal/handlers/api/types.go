package api

import (
	"context"
	"time"

	"github.com/sentrasec/sentra/internal/assets"
	"github.com/sentrasec/sentra/internal/events"
	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/internal/rag"
	"github.com/sentrasec/sentra/internal/rbac"
	"github.com/sentrasec/sentra/internal/tenants"
	"github.com/sentrasec/sentra/internal/users"
	"github.com/sentrasec/sentra/model"
)

type CompanyService interface {
	List(ctx context.Context) ([]*model.Company, error)
	Get(ctx context.Context, id uint) (*model.Company, error)
	Create(ctx context.Context, opts tenants.CreateCompanyOptions) (*model.Company, error)
	Update(ctx context.Context, id uint, opts tenants.UpdateCompanyOptions) (*model.Company, error)
	Delete(ctx context.Context, id uint) error
}

type ClientService interface {
	List(ctx context.Context, filter tenants.ClientFilter) ([]*model.Client, error)
	Get(ctx context.Context, id uint) (*model.Client, error)
	Create(ctx context.Context, opts tenants.CreateClientOptions) (*model.Client, string, error)
	Update(ctx context.Context, id uint, opts tenants.UpdateClientOptions) (*model.Client, error)
	RotateAPIKey(ctx context.Context, id uint) (string, error)
	Delete(ctx context.Context, id uint) error
}

type ProfileService interface {
	List(ctx context.Context, filter users.ProfileFilter) ([]*model.Profile, error)
	GetByID(ctx context.Context, id uint) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Register(ctx context.Context, opts users.RegisterProfileOptions) (*model.Profile, error)
	Update(ctx context.Context, id uint, opts users.UpdateProfileOptions) (*model.Profile, error)
	Delete(ctx context.Context, id uint) error
}

type RoleService interface {
	GetPermissions(ctx context.Context, userID string) (rbac.PermissionSet, error)
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	CreateRole(ctx context.Context, opts rbac.CreateRoleOptions) (*model.Role, error)
	UpdateRole(ctx context.Context, id uint, opts rbac.UpdateRoleOptions) (*model.Role, error)
	DeleteRole(ctx context.Context, id uint) error
	GetUserRoles(ctx context.Context, userID string) ([]*model.UserRole, error)
	AssignRole(ctx context.Context, userID string, roleID uint) error
	RevokeRole(ctx context.Context, userID string, roleID uint) error
}

type AssetService interface {
	List(ctx context.Context, filter assets.AssetFilter) ([]*model.Asset, error)
	Get(ctx context.Context, id uint) (*model.Asset, error)
	Create(ctx context.Context, opts assets.CreateAssetOptions) (*model.Asset, error)
	Update(ctx context.Context, id uint, opts assets.UpdateAssetOptions) (*model.Asset, error)
	Delete(ctx context.Context, id uint) error
}

type VulnSyncService interface {
	SyncClient(ctx context.Context, clientID uint) (knowledge.IngestResult, error)
}

type EventService interface {
	List(ctx context.Context, filter events.EventFilter) ([]*model.SecurityEvent, error)
	Get(ctx context.Context, eventID string) (*model.SecurityEvent, error)
	Ingest(ctx context.Context, opts events.IngestEventOptions) (*model.SecurityEvent, error)
	IngestBatch(ctx context.Context, batch []events.IngestEventOptions) (events.BatchResult, error)
	UpdateStatus(ctx context.Context, eventID string, status string, classification string) (*model.SecurityEvent, error)
	SeverityReport(ctx context.Context, clientID *uint, since time.Time) ([]events.SeverityCount, error)
}

type KnowledgeIngestor interface {
	IngestDocuments(ctx context.Context, docs []knowledge.DocumentInput, clientID *uint) (knowledge.IngestResult, error)
}

type KnowledgeStore interface {
	Clear(ctx context.Context, clientID uint) (int64, error)
	Count(ctx context.Context, clientID *uint) (int64, error)
}

type ChatService interface {
	Chat(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error)
}
