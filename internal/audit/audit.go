package audit

import (
	"context"
	"sync"

	"github.com/sentrasec/sentra/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeCompanyCreated   = "company_created"
	EventTypeCompanyUpdated   = "company_updated"
	EventTypeCompanyDeleted   = "company_deleted"
	EventTypeClientCreated    = "client_created"
	EventTypeClientUpdated    = "client_updated"
	EventTypeClientDeleted    = "client_deleted"
	EventTypeClientKeyRotated = "client_key_rotated"
	EventTypeRoleCreated      = "role_created"
	EventTypeRoleUpdated      = "role_updated"
	EventTypeRoleDeleted      = "role_deleted"
	EventTypeRoleAssigned     = "role_assigned"
	EventTypeRoleRevoked      = "role_revoked"
	EventTypeProfileUpdated   = "profile_updated"
	EventTypeProfileDeleted   = "profile_deleted"
	EventTypeKnowledgeIngest  = "knowledge_ingested"
	EventTypeKnowledgeCleared = "knowledge_cleared"
	EventTypeVulnSynced       = "vulnerabilities_synced"
)

type ActionRecord struct {
	UserID     string // acting identity
	EventType  string
	TargetType string
	TargetID   string
	ClientID   *uint
	Detail     string
	IP         string
	UserAgent  string
}

// RecordAction persists one admin action. Callers treat failures as
// non-fatal; the mutation itself has already happened. Without Initialize
// the trail is disabled and records are dropped.
func RecordAction(ctx context.Context, record ActionRecord) error {
	if auditRepo == nil {
		return nil
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:     record.UserID,
		EventType:  record.EventType,
		TargetType: record.TargetType,
		TargetID:   record.TargetID,
		ClientID:   record.ClientID,
		Detail:     record.Detail,
		IP:         record.IP,
		UserAgent:  record.UserAgent,
	})
}
