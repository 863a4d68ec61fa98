package model

import "time"

type AuditEvent struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     string    `gorm:"size:64;index;not null"` // identity subject of the acting user
	EventType  string    `gorm:"size:64;not null;index"` // role_assigned, client_created...
	TargetType string    `gorm:"size:32;index"`          // company, client, role, user, knowledge
	TargetID   string    `gorm:"size:64"`
	ClientID   *uint     `gorm:"index"`            // tenant the action applied to (optional)
	Detail     string    `gorm:"size:512"`         // failure reason or context
	IP         string    `gorm:"size:45;not null"` // IPv4/IPv6
	UserAgent  string    `gorm:"size:512"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
