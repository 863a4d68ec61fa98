package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEvent is an ingested security log entry. EventID is the unique
// external identifier; ClientID is nil for events that could not be
// attributed to a tenant. The forensic fields are all optional.
type SecurityEvent struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	EventID        string            `gorm:"uniqueIndex;size:64;not null" json:"eventId"`
	ClientID       *uint             `gorm:"index" json:"clientId,omitempty"`
	Timestamp      time.Time         `gorm:"index;not null" json:"timestamp"`
	Severity       string            `gorm:"size:32;index" json:"severity"`
	Status         string            `gorm:"size:32;index" json:"status"`
	Host           string            `gorm:"size:256" json:"host,omitempty"`
	ProcessName    string            `gorm:"size:256" json:"processName,omitempty"`
	ProcessPath    string            `gorm:"size:512" json:"processPath,omitempty"`
	SourceIP       string            `gorm:"size:45" json:"sourceIp,omitempty"`
	DestinationIP  string            `gorm:"size:45" json:"destinationIp,omitempty"`
	MitreTactic    string            `gorm:"size:128" json:"mitreTactic,omitempty"`
	MitreTechnique string            `gorm:"size:128" json:"mitreTechnique,omitempty"`
	Classification string            `gorm:"size:64;index" json:"classification,omitempty"`
	Details        datatypes.JSONMap `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == 0 {
		e.ID = GenerateID()
	}
	return nil
}
