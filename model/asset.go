package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vulnerability is one finding attached to an asset. The list is persisted
// as a jsonb array on the asset row.
type Vulnerability struct {
	CVE         string  `json:"cve"`
	Title       string  `json:"title"`
	Severity    string  `json:"severity"`
	CVSS        float64 `json:"cvss,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Asset is a monitored host or device belonging to a client.
type Asset struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ClientID        uint           `gorm:"not null;index" json:"clientId"`
	Name            string         `gorm:"size:128;not null" json:"name"`
	IPAddress       string         `gorm:"size:45" json:"ipAddress"`
	Status          string         `gorm:"size:32;index" json:"status"`
	Vulnerabilities datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"vulnerabilities"`
	CreatedAt       time.Time      `json:"createdAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == 0 {
		a.ID = GenerateID()
	}
	return nil
}
