package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the persisted record for an authenticated identity. UserID is
// the subject issued by the external auth service; profiles are created by
// the identity registration hook, not by admin forms.
type Profile struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      string         `gorm:"uniqueIndex;size:64;not null" json:"userId"`
	DisplayName string         `gorm:"size:128;not null" json:"displayName"`
	Email       string         `gorm:"size:256;not null" json:"email"`
	ClientID    *uint          `gorm:"index" json:"clientId,omitempty"`
	CompanyID   *uint          `gorm:"index" json:"companyId,omitempty"`
	Role        string         `gorm:"size:64" json:"role"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = GenerateID()
	}
	return nil
}
