package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role grants a named set of permissions. Permissions is a jsonb array of
// permission tags; unknown tags are discarded when the array is decoded at
// the rbac boundary. System marks the built-in roles that must never be
// deleted.
type Role struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string         `gorm:"size:512" json:"description"`
	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"permissions"`
	System      bool           `gorm:"default:false;not null" json:"system"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == 0 {
		r.ID = GenerateID()
	}
	return nil
}

// UserRole assigns a role to an identity. UserID references Profile.UserID,
// the external identity subject.
type UserRole struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"size:64;not null;index:idx_user_role,unique" json:"userId"`
	RoleID    uint      `gorm:"not null;index:idx_user_role,unique" json:"roleId"`
	Role      Role      `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == 0 {
		ur.ID = GenerateID()
	}
	return nil
}
