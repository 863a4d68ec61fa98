package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is the top-level billing/ownership entity. Every profile belongs
// to at most one company; every client (tenant) belongs to exactly one.
type Company struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Name      string            `gorm:"size:128;not null" json:"name"`
	Email     string            `gorm:"size:256;not null" json:"email"`
	Settings  datatypes.JSONMap `gorm:"type:jsonb" json:"settings"`
	Clients   []Client          `gorm:"foreignKey:CompanyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"clients,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}
