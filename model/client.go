package model

import (
	"time"

	"github.com/spf13/cast"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client settings keys. Settings is an opaque map; these are the keys the
// console itself reads and writes.
const (
	ClientSettingStatus      = "status"
	ClientSettingAPIKeyHash  = "api_key_hash"
	ClientSettingEDREndpoint = "edr_endpoint"
)

const (
	ClientStatusActive    = "active"
	ClientStatusSuspended = "suspended"
)

// Client is an isolated tenant account. Assets, security events and
// knowledge entries are scoped to a client.
type Client struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Name      string            `gorm:"size:128;not null" json:"name"`
	Email     string            `gorm:"size:256;not null" json:"email"`
	CompanyID uint              `gorm:"not null;index" json:"companyId"`
	Settings  datatypes.JSONMap `gorm:"type:jsonb" json:"settings"`
	CreatedAt time.Time         `json:"createdAt"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = GenerateID()
	}
	return nil
}

func (c *Client) Status() string {
	return cast.ToString(c.Settings[ClientSettingStatus])
}

func (c *Client) APIKeyHash() string {
	return cast.ToString(c.Settings[ClientSettingAPIKeyHash])
}

func (c *Client) EDREndpoint() string {
	return cast.ToString(c.Settings[ClientSettingEDREndpoint])
}

func (c *Client) SetSetting(key string, val any) {
	if c.Settings == nil {
		c.Settings = datatypes.JSONMap{}
	}
	c.Settings[key] = val
}
