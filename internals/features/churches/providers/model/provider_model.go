package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

const (
	ProviderResend      = "resend"
	ProviderHTTPGateway = "http_gateway"
)

func IsValidChannel(ch string) bool {
	return ch == ChannelSMS || ch == ChannelEmail
}

// ProviderModel is one outbound messaging provider per church and channel.
// Credentials are write-only from the API's point of view.
type ProviderModel struct {
	ProviderID          uuid.UUID         `gorm:"column:provider_id;type:uuid;default:gen_random_uuid();primaryKey" json:"provider_id"`
	ProviderChurchID    uuid.UUID         `gorm:"column:provider_church_id;type:uuid;not null"    json:"provider_church_id"`
	ProviderChannel     string            `gorm:"column:provider_channel;type:varchar(10);not null" json:"provider_channel"`
	ProviderName        string            `gorm:"column:provider_name;type:varchar(30);not null"  json:"provider_name"`
	ProviderSender      *string           `gorm:"column:provider_sender;type:varchar(190)"        json:"provider_sender,omitempty"`
	ProviderCredentials datatypes.JSONMap `gorm:"column:provider_credentials;type:jsonb;not null" json:"-"`
	ProviderIsActive    bool              `gorm:"column:provider_is_active;not null;default:true" json:"provider_is_active"`
	ProviderCreatedAt   time.Time         `gorm:"column:provider_created_at;type:timestamptz;autoCreateTime" json:"provider_created_at"`
	ProviderUpdatedAt   time.Time         `gorm:"column:provider_updated_at;type:timestamptz;autoUpdateTime" json:"provider_updated_at"`
}

func (ProviderModel) TableName() string {
	return "communication_providers"
}

// Credential returns a string credential or "".
func (p *ProviderModel) Credential(key string) string {
	if p.ProviderCredentials == nil {
		return ""
	}
	s, _ := p.ProviderCredentials[key].(string)
	return s
}
