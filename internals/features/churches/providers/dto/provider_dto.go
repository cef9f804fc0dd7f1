package dto

import (
	"time"

	"gerejaku_backend/internals/features/churches/providers/model"
	"gerejaku_backend/internals/features/churches/providers/service"
)

// UpsertProviderRequest: empty credentials keep the stored ones.
type UpsertProviderRequest struct {
	Name        string         `json:"name"        validate:"required,max=30"`
	Sender      *string        `json:"sender"      validate:"omitempty,max=190"`
	Credentials map[string]any `json:"credentials"`
	IsActive    *bool          `json:"is_active"`
}

type TestProviderRequest struct {
	Recipient string `json:"recipient" validate:"required,max=190"`
	Message   string `json:"message"   validate:"omitempty,max=1000"`
}

type ProviderResponse struct {
	ProviderChannel        string    `json:"provider_channel"`
	ProviderName           string    `json:"provider_name"`
	ProviderSender         *string   `json:"provider_sender,omitempty"`
	ProviderIsActive       bool      `json:"provider_is_active"`
	ProviderCredentialKeys []string  `json:"provider_credential_keys"`
	ProviderUpdatedAt      time.Time `json:"provider_updated_at"`
}

func ToProviderResponse(p *model.ProviderModel) ProviderResponse {
	return ProviderResponse{
		ProviderChannel:        p.ProviderChannel,
		ProviderName:           p.ProviderName,
		ProviderSender:         p.ProviderSender,
		ProviderIsActive:       p.ProviderIsActive,
		ProviderCredentialKeys: service.CredentialKeys(p.ProviderCredentials),
		ProviderUpdatedAt:      p.ProviderUpdatedAt,
	}
}
