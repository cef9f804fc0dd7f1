package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventModel struct {
	EventID          uuid.UUID `gorm:"column:event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"event_id"`
	EventChurchID    uuid.UUID `gorm:"column:event_church_id;type:uuid;not null;index"                json:"event_church_id"`
	EventName        string    `gorm:"column:event_name;type:varchar(150);not null"                   json:"event_name"`
	EventType        string    `gorm:"column:event_type;type:varchar(50);not null;default:'service'"  json:"event_type"`
	EventLocation    *string   `gorm:"column:event_location;type:varchar(255)"                        json:"event_location,omitempty"`
	EventDescription *string   `gorm:"column:event_description;type:text"                             json:"event_description,omitempty"`
	EventIsActive    bool      `gorm:"column:event_is_active;not null"                                json:"event_is_active"`

	// External check-in tuple. enabled <=> (url, pin) both set; enforced by a CHECK in the migration.
	EventExternalCheckinEnabled bool    `gorm:"column:event_external_checkin_enabled;not null;default:false" json:"event_external_checkin_enabled"`
	EventExternalCheckinURL     *string `gorm:"column:event_external_checkin_url;type:varchar(64)"          json:"-"`
	EventExternalCheckinPIN     *string `gorm:"column:event_external_checkin_pin;type:char(6)"              json:"-"`

	EventCreatedAt time.Time      `gorm:"column:event_created_at;type:timestamptz;autoCreateTime" json:"event_created_at"`
	EventUpdatedAt time.Time      `gorm:"column:event_updated_at;type:timestamptz;autoUpdateTime" json:"event_updated_at"`
	EventDeletedAt gorm.DeletedAt `gorm:"column:event_deleted_at;type:timestamptz;index"          json:"-"`
}

func (EventModel) TableName() string {
	return "events"
}
