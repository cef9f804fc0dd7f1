package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/events/events/model"

	"github.com/google/uuid"
)

type EventRequest struct {
	EventName        string  `json:"event_name"        validate:"required,min=2,max=150"`
	EventType        string  `json:"event_type"        validate:"omitempty,max=50"`
	EventLocation    *string `json:"event_location"    validate:"omitempty,max=255"`
	EventDescription *string `json:"event_description"`
	EventIsActive    *bool   `json:"event_is_active"`
}

type EventUpdateRequest struct {
	EventName        *string `json:"event_name"        validate:"omitempty,min=2,max=150"`
	EventType        *string `json:"event_type"        validate:"omitempty,max=50"`
	EventLocation    *string `json:"event_location"    validate:"omitempty,max=255"`
	EventDescription *string `json:"event_description"`
	EventIsActive    *bool   `json:"event_is_active"`
}

type EventResponse struct {
	EventID                     uuid.UUID `json:"event_id"`
	EventName                   string    `json:"event_name"`
	EventType                   string    `json:"event_type"`
	EventLocation               *string   `json:"event_location,omitempty"`
	EventDescription            *string   `json:"event_description,omitempty"`
	EventIsActive               bool      `json:"event_is_active"`
	EventExternalCheckinEnabled bool      `json:"event_external_checkin_enabled"`
	EventCreatedAt              time.Time `json:"event_created_at"`
	EventUpdatedAt              time.Time `json:"event_updated_at"`
}

func (r *EventRequest) ToModel(churchID uuid.UUID) *model.EventModel {
	typ := strings.TrimSpace(r.EventType)
	if typ == "" {
		typ = "service"
	}
	active := true
	if r.EventIsActive != nil {
		active = *r.EventIsActive
	}
	return &model.EventModel{
		EventChurchID:    churchID,
		EventName:        strings.TrimSpace(r.EventName),
		EventType:        typ,
		EventLocation:    r.EventLocation,
		EventDescription: r.EventDescription,
		EventIsActive:    active,
	}
}

// ToUpdates builds a column map; only provided fields are touched.
func (r *EventUpdateRequest) ToUpdates() map[string]any {
	u := map[string]any{}
	if r.EventName != nil {
		u["event_name"] = strings.TrimSpace(*r.EventName)
	}
	if r.EventType != nil {
		u["event_type"] = strings.TrimSpace(*r.EventType)
	}
	if r.EventLocation != nil {
		u["event_location"] = *r.EventLocation
	}
	if r.EventDescription != nil {
		u["event_description"] = *r.EventDescription
	}
	if r.EventIsActive != nil {
		u["event_is_active"] = *r.EventIsActive
	}
	return u
}

func ToEventResponse(m *model.EventModel) EventResponse {
	return EventResponse{
		EventID:                     m.EventID,
		EventName:                   m.EventName,
		EventType:                   m.EventType,
		EventLocation:               m.EventLocation,
		EventDescription:            m.EventDescription,
		EventIsActive:               m.EventIsActive,
		EventExternalCheckinEnabled: m.EventExternalCheckinEnabled,
		EventCreatedAt:              m.EventCreatedAt,
		EventUpdatedAt:              m.EventUpdatedAt,
	}
}

func ToEventResponses(rows []model.EventModel) []EventResponse {
	out := make([]EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToEventResponse(&rows[i]))
	}
	return out
}
