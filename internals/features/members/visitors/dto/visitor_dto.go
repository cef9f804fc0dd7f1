package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/members/visitors/model"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
)

type VisitorRequest struct {
	VisitorFirstName      string  `json:"visitor_first_name"       validate:"required,max=80"`
	VisitorSurname        string  `json:"visitor_surname"          validate:"omitempty,max=80"`
	VisitorPhone          *string `json:"visitor_phone"            validate:"omitempty,max=32"`
	VisitorEmail          *string `json:"visitor_email"            validate:"omitempty,email,max=190"`
	VisitorFirstVisitDate *string `json:"visitor_first_visit_date" validate:"omitempty,datetime=2006-01-02"`
	VisitorNotes          *string `json:"visitor_notes"`
}

// VisitorUpdateRequest never touches the follow-up status; that has its own endpoint.
type VisitorUpdateRequest struct {
	VisitorFirstName *string `json:"visitor_first_name" validate:"omitempty,min=1,max=80"`
	VisitorSurname   *string `json:"visitor_surname"    validate:"omitempty,max=80"`
	VisitorPhone     *string `json:"visitor_phone"      validate:"omitempty,max=32"`
	VisitorEmail     *string `json:"visitor_email"      validate:"omitempty,email,max=190"`
	VisitorNotes     *string `json:"visitor_notes"`
}

type FollowUpStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending contacted member"`
}

type SendFollowUpRequest struct {
	Channel string `json:"channel" validate:"required,oneof=sms email"`
	Message string `json:"message" validate:"required,max=1000"`
}

type VisitorResponse struct {
	VisitorID                uuid.UUID  `json:"visitor_id"`
	VisitorFirstName         string     `json:"visitor_first_name"`
	VisitorSurname           string     `json:"visitor_surname"`
	VisitorFullName          string     `json:"visitor_full_name"`
	VisitorPhone             *string    `json:"visitor_phone,omitempty"`
	VisitorEmail             *string    `json:"visitor_email,omitempty"`
	VisitorFirstVisitDate    string     `json:"visitor_first_visit_date"`
	VisitorFollowUpStatus    string     `json:"visitor_follow_up_status"`
	VisitorNotes             *string    `json:"visitor_notes,omitempty"`
	VisitorConvertedMemberID *uuid.UUID `json:"visitor_converted_member_id,omitempty"`
	VisitorCreatedAt         time.Time  `json:"visitor_created_at"`
	VisitorUpdatedAt         time.Time  `json:"visitor_updated_at"`
}

func (r *VisitorRequest) ToModel(churchID uuid.UUID, today time.Time) (*model.VisitorModel, error) {
	first := today
	if r.VisitorFirstVisitDate != nil && strings.TrimSpace(*r.VisitorFirstVisitDate) != "" {
		d, err := dbtime.ParseDate(*r.VisitorFirstVisitDate)
		if err != nil {
			return nil, err
		}
		first = d
	}
	return &model.VisitorModel{
		VisitorChurchID:       churchID,
		VisitorFirstName:      strings.TrimSpace(r.VisitorFirstName),
		VisitorSurname:        strings.TrimSpace(r.VisitorSurname),
		VisitorPhone:          trimPtr(r.VisitorPhone),
		VisitorEmail:          lowerPtr(r.VisitorEmail),
		VisitorFirstVisitDate: first,
		VisitorFollowUpStatus: model.FollowUpPending,
		VisitorNotes:          r.VisitorNotes,
	}, nil
}

func (r *VisitorUpdateRequest) ToUpdates() map[string]any {
	u := map[string]any{}
	if r.VisitorFirstName != nil {
		u["visitor_first_name"] = strings.TrimSpace(*r.VisitorFirstName)
	}
	if r.VisitorSurname != nil {
		u["visitor_surname"] = strings.TrimSpace(*r.VisitorSurname)
	}
	if r.VisitorPhone != nil {
		u["visitor_phone"] = trimPtr(r.VisitorPhone)
	}
	if r.VisitorEmail != nil {
		u["visitor_email"] = lowerPtr(r.VisitorEmail)
	}
	if r.VisitorNotes != nil {
		u["visitor_notes"] = *r.VisitorNotes
	}
	return u
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func lowerPtr(s *string) *string {
	v := trimPtr(s)
	if v == nil {
		return nil
	}
	l := strings.ToLower(*v)
	return &l
}

func ToVisitorResponse(v *model.VisitorModel) VisitorResponse {
	return VisitorResponse{
		VisitorID:                v.VisitorID,
		VisitorFirstName:         v.VisitorFirstName,
		VisitorSurname:           v.VisitorSurname,
		VisitorFullName:          v.FullName(),
		VisitorPhone:             v.VisitorPhone,
		VisitorEmail:             v.VisitorEmail,
		VisitorFirstVisitDate:    dbtime.FormatDate(v.VisitorFirstVisitDate),
		VisitorFollowUpStatus:    v.VisitorFollowUpStatus,
		VisitorNotes:             v.VisitorNotes,
		VisitorConvertedMemberID: v.VisitorConvertedMemberID,
		VisitorCreatedAt:         v.VisitorCreatedAt,
		VisitorUpdatedAt:         v.VisitorUpdatedAt,
	}
}

func ToVisitorResponses(rows []model.VisitorModel) []VisitorResponse {
	out := make([]VisitorResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToVisitorResponse(&rows[i]))
	}
	return out
}
