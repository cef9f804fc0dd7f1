package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/members/members/model"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
)

type MemberRequest struct {
	MemberFirstName   string  `json:"member_first_name"    validate:"required,max=80"`
	MemberSurname     string  `json:"member_surname"       validate:"omitempty,max=80"`
	MemberPhone       *string `json:"member_phone"         validate:"omitempty,max=32"`
	MemberEmail       *string `json:"member_email"         validate:"omitempty,email,max=190"`
	MemberGender      *string `json:"member_gender"        validate:"omitempty,oneof=male female"`
	MemberDateOfBirth *string `json:"member_date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	MemberAddress     *string `json:"member_address"`
	MemberStatus      string  `json:"member_status"        validate:"omitempty,oneof=active inactive"`
	MemberJoinedAt    *string `json:"member_joined_at"     validate:"omitempty,datetime=2006-01-02"`
}

type MemberUpdateRequest struct {
	MemberFirstName   *string `json:"member_first_name"    validate:"omitempty,min=1,max=80"`
	MemberSurname     *string `json:"member_surname"       validate:"omitempty,max=80"`
	MemberPhone       *string `json:"member_phone"         validate:"omitempty,max=32"`
	MemberEmail       *string `json:"member_email"         validate:"omitempty,email,max=190"`
	MemberGender      *string `json:"member_gender"        validate:"omitempty,oneof=male female"`
	MemberDateOfBirth *string `json:"member_date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	MemberAddress     *string `json:"member_address"`
	MemberStatus      *string `json:"member_status"        validate:"omitempty,oneof=active inactive"`
	MemberJoinedAt    *string `json:"member_joined_at"     validate:"omitempty,datetime=2006-01-02"`
}

// SetParentRequest: null parent_id clears the link.
type SetParentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// SetBiometricRequest: null biometric_id removes the enrolment.
type SetBiometricRequest struct {
	BiometricID *string `json:"biometric_id" validate:"omitempty,min=1,max=64"`
}

type MemberResponse struct {
	MemberID           uuid.UUID  `json:"member_id"`
	MemberFirstName    string     `json:"member_first_name"`
	MemberSurname      string     `json:"member_surname"`
	MemberFullName     string     `json:"member_full_name"`
	MemberPhone        *string    `json:"member_phone,omitempty"`
	MemberEmail        *string    `json:"member_email,omitempty"`
	MemberGender       *string    `json:"member_gender,omitempty"`
	MemberDateOfBirth  *string    `json:"member_date_of_birth,omitempty"`
	MemberAddress      *string    `json:"member_address,omitempty"`
	MemberStatus       string     `json:"member_status"`
	MemberJoinedAt     string     `json:"member_joined_at"`
	MemberParentID     *uuid.UUID `json:"member_parent_id,omitempty"`
	MemberHasBiometric bool       `json:"member_has_biometric"`
	MemberCreatedAt    time.Time  `json:"member_created_at"`
	MemberUpdatedAt    time.Time  `json:"member_updated_at"`
}

type FamilyResponse struct {
	Parent   MemberResponse   `json:"parent"`
	Children []MemberResponse `json:"children"`
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ToModel converts a create request; joinedDefault is the church-local today.
func (r *MemberRequest) ToModel(churchID uuid.UUID, joinedDefault time.Time) (*model.MemberModel, error) {
	dob, err := parseDate(r.MemberDateOfBirth)
	if err != nil {
		return nil, err
	}
	joined, err := parseDate(r.MemberJoinedAt)
	if err != nil {
		return nil, err
	}
	if joined == nil {
		joined = &joinedDefault
	}
	status := r.MemberStatus
	if status == "" {
		status = model.MemberStatusActive
	}
	return &model.MemberModel{
		MemberChurchID:    churchID,
		MemberFirstName:   strings.TrimSpace(r.MemberFirstName),
		MemberSurname:     strings.TrimSpace(r.MemberSurname),
		MemberPhone:       trimPtr(r.MemberPhone),
		MemberEmail:       lowerPtr(r.MemberEmail),
		MemberGender:      r.MemberGender,
		MemberDateOfBirth: dob,
		MemberAddress:     r.MemberAddress,
		MemberStatus:      status,
		MemberJoinedAt:    *joined,
	}, nil
}

func (r *MemberUpdateRequest) ToUpdates() (map[string]any, error) {
	u := map[string]any{}
	if r.MemberFirstName != nil {
		u["member_first_name"] = strings.TrimSpace(*r.MemberFirstName)
	}
	if r.MemberSurname != nil {
		u["member_surname"] = strings.TrimSpace(*r.MemberSurname)
	}
	if r.MemberPhone != nil {
		u["member_phone"] = trimPtr(r.MemberPhone)
	}
	if r.MemberEmail != nil {
		u["member_email"] = lowerPtr(r.MemberEmail)
	}
	if r.MemberGender != nil {
		u["member_gender"] = *r.MemberGender
	}
	if r.MemberDateOfBirth != nil {
		d, err := parseDate(r.MemberDateOfBirth)
		if err != nil {
			return nil, err
		}
		u["member_date_of_birth"] = d
	}
	if r.MemberAddress != nil {
		u["member_address"] = *r.MemberAddress
	}
	if r.MemberStatus != nil {
		u["member_status"] = *r.MemberStatus
	}
	if r.MemberJoinedAt != nil {
		d, err := parseDate(r.MemberJoinedAt)
		if err != nil {
			return nil, err
		}
		if d != nil {
			u["member_joined_at"] = *d
		}
	}
	return u, nil
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

func ToMemberResponse(m *model.MemberModel) MemberResponse {
	var dob *string
	if m.MemberDateOfBirth != nil {
		s := dbtime.FormatDate(*m.MemberDateOfBirth)
		dob = &s
	}
	return MemberResponse{
		MemberID:           m.MemberID,
		MemberFirstName:    m.MemberFirstName,
		MemberSurname:      m.MemberSurname,
		MemberFullName:     m.FullName(),
		MemberPhone:        m.MemberPhone,
		MemberEmail:        m.MemberEmail,
		MemberGender:       m.MemberGender,
		MemberDateOfBirth:  dob,
		MemberAddress:      m.MemberAddress,
		MemberStatus:       m.MemberStatus,
		MemberJoinedAt:     dbtime.FormatDate(m.MemberJoinedAt),
		MemberParentID:     m.MemberParentID,
		MemberHasBiometric: m.MemberBiometricID != nil,
		MemberCreatedAt:    m.MemberCreatedAt,
		MemberUpdatedAt:    m.MemberUpdatedAt,
	}
}

func ToMemberResponses(rows []model.MemberModel) []MemberResponse {
	out := make([]MemberResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToMemberResponse(&rows[i]))
	}
	return out
}
