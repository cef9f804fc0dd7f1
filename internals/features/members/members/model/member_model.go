package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

type MemberModel struct {
	MemberID          uuid.UUID  `gorm:"column:member_id;type:uuid;default:gen_random_uuid();primaryKey" json:"member_id"`
	MemberChurchID    uuid.UUID  `gorm:"column:member_church_id;type:uuid;not null;index"               json:"member_church_id"`
	MemberFirstName   string     `gorm:"column:member_first_name;type:varchar(80);not null"             json:"member_first_name"`
	MemberSurname     string     `gorm:"column:member_surname;type:varchar(80);not null;default:''"     json:"member_surname"`
	MemberPhone       *string    `gorm:"column:member_phone;type:varchar(32)"                           json:"member_phone,omitempty"`
	MemberEmail       *string    `gorm:"column:member_email;type:varchar(190)"                          json:"member_email,omitempty"`
	MemberGender      *string    `gorm:"column:member_gender;type:varchar(10)"                          json:"member_gender,omitempty"`
	MemberDateOfBirth *time.Time `gorm:"column:member_date_of_birth;type:date"                          json:"member_date_of_birth,omitempty"`
	MemberAddress     *string    `gorm:"column:member_address;type:text"                                json:"member_address,omitempty"`
	MemberStatus      string     `gorm:"column:member_status;type:varchar(16);not null;default:'active'" json:"member_status"`
	MemberJoinedAt    time.Time  `gorm:"column:member_joined_at;type:date;not null"                     json:"member_joined_at"`
	MemberParentID    *uuid.UUID `gorm:"column:member_parent_id;type:uuid;index"                        json:"member_parent_id,omitempty"`
	MemberBiometricID *string    `gorm:"column:member_biometric_id;type:varchar(64)"                    json:"-"`

	MemberCreatedAt time.Time      `gorm:"column:member_created_at;type:timestamptz;autoCreateTime" json:"member_created_at"`
	MemberUpdatedAt time.Time      `gorm:"column:member_updated_at;type:timestamptz;autoUpdateTime" json:"member_updated_at"`
	MemberDeletedAt gorm.DeletedAt `gorm:"column:member_deleted_at;type:timestamptz;index"          json:"-"`
}

func (MemberModel) TableName() string {
	return "members"
}

func (m *MemberModel) FullName() string {
	return strings.TrimSpace(m.MemberFirstName + " " + m.MemberSurname)
}
