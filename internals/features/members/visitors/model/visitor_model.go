package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FollowUpPending   = "pending"
	FollowUpContacted = "contacted"
	FollowUpMember    = "member"
)

var followUpRank = map[string]int{
	FollowUpPending:   0,
	FollowUpContacted: 1,
	FollowUpMember:    2,
}

func IsValidFollowUpStatus(s string) bool {
	_, ok := followUpRank[s]
	return ok
}

// CanAdvance reports whether a visitor may move from one follow-up status to
// another. The funnel is forward-only and skipping "contacted" is allowed.
func CanAdvance(from, to string) bool {
	f, okF := followUpRank[from]
	t, okT := followUpRank[to]
	return okF && okT && t > f
}

type VisitorModel struct {
	VisitorID                uuid.UUID  `gorm:"column:visitor_id;type:uuid;default:gen_random_uuid();primaryKey" json:"visitor_id"`
	VisitorChurchID          uuid.UUID  `gorm:"column:visitor_church_id;type:uuid;not null;index"                json:"visitor_church_id"`
	VisitorFirstName         string     `gorm:"column:visitor_first_name;type:varchar(80);not null"              json:"visitor_first_name"`
	VisitorSurname           string     `gorm:"column:visitor_surname;type:varchar(80);not null;default:''"      json:"visitor_surname"`
	VisitorPhone             *string    `gorm:"column:visitor_phone;type:varchar(32)"                            json:"visitor_phone,omitempty"`
	VisitorEmail             *string    `gorm:"column:visitor_email;type:varchar(190)"                           json:"visitor_email,omitempty"`
	VisitorFirstVisitDate    time.Time  `gorm:"column:visitor_first_visit_date;type:date;not null"               json:"visitor_first_visit_date"`
	VisitorFollowUpStatus    string     `gorm:"column:visitor_follow_up_status;type:varchar(16);not null;default:'pending'" json:"visitor_follow_up_status"`
	VisitorNotes             *string    `gorm:"column:visitor_notes;type:text"                                   json:"visitor_notes,omitempty"`
	VisitorConvertedMemberID *uuid.UUID `gorm:"column:visitor_converted_member_id;type:uuid"                     json:"visitor_converted_member_id,omitempty"`

	VisitorCreatedAt time.Time      `gorm:"column:visitor_created_at;type:timestamptz;autoCreateTime" json:"visitor_created_at"`
	VisitorUpdatedAt time.Time      `gorm:"column:visitor_updated_at;type:timestamptz;autoUpdateTime" json:"visitor_updated_at"`
	VisitorDeletedAt gorm.DeletedAt `gorm:"column:visitor_deleted_at;type:timestamptz;index"          json:"-"`
}

func (VisitorModel) TableName() string {
	return "visitors"
}

func (v *VisitorModel) FullName() string {
	return strings.TrimSpace(v.VisitorFirstName + " " + v.VisitorSurname)
}

// VisitorFollowUpModel logs each outbound follow-up message. Sending never changes status.
type VisitorFollowUpModel struct {
	VisitorFollowUpID              uuid.UUID  `gorm:"column:visitor_follow_up_id;type:uuid;default:gen_random_uuid();primaryKey" json:"visitor_follow_up_id"`
	VisitorFollowUpVisitorID       uuid.UUID  `gorm:"column:visitor_follow_up_visitor_id;type:uuid;not null"   json:"visitor_follow_up_visitor_id"`
	VisitorFollowUpChurchID        uuid.UUID  `gorm:"column:visitor_follow_up_church_id;type:uuid;not null"    json:"visitor_follow_up_church_id"`
	VisitorFollowUpChannel         string     `gorm:"column:visitor_follow_up_channel;type:varchar(10);not null" json:"visitor_follow_up_channel"`
	VisitorFollowUpRecipient       string     `gorm:"column:visitor_follow_up_recipient;type:varchar(190);not null" json:"visitor_follow_up_recipient"`
	VisitorFollowUpMessage         string     `gorm:"column:visitor_follow_up_message;type:text;not null"      json:"visitor_follow_up_message"`
	VisitorFollowUpSuccess         bool       `gorm:"column:visitor_follow_up_success;not null"                json:"visitor_follow_up_success"`
	VisitorFollowUpProviderMessage *string    `gorm:"column:visitor_follow_up_provider_message;type:text"      json:"visitor_follow_up_provider_message,omitempty"`
	VisitorFollowUpSentBy          *uuid.UUID `gorm:"column:visitor_follow_up_sent_by;type:uuid"               json:"visitor_follow_up_sent_by,omitempty"`
	VisitorFollowUpCreatedAt       time.Time  `gorm:"column:visitor_follow_up_created_at;type:timestamptz;autoCreateTime" json:"visitor_follow_up_created_at"`
}

func (VisitorFollowUpModel) TableName() string {
	return "visitor_follow_ups"
}
