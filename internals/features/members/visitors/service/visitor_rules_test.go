package service

import (
	"errors"
	"testing"
	"time"

	providerModel "gerejaku_backend/internals/features/churches/providers/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	"gerejaku_backend/internals/features/members/visitors/model"

	"github.com/google/uuid"
)

func TestCheckAdvance(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{model.FollowUpPending, model.FollowUpContacted, true},
		{model.FollowUpPending, model.FollowUpMember, true},
		{model.FollowUpContacted, model.FollowUpMember, true},
		{model.FollowUpContacted, model.FollowUpPending, false},
		{model.FollowUpMember, model.FollowUpContacted, false},
		{model.FollowUpPending, model.FollowUpPending, false},
		{model.FollowUpPending, "archived", false},
		{"", model.FollowUpContacted, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			err := CheckAdvance(tt.from, tt.to)
			if tt.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrStatusNotForward) {
				t.Fatalf("expected ErrStatusNotForward, got %v", err)
			}
		})
	}
}

func TestMemberFromVisitor(t *testing.T) {
	phone := "+62811"
	v := &model.VisitorModel{
		VisitorID:             uuid.New(),
		VisitorChurchID:       uuid.New(),
		VisitorFirstName:      "Maria",
		VisitorSurname:        "Lestari",
		VisitorPhone:          &phone,
		VisitorFollowUpStatus: model.FollowUpContacted,
	}
	joined := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	m, err := MemberFromVisitor(v, joined)
	if err != nil {
		t.Fatalf("MemberFromVisitor: %v", err)
	}
	if m.MemberChurchID != v.VisitorChurchID || m.FullName() != "Maria Lestari" {
		t.Fatalf("member = %+v", m)
	}
	if m.MemberStatus != memberModel.MemberStatusActive || !m.MemberJoinedAt.Equal(joined) {
		t.Fatalf("status/joined = %s/%s", m.MemberStatus, m.MemberJoinedAt)
	}
	if m.MemberPhone == nil || *m.MemberPhone != phone {
		t.Fatalf("phone not carried over")
	}

	id := uuid.New()
	v.VisitorConvertedMemberID = &id
	if _, err := MemberFromVisitor(v, joined); !errors.Is(err, ErrAlreadyConverted) {
		t.Fatalf("second conversion: err = %v", err)
	}
}

func TestRecipient(t *testing.T) {
	phone, email := "+62811", "maria@example.org"
	full := &model.VisitorModel{VisitorPhone: &phone, VisitorEmail: &email}
	bare := &model.VisitorModel{}

	if r, err := Recipient(full, providerModel.ChannelSMS); err != nil || r != phone {
		t.Fatalf("sms = %q, %v", r, err)
	}
	if r, err := Recipient(full, providerModel.ChannelEmail); err != nil || r != email {
		t.Fatalf("email = %q, %v", r, err)
	}
	if _, err := Recipient(bare, providerModel.ChannelSMS); !errors.Is(err, ErrNoPhone) {
		t.Fatalf("bare sms: %v", err)
	}
	if _, err := Recipient(bare, providerModel.ChannelEmail); !errors.Is(err, ErrNoEmail) {
		t.Fatalf("bare email: %v", err)
	}
	if _, err := Recipient(full, "fax"); !errors.Is(err, ErrUnsupportedChannel) {
		t.Fatalf("fax: %v", err)
	}
}
