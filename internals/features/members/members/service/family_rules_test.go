package service

import (
	"testing"

	"gerejaku_backend/internals/features/members/members/model"

	"github.com/google/uuid"
)

func TestCheckParentLink(t *testing.T) {
	church := uuid.New()
	grandparent := uuid.New()

	member := &model.MemberModel{MemberID: uuid.New(), MemberChurchID: church}
	parent := &model.MemberModel{MemberID: uuid.New(), MemberChurchID: church}
	childParent := &model.MemberModel{MemberID: uuid.New(), MemberChurchID: church, MemberParentID: &grandparent}
	backLink := &model.MemberModel{MemberID: uuid.New(), MemberChurchID: church, MemberParentID: &member.MemberID}
	foreign := &model.MemberModel{MemberID: uuid.New(), MemberChurchID: uuid.New()}

	tests := []struct {
		name    string
		parent  *model.MemberModel
		hasKids bool
		want    error
	}{
		{"clear link", nil, true, nil},
		{"valid parent", parent, false, nil},
		{"self", member, false, ErrSelfParent},
		{"other church", foreign, false, ErrParentOtherChurch},
		{"parent is a child", childParent, false, ErrParentIsChild},
		{"two-cycle", backLink, false, ErrParentIsChild},
		{"member already a parent", parent, true, ErrMemberHasKids},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckParentLink(member, tt.parent, tt.hasKids); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
