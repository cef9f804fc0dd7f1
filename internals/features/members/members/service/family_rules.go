package service

import (
	"gerejaku_backend/internals/features/members/members/model"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrSelfParent        = fiber.NewError(fiber.StatusBadRequest, "A member cannot be their own parent")
	ErrParentIsChild     = fiber.NewError(fiber.StatusBadRequest, "The chosen parent is already linked as someone's child")
	ErrMemberHasKids     = fiber.NewError(fiber.StatusBadRequest, "This member has children and cannot be linked under another parent")
	ErrParentOtherChurch = fiber.NewError(fiber.StatusNotFound, "Parent member not found")
)

// CheckParentLink validates attaching member under parent. Families are one
// level deep (parent -> children), which also rules out cycles.
// parent == nil means the link is being cleared and is always allowed.
func CheckParentLink(member, parent *model.MemberModel, memberHasChildren bool) error {
	if parent == nil {
		return nil
	}
	if parent.MemberID == member.MemberID {
		return ErrSelfParent
	}
	if parent.MemberChurchID != member.MemberChurchID {
		return ErrParentOtherChurch
	}
	if parent.MemberParentID != nil {
		return ErrParentIsChild
	}
	if memberHasChildren {
		return ErrMemberHasKids
	}
	return nil
}
