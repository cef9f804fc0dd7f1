package service

import (
	"time"

	providerModel "gerejaku_backend/internals/features/churches/providers/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	"gerejaku_backend/internals/features/members/visitors/model"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrStatusNotForward   = fiber.NewError(fiber.StatusBadRequest, "Follow-up status can only move forward")
	ErrAlreadyConverted   = fiber.NewError(fiber.StatusConflict, "Visitor has already been converted to a member")
	ErrNoPhone            = fiber.NewError(fiber.StatusBadRequest, "Visitor has no phone number")
	ErrNoEmail            = fiber.NewError(fiber.StatusBadRequest, "Visitor has no email address")
	ErrUnsupportedChannel = fiber.NewError(fiber.StatusBadRequest, "channel must be sms or email")
)

// CheckAdvance enforces the forward-only funnel.
func CheckAdvance(from, to string) error {
	if !model.CanAdvance(from, to) {
		return ErrStatusNotForward
	}
	return nil
}

// MemberFromVisitor builds the member row a conversion creates.
func MemberFromVisitor(v *model.VisitorModel, joined time.Time) (*memberModel.MemberModel, error) {
	if v.VisitorConvertedMemberID != nil {
		return nil, ErrAlreadyConverted
	}
	return &memberModel.MemberModel{
		MemberChurchID:  v.VisitorChurchID,
		MemberFirstName: v.VisitorFirstName,
		MemberSurname:   v.VisitorSurname,
		MemberPhone:     v.VisitorPhone,
		MemberEmail:     v.VisitorEmail,
		MemberStatus:    memberModel.MemberStatusActive,
		MemberJoinedAt:  joined,
	}, nil
}

// Recipient picks the visitor contact for a channel.
func Recipient(v *model.VisitorModel, channel string) (string, error) {
	switch channel {
	case providerModel.ChannelSMS:
		if v.VisitorPhone == nil || *v.VisitorPhone == "" {
			return "", ErrNoPhone
		}
		return *v.VisitorPhone, nil
	case providerModel.ChannelEmail:
		if v.VisitorEmail == nil || *v.VisitorEmail == "" {
			return "", ErrNoEmail
		}
		return *v.VisitorEmail, nil
	}
	return "", ErrUnsupportedChannel
}
