package service

import (
	"context"
	"errors"
	"time"

	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	attRepo "gerejaku_backend/internals/features/attendance/attendance/repository"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	helper "gerejaku_backend/internals/helpers"
	"gerejaku_backend/internals/helpers/dbtime"
	"gerejaku_backend/internals/middlewares/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSubjectRequired  = fiber.NewError(fiber.StatusBadRequest, "Exactly one of memberId or visitorId is required")
	ErrInvalidMethod    = fiber.NewError(fiber.StatusBadRequest, "Unknown check-in method")
	ErrBackfillNotAllow = fiber.NewError(fiber.StatusBadRequest, "Only manual check-ins may specify a date")
	ErrFutureDate       = fiber.NewError(fiber.StatusBadRequest, "Attendance date cannot be in the future")
	ErrEventNotFound    = fiber.NewError(fiber.StatusNotFound, "Event not found")
	ErrEventInactive    = fiber.NewError(fiber.StatusBadRequest, "Event is not active")
	ErrMemberNotFound   = fiber.NewError(fiber.StatusNotFound, "Member not found")
	ErrVisitorNotFound  = fiber.NewError(fiber.StatusNotFound, "Visitor not found")
	ErrBiometricUnknown = fiber.NewError(fiber.StatusNotFound, "No member enrolled with this biometric id")
	ErrNotInFamily      = fiber.NewError(fiber.StatusBadRequest, "Member is not part of this family")
)

// CheckInInput is shared by every intake channel.
type CheckInInput struct {
	ChurchID       uuid.UUID
	EventID        uuid.UUID
	MemberID       *uuid.UUID
	VisitorID      *uuid.UUID
	Method         string
	IsGuest        bool
	RecordedBy     *uuid.UUID
	KioskSessionID *uuid.UUID
	Date           *time.Time // manual backfill, calendar day
	Location       *time.Location
}

type CheckInResult struct {
	Record      *attModel.AttendanceModel
	SubjectName string
}

type FamilyResult struct {
	MemberID    uuid.UUID  `json:"memberId"`
	Name        string     `json:"name"`
	Status      string     `json:"status"` // checked_in | duplicate | rejected
	Message     string     `json:"message,omitempty"`
	CheckInTime *time.Time `json:"checkInTime,omitempty"`
}

const (
	FamilyCheckedIn = "checked_in"
	FamilyDuplicate = "duplicate"
	FamilyRejected  = "rejected"
)

type CheckInService struct {
	Repo attRepo.AttendanceRepository
	Now  func() time.Time
}

func NewCheckInService(repo attRepo.AttendanceRepository) *CheckInService {
	return &CheckInService{Repo: repo, Now: time.Now}
}

// unattended channels may only target active events and active members.
func unattended(method string) bool {
	switch method {
	case attModel.MethodKiosk, attModel.MethodExternal, attModel.MethodBiometric:
		return true
	}
	return false
}

// Record validates and stores one check-in. Duplicates surface as
// helper.ErrDuplicateCheckIn whether caught by the lookup or by the unique index.
func (s *CheckInService) Record(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	res, err := s.record(ctx, in)
	switch {
	case err == nil:
		metrics.ObserveCheckIn(in.Method, "ok")
	case errors.Is(err, helper.ErrDuplicateCheckIn):
		metrics.ObserveCheckIn(in.Method, "duplicate")
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < 500 {
			metrics.ObserveCheckIn(in.Method, "rejected")
		} else {
			metrics.ObserveCheckIn(in.Method, "error")
		}
	}
	return res, err
}

func (s *CheckInService) record(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	if (in.MemberID == nil) == (in.VisitorID == nil) {
		return nil, ErrSubjectRequired
	}
	if !attModel.IsValidMethod(in.Method) {
		return nil, ErrInvalidMethod
	}

	now := s.Now()
	today := dbtime.LocalDay(now, in.Location)
	day := today
	if in.Date != nil {
		if in.Method != attModel.MethodManual {
			return nil, ErrBackfillNotAllow
		}
		d := dbtime.LocalDay(*in.Date, time.UTC)
		if d.After(today) {
			return nil, ErrFutureDate
		}
		day = d
	}

	ev, err := s.Repo.FindEvent(ctx, in.ChurchID, in.EventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	if unattended(in.Method) && !ev.EventIsActive {
		return nil, ErrEventInactive
	}

	var (
		name   string
		exists bool
	)
	if in.MemberID != nil {
		m, err := s.Repo.FindMember(ctx, in.ChurchID, *in.MemberID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		if err != nil {
			return nil, err
		}
		// inactive members are hidden from the public list, so they are unknown here too
		if unattended(in.Method) && m.MemberStatus == memberModel.MemberStatusInactive {
			return nil, ErrMemberNotFound
		}
		name = m.FullName()
		if exists, err = s.Repo.ExistsMember(ctx, m.MemberID, ev.EventID, day); err != nil {
			return nil, err
		}
	} else {
		v, err := s.Repo.FindVisitor(ctx, in.ChurchID, *in.VisitorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		if err != nil {
			return nil, err
		}
		name = v.FullName()
		if exists, err = s.Repo.ExistsVisitor(ctx, v.VisitorID, ev.EventID, day); err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, helper.ErrDuplicateCheckIn
	}

	rec := &attModel.AttendanceModel{
		AttendanceChurchID:       in.ChurchID,
		AttendanceMemberID:       in.MemberID,
		AttendanceVisitorID:      in.VisitorID,
		AttendanceEventID:        ev.EventID,
		AttendanceDate:           datatypes.Date(day),
		AttendanceCheckInTime:    now.UTC(),
		AttendanceCheckInMethod:  in.Method,
		AttendanceIsGuest:        in.IsGuest || in.VisitorID != nil,
		AttendanceRecordedBy:     in.RecordedBy,
		AttendanceKioskSessionID: in.KioskSessionID,
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		// lost the race against a concurrent check-in
		if helper.IsDuplicateKey(err) {
			return nil, helper.ErrDuplicateCheckIn
		}
		return nil, err
	}
	return &CheckInResult{Record: rec, SubjectName: name}, nil
}

// RecordBiometric resolves the member by enrolled biometric id, then records.
func (s *CheckInService) RecordBiometric(ctx context.Context, in CheckInInput, biometricID string) (*CheckInResult, error) {
	m, err := s.Repo.FindMemberByBiometric(ctx, in.ChurchID, biometricID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.ObserveCheckIn(attModel.MethodBiometric, "rejected")
		return nil, ErrBiometricUnknown
	}
	if err != nil {
		return nil, err
	}
	in.MemberID = &m.MemberID
	in.VisitorID = nil
	in.Method = attModel.MethodBiometric
	return s.Record(ctx, in)
}

// RecordMany checks in several members one by one and reports each outcome.
// A duplicate or rejection for one member does not stop the others.
func (s *CheckInService) RecordMany(ctx context.Context, base CheckInInput, memberIDs []uuid.UUID) ([]FamilyResult, error) {
	out := make([]FamilyResult, 0, len(memberIDs))
	seen := map[uuid.UUID]bool{}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		in := base
		mid := id
		in.MemberID = &mid
		in.VisitorID = nil

		res, err := s.Record(ctx, in)
		out = append(out, toFamilyResult(id, res, err))
		if err != nil && !isClientError(err) {
			return out, err
		}
	}
	return out, nil
}

// RecordFamily checks in a parent and/or their children. When memberIDs is
// empty the whole family is checked in.
func (s *CheckInService) RecordFamily(ctx context.Context, base CheckInInput, parentID uuid.UUID, memberIDs []uuid.UUID) ([]FamilyResult, error) {
	family, err := s.Repo.FindFamily(ctx, base.ChurchID, parentID)
	if err != nil {
		return nil, err
	}
	if !containsMember(family, parentID) {
		return nil, ErrMemberNotFound
	}

	allowed := map[uuid.UUID]bool{}
	for _, m := range family {
		allowed[m.MemberID] = true
	}
	if len(memberIDs) == 0 {
		for _, m := range family {
			memberIDs = append(memberIDs, m.MemberID)
		}
	}

	var (
		ok       []uuid.UUID
		rejected []FamilyResult
	)
	for _, id := range memberIDs {
		if allowed[id] {
			ok = append(ok, id)
			continue
		}
		rejected = append(rejected, FamilyResult{MemberID: id, Status: FamilyRejected, Message: ErrNotInFamily.Message})
	}

	base.Method = attModel.MethodFamily
	results, err := s.RecordMany(ctx, base, ok)
	return append(results, rejected...), err
}

func containsMember(ms []memberModel.MemberModel, id uuid.UUID) bool {
	for _, m := range ms {
		if m.MemberID == id {
			return true
		}
	}
	return false
}

func isClientError(err error) bool {
	var fe *fiber.Error
	return errors.As(err, &fe) && fe.Code < 500
}

func toFamilyResult(id uuid.UUID, res *CheckInResult, err error) FamilyResult {
	switch {
	case err == nil:
		t := res.Record.AttendanceCheckInTime
		return FamilyResult{MemberID: id, Name: res.SubjectName, Status: FamilyCheckedIn, CheckInTime: &t}
	case errors.Is(err, helper.ErrDuplicateCheckIn):
		return FamilyResult{MemberID: id, Status: FamilyDuplicate, Message: helper.ErrDuplicateCheckIn.Message}
	case isClientError(err):
		var fe *fiber.Error
		errors.As(err, &fe)
		return FamilyResult{MemberID: id, Status: FamilyRejected, Message: fe.Message}
	default:
		return FamilyResult{MemberID: id, Status: FamilyRejected, Message: "Internal error"}
	}
}
