package service

import (
	"context"
	"errors"
	"testing"
	"time"

	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	eventModel "gerejaku_backend/internals/features/events/events/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	visitorModel "gerejaku_backend/internals/features/members/visitors/model"
	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type attKey struct {
	subject uuid.UUID
	event   uuid.UUID
	day     string
}

// fakeRepo keeps rows in memory. skipExists simulates the race where the
// pre-insert lookup misses a concurrent writer and the unique index fires.
type fakeRepo struct {
	events     map[uuid.UUID]eventModel.EventModel
	members    map[uuid.UUID]memberModel.MemberModel
	visitors   map[uuid.UUID]visitorModel.VisitorModel
	rows       map[attKey]attModel.AttendanceModel
	skipExists bool
	insertErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:   map[uuid.UUID]eventModel.EventModel{},
		members:  map[uuid.UUID]memberModel.MemberModel{},
		visitors: map[uuid.UUID]visitorModel.VisitorModel{},
		rows:     map[attKey]attModel.AttendanceModel{},
	}
}

func (f *fakeRepo) FindEvent(ctx context.Context, churchID, eventID uuid.UUID) (*eventModel.EventModel, error) {
	ev, ok := f.events[eventID]
	if !ok || ev.EventChurchID != churchID {
		return nil, gorm.ErrRecordNotFound
	}
	return &ev, nil
}

func (f *fakeRepo) FindMember(ctx context.Context, churchID, memberID uuid.UUID) (*memberModel.MemberModel, error) {
	m, ok := f.members[memberID]
	if !ok || m.MemberChurchID != churchID {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeRepo) FindMemberByBiometric(ctx context.Context, churchID uuid.UUID, biometricID string) (*memberModel.MemberModel, error) {
	for _, m := range f.members {
		if m.MemberChurchID == churchID && m.MemberBiometricID != nil && *m.MemberBiometricID == biometricID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindVisitor(ctx context.Context, churchID, visitorID uuid.UUID) (*visitorModel.VisitorModel, error) {
	v, ok := f.visitors[visitorID]
	if !ok || v.VisitorChurchID != churchID {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (f *fakeRepo) FindFamily(ctx context.Context, churchID, parentID uuid.UUID) ([]memberModel.MemberModel, error) {
	var out []memberModel.MemberModel
	for _, m := range f.members {
		if m.MemberChurchID != churchID {
			continue
		}
		if m.MemberID == parentID || (m.MemberParentID != nil && *m.MemberParentID == parentID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExistsMember(ctx context.Context, memberID, eventID uuid.UUID, day time.Time) (bool, error) {
	if f.skipExists {
		return false, nil
	}
	_, ok := f.rows[attKey{memberID, eventID, day.Format("2006-01-02")}]
	return ok, nil
}

func (f *fakeRepo) ExistsVisitor(ctx context.Context, visitorID, eventID uuid.UUID, day time.Time) (bool, error) {
	if f.skipExists {
		return false, nil
	}
	_, ok := f.rows[attKey{visitorID, eventID, day.Format("2006-01-02")}]
	return ok, nil
}

func (f *fakeRepo) Insert(ctx context.Context, rec *attModel.AttendanceModel) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	subject := uuid.Nil
	if rec.AttendanceMemberID != nil {
		subject = *rec.AttendanceMemberID
	} else {
		subject = *rec.AttendanceVisitorID
	}
	k := attKey{subject, rec.AttendanceEventID, time.Time(rec.AttendanceDate).Format("2006-01-02")}
	if _, dup := f.rows[k]; dup {
		return gorm.ErrDuplicatedKey
	}
	rec.AttendanceID = uuid.New()
	f.rows[k] = *rec
	return nil
}

type fixture struct {
	repo     *fakeRepo
	svc      *CheckInService
	church   uuid.UUID
	event    uuid.UUID
	inactive uuid.UUID
	member   uuid.UUID
	child    uuid.UUID
	visitor  uuid.UUID
	stranger uuid.UUID // member of another church
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		church:   uuid.New(),
		event:    uuid.New(),
		inactive: uuid.New(),
		member:   uuid.New(),
		child:    uuid.New(),
		visitor:  uuid.New(),
		stranger: uuid.New(),
	}
	f.repo.events[f.event] = eventModel.EventModel{EventID: f.event, EventChurchID: f.church, EventName: "Sunday Service", EventIsActive: true}
	f.repo.events[f.inactive] = eventModel.EventModel{EventID: f.inactive, EventChurchID: f.church, EventName: "Old", EventIsActive: false}
	bio := "FP-001"
	f.repo.members[f.member] = memberModel.MemberModel{MemberID: f.member, MemberChurchID: f.church, MemberFirstName: "Ruth", MemberSurname: "Adeyemi", MemberBiometricID: &bio}
	parent := f.member
	f.repo.members[f.child] = memberModel.MemberModel{MemberID: f.child, MemberChurchID: f.church, MemberFirstName: "Sam", MemberSurname: "Adeyemi", MemberParentID: &parent}
	f.repo.members[f.stranger] = memberModel.MemberModel{MemberID: f.stranger, MemberChurchID: uuid.New(), MemberFirstName: "Other"}
	f.repo.visitors[f.visitor] = visitorModel.VisitorModel{VisitorID: f.visitor, VisitorChurchID: f.church, VisitorFirstName: "Guest"}

	f.svc = NewCheckInService(f.repo)
	f.svc.Now = func() time.Time { return now }
	return f
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 0
}

func TestRecord_DuplicateAcrossChannels(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	channels := []string{attModel.MethodManual, attModel.MethodExternal, attModel.MethodKiosk}
	for _, first := range channels {
		for _, second := range channels {
			t.Run(first+"_then_"+second, func(t *testing.T) {
				f := newFixture(now)
				in := CheckInInput{ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: first}
				if _, err := f.svc.Record(context.Background(), in); err != nil {
					t.Fatalf("first check-in: %v", err)
				}
				in.Method = second
				_, err := f.svc.Record(context.Background(), in)
				if !errors.Is(err, helper.ErrDuplicateCheckIn) {
					t.Fatalf("second check-in: want duplicate, got %v", err)
				}
			})
		}
	}
}

func TestRecord_UniqueIndexRaceIsDuplicate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.repo.skipExists = true

	in := CheckInInput{ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: attModel.MethodExternal}
	if _, err := f.svc.Record(context.Background(), in); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := f.svc.Record(context.Background(), in)
	if !errors.Is(err, helper.ErrDuplicateCheckIn) {
		t.Fatalf("want duplicate from unique index, got %v", err)
	}
}

func TestRecord_NextDayIsNotDuplicate(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	in := CheckInInput{ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: attModel.MethodManual}
	if _, err := f.svc.Record(context.Background(), in); err != nil {
		t.Fatalf("day 1: %v", err)
	}
	f.svc.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	if _, err := f.svc.Record(context.Background(), in); err != nil {
		t.Fatalf("day 2 should succeed: %v", err)
	}
}

func TestRecord_UsesChurchLocalDay(t *testing.T) {
	// 23:30 UTC on Mar 1 is already Mar 2 in Jakarta.
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	f := newFixture(now)
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skip("tzdata not available")
	}
	res, err := f.svc.Record(context.Background(), CheckInInput{
		ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: attModel.MethodManual, Location: jakarta,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := time.Time(res.Record.AttendanceDate).Format("2006-01-02"); got != "2026-03-02" {
		t.Fatalf("attendance date = %s, want 2026-03-02", got)
	}
}

func TestRecord_Rejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name   string
		mutate func(f *fixture, in *CheckInInput)
		status int
	}{
		{"no subject", func(f *fixture, in *CheckInInput) { in.MemberID = nil }, 400},
		{"both subjects", func(f *fixture, in *CheckInInput) { in.VisitorID = ptr(f.visitor) }, 400},
		{"bad method", func(f *fixture, in *CheckInInput) { in.Method = "teleport" }, 400},
		{"event of other church", func(f *fixture, in *CheckInInput) { in.ChurchID = uuid.New() }, 404},
		{"unknown event", func(f *fixture, in *CheckInInput) { in.EventID = uuid.New() }, 404},
		{"cross-tenant member", func(f *fixture, in *CheckInInput) { in.MemberID = ptr(f.stranger) }, 404},
		{"inactive event via kiosk", func(f *fixture, in *CheckInInput) {
			in.EventID = f.inactive
			in.Method = attModel.MethodKiosk
		}, 400},
		{"backfill on external", func(f *fixture, in *CheckInInput) {
			in.Method = attModel.MethodExternal
			in.Date = &now
		}, 400},
		{"future backfill", func(f *fixture, in *CheckInInput) { in.Date = &future }, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(now)
			in := CheckInInput{ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: attModel.MethodManual}
			tt.mutate(f, &in)
			_, err := f.svc.Record(context.Background(), in)
			if got := statusOf(err); got != tt.status {
				t.Fatalf("status = %d (%v), want %d", got, err, tt.status)
			}
			if len(f.repo.rows) != 0 {
				t.Fatalf("rejected check-in must not write")
			}
		})
	}
}

func TestRecord_ManualOnInactiveEventAndBackfill(t *testing.T) {
	now := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	lastWeek := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	res, err := f.svc.Record(context.Background(), CheckInInput{
		ChurchID: f.church, EventID: f.inactive, MemberID: ptr(f.member), Method: attModel.MethodManual, Date: &lastWeek,
	})
	if err != nil {
		t.Fatalf("manual backfill: %v", err)
	}
	if got := time.Time(res.Record.AttendanceDate); !got.Equal(lastWeek) {
		t.Fatalf("date = %v, want %v", got, lastWeek)
	}
}

func TestRecord_VisitorIsGuest(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	res, err := f.svc.Record(context.Background(), CheckInInput{
		ChurchID: f.church, EventID: f.event, VisitorID: ptr(f.visitor), Method: attModel.MethodManual,
	})
	if err != nil {
		t.Fatalf("visitor check-in: %v", err)
	}
	if !res.Record.AttendanceIsGuest {
		t.Fatalf("visitor attendance must be flagged as guest")
	}
}

func TestRecord_StorageErrorIsNotDuplicate(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	f.repo.insertErr = errors.New("connection reset")
	_, err := f.svc.Record(context.Background(), CheckInInput{
		ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: attModel.MethodManual,
	})
	if err == nil || errors.Is(err, helper.ErrDuplicateCheckIn) {
		t.Fatalf("want plain storage error, got %v", err)
	}
}

func TestRecordBiometric(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	base := CheckInInput{ChurchID: f.church, EventID: f.event}

	res, err := f.svc.RecordBiometric(context.Background(), base, "FP-001")
	if err != nil {
		t.Fatalf("biometric: %v", err)
	}
	if res.Record.AttendanceCheckInMethod != attModel.MethodBiometric {
		t.Fatalf("method = %s", res.Record.AttendanceCheckInMethod)
	}
	if _, err := f.svc.RecordBiometric(context.Background(), base, "FP-404"); statusOf(err) != 404 {
		t.Fatalf("unknown biometric: want 404, got %v", err)
	}
}

func TestRecordFamily(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	base := CheckInInput{ChurchID: f.church, EventID: f.event}

	// child already in
	if _, err := f.svc.Record(context.Background(), CheckInInput{
		ChurchID: f.church, EventID: f.event, MemberID: ptr(f.child), Method: attModel.MethodManual,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results, err := f.svc.RecordFamily(context.Background(), base, f.member, []uuid.UUID{f.member, f.child, f.stranger})
	if err != nil {
		t.Fatalf("family: %v", err)
	}
	got := map[uuid.UUID]string{}
	for _, r := range results {
		got[r.MemberID] = r.Status
	}
	want := map[uuid.UUID]string{
		f.member:   FamilyCheckedIn,
		f.child:    FamilyDuplicate,
		f.stranger: FamilyRejected,
	}
	for id, status := range want {
		if got[id] != status {
			t.Errorf("member %s: status %q, want %q", id, got[id], status)
		}
	}
}

func TestRecordFamily_WholeFamilyByDefault(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	results, err := f.svc.RecordFamily(context.Background(), CheckInInput{ChurchID: f.church, EventID: f.event}, f.member, nil)
	if err != nil {
		t.Fatalf("family: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want parent + child, got %d results", len(results))
	}
	for _, r := range results {
		if r.Status != FamilyCheckedIn {
			t.Errorf("member %s: %s", r.MemberID, r.Status)
		}
	}
}

func TestRecordFamily_UnknownParent(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	_, err := f.svc.RecordFamily(context.Background(), CheckInInput{ChurchID: f.church, EventID: f.event}, f.stranger, nil)
	if statusOf(err) != 404 {
		t.Fatalf("want 404, got %v", err)
	}
}

func TestRecord_InactiveMemberOnlyByStaff(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		method string
		status int
	}{
		{attModel.MethodKiosk, fiber.StatusNotFound},
		{attModel.MethodExternal, fiber.StatusNotFound},
		{attModel.MethodManual, 0},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			f := newFixture(now)
			m := f.repo.members[f.member]
			m.MemberStatus = memberModel.MemberStatusInactive
			f.repo.members[f.member] = m

			_, err := f.svc.Record(context.Background(), CheckInInput{
				ChurchID: f.church, EventID: f.event, MemberID: ptr(f.member), Method: tt.method,
			})
			if got := statusOf(err); got != tt.status {
				t.Fatalf("status = %d (%v), want %d", got, err, tt.status)
			}
			wantRows := 0
			if tt.status == 0 {
				wantRows = 1
			}
			if len(f.repo.rows) != wantRows {
				t.Fatalf("rows = %d, want %d", len(f.repo.rows), wantRows)
			}
		})
	}
}
