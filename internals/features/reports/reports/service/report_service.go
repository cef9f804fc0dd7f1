package service

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strings"
	"time"

	"gerejaku_backend/internals/features/reports/reports/repository"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultRangeDays     = 30
	maxRangeDays         = 366
	defaultFollowUpWeeks = 3
	maxFollowUpWeeks     = 52
	historyLimit         = 500
)

var (
	ErrRangeOrder    = fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	ErrRangeTooLarge = fiber.NewError(fiber.StatusBadRequest, "Date range is limited to one year")
	ErrBadWeeks      = fiber.NewError(fiber.StatusBadRequest, "weeks must be between 1 and 52")
	ErrMemberMissing = fiber.NewError(fiber.StatusNotFound, "Member not found")
)

type ReportService struct {
	Repo repository.ReportRepository
	Now  func() time.Time
}

func NewReportService(repo repository.ReportRepository) *ReportService {
	return &ReportService{Repo: repo, Now: time.Now}
}

// DateRange holds calendar days (UTC midnight), inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResolveRange fills missing ends: to defaults to today, from to 30 days before to.
func ResolveRange(from, to *time.Time, today time.Time) (DateRange, error) {
	r := DateRange{To: today}
	if to != nil {
		r.To = *to
	}
	r.From = r.To.AddDate(0, 0, -(defaultRangeDays - 1))
	if from != nil {
		r.From = *from
	}
	if r.From.After(r.To) {
		return DateRange{}, ErrRangeOrder
	}
	if r.To.Sub(r.From) > maxRangeDays*24*time.Hour {
		return DateRange{}, ErrRangeTooLarge
	}
	return r, nil
}

type Totals struct {
	Total     int64            `json:"total"`
	Members   int64            `json:"members"`
	Guests    int64            `json:"guests"`
	ByMethod  map[string]int64 `json:"by_method"`
	Days      int              `json:"days_with_attendance"`
	AvgPerDay float64          `json:"average_per_day"`
}

type SummaryReport struct {
	From   string                  `json:"from"`
	To     string                  `json:"to"`
	Rows   []repository.SummaryRow `json:"rows"`
	Totals Totals                  `json:"totals"`
}

// SumRows folds per-bucket rows into report totals.
func SumRows(rows []repository.SummaryRow) Totals {
	t := Totals{ByMethod: map[string]int64{}}
	days := map[time.Time]bool{}
	for _, r := range rows {
		t.Total += r.Total
		t.Members += r.Members
		t.Guests += r.Guests
		t.ByMethod["manual"] += r.Manual
		t.ByMethod["biometric"] += r.Biometric
		t.ByMethod["family"] += r.Family
		t.ByMethod["external"] += r.External
		t.ByMethod["kiosk"] += r.Kiosk
		days[r.Date.UTC()] = true
	}
	t.Days = len(days)
	if t.Days > 0 {
		t.AvgPerDay = float64(t.Total) / float64(t.Days)
	}
	return t
}

func (s *ReportService) today(loc *time.Location) time.Time {
	return dbtime.LocalDay(s.Now(), loc)
}

func (s *ReportService) Summary(ctx context.Context, churchID uuid.UUID, loc *time.Location, from, to *time.Time, eventID *uuid.UUID) (*SummaryReport, error) {
	r, err := ResolveRange(from, to, s.today(loc))
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.AttendanceSummary(ctx, churchID, r.From, r.To, eventID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repository.SummaryRow{}
	}
	return &SummaryReport{
		From:   dbtime.FormatDate(r.From),
		To:     dbtime.FormatDate(r.To),
		Rows:   rows,
		Totals: SumRows(rows),
	}, nil
}

func (s *ReportService) MemberHistory(ctx context.Context, churchID, memberID uuid.UUID) ([]repository.HistoryRow, error) {
	ok, err := s.Repo.MemberExists(ctx, churchID, memberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMemberMissing
	}
	rows, err := s.Repo.MemberHistory(ctx, churchID, memberID, historyLimit)
	if rows == nil {
		rows = []repository.HistoryRow{}
	}
	return rows, err
}

/* ========================= Follow-up ========================= */

type AbsentMember struct {
	MemberID      uuid.UUID `json:"member_id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	LastAttended  *string   `json:"last_attended,omitempty"`
	WeeksAbsent   int       `json:"weeks_absent"`
	NeverAttended bool      `json:"never_attended"`
}

type FollowUpReport struct {
	Weeks           int                         `json:"weeks"`
	AbsentMembers   []AbsentMember              `json:"absent_members"`
	PendingVisitors []repository.PendingVisitor `json:"pending_visitors"`
}

// ComputeFollowUps lists members whose last attendance (or join date, if they
// never attended) is at least weeks whole weeks before today. Longest absence first.
func ComputeFollowUps(acts []repository.MemberActivity, today time.Time, weeks int) []AbsentMember {
	out := []AbsentMember{}
	for _, a := range acts {
		ref := a.JoinedAt
		if a.LastAttended != nil {
			ref = *a.LastAttended
		}
		w := dbtime.WeeksBetween(ref.UTC(), today)
		if w < weeks {
			continue
		}
		am := AbsentMember{
			MemberID:      a.MemberID,
			Name:          strings.TrimSpace(a.FirstName + " " + a.Surname),
			Phone:         a.Phone,
			Email:         a.Email,
			WeeksAbsent:   w,
			NeverAttended: a.LastAttended == nil,
		}
		if a.LastAttended != nil {
			d := dbtime.FormatDate(a.LastAttended.UTC())
			am.LastAttended = &d
		}
		out = append(out, am)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeeksAbsent != out[j].WeeksAbsent {
			return out[i].WeeksAbsent > out[j].WeeksAbsent
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *ReportService) FollowUps(ctx context.Context, churchID uuid.UUID, loc *time.Location, weeks int) (*FollowUpReport, error) {
	if weeks == 0 {
		weeks = defaultFollowUpWeeks
	}
	if weeks < 1 || weeks > maxFollowUpWeeks {
		return nil, ErrBadWeeks
	}
	acts, err := s.Repo.MemberActivity(ctx, churchID)
	if err != nil {
		return nil, err
	}
	visitors, err := s.Repo.PendingVisitors(ctx, churchID)
	if err != nil {
		return nil, err
	}
	if visitors == nil {
		visitors = []repository.PendingVisitor{}
	}
	return &FollowUpReport{
		Weeks:           weeks,
		AbsentMembers:   ComputeFollowUps(acts, s.today(loc), weeks),
		PendingVisitors: visitors,
	}, nil
}

/* ============================ CSV ============================ */

var csvHeader = []string{"Date", "Check-in time", "Event", "Name", "Type", "Method", "Guest", "Phone", "Email"}

// Export loads the range and writes it as CSV to w.
func (s *ReportService) Export(ctx context.Context, w io.Writer, churchID uuid.UUID, loc *time.Location, from, to *time.Time) (DateRange, error) {
	r, err := ResolveRange(from, to, s.today(loc))
	if err != nil {
		return r, err
	}
	rows, err := s.Repo.ExportRows(ctx, churchID, r.From, r.To)
	if err != nil {
		return r, err
	}
	return r, WriteCSV(w, rows, loc)
}

// WriteCSV renders attendance rows with check-in times in the church's zone.
func WriteCSV(w io.Writer, rows []repository.ExportRow, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		guest := "no"
		if r.IsGuest {
			guest = "yes"
		}
		rec := []string{
			dbtime.FormatDate(r.Date.UTC()),
			dbtime.ToChurchTime(r.CheckInTime, loc).Format("15:04"),
			safeCell(r.EventName),
			safeCell(r.SubjectName),
			r.SubjectKind,
			r.Method,
			guest,
			safeCell(deref(r.Phone)),
			safeCell(deref(r.Email)),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// safeCell stops spreadsheet apps from evaluating user-entered text as a formula.
// Plain phone numbers like +62 811 pass through.
func safeCell(s string) string {
	if s == "" || !strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return s
	}
	if s[0] == '+' && len(s) > 1 && strings.Trim(s[1:], "0123456789 ") == "" {
		return s
	}
	return "'" + s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
