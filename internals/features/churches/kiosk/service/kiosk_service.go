package service

import (
	"context"
	"errors"
	"time"

	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	attService "gerejaku_backend/internals/features/attendance/attendance/service"
	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/churches/kiosk/model"
	"gerejaku_backend/internals/features/churches/kiosk/repository"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"
	"gerejaku_backend/internals/middlewares/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrChurchNotFound     = fiber.NewError(fiber.StatusNotFound, "Church not found")
	ErrKioskDisabled      = fiber.NewError(fiber.StatusBadRequest, "Kiosk mode is disabled for this church")
	ErrNoActiveEvents     = fiber.NewError(fiber.StatusBadRequest, "No active events. Activate at least one event before starting a kiosk session")
	ErrNoActiveSession    = fiber.NewError(fiber.StatusNotFound, "No active kiosk session")
	ErrConcurrentStart    = fiber.NewError(fiber.StatusConflict, "Another kiosk session was started at the same time, please retry")
	ErrInvalidTimeout     = fiber.NewError(fiber.StatusBadRequest, "kioskSessionTimeout must be one of 15, 30, 60, 120, 240, 480")
	ErrKioskSessionClosed = fiber.NewError(fiber.StatusUnauthorized, "Kiosk session expired or ended")
	ErrEventNotInSession  = fiber.NewError(fiber.StatusForbidden, "This event is not available in the current kiosk session")
	ErrNoMembers          = fiber.NewError(fiber.StatusBadRequest, "memberId or memberIds is required")
)

// adminTokenGrace keeps the admin credential alive a little past the kiosk window.
const adminTokenGrace = 15 * time.Minute

type KioskService struct {
	Repo       repository.KioskRepository
	Attendance *attService.CheckInService
	Now        func() time.Time

	AccessSecret string
	KioskSecret  string
	AccessTTL    time.Duration
}

func NewKioskService(repo repository.KioskRepository, checkIn *attService.CheckInService, accessSecret, kioskSecret string, accessTTL time.Duration) *KioskService {
	return &KioskService{
		Repo:         repo,
		Attendance:   checkIn,
		Now:          time.Now,
		AccessSecret: accessSecret,
		KioskSecret:  kioskSecret,
		AccessTTL:    accessTTL,
	}
}

type AvailableEvent struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Location *string   `json:"location,omitempty"`
}

type ActiveSession struct {
	ID              uuid.UUID        `json:"id"`
	IsActive        bool             `json:"isActive"`
	TimeRemaining   int64            `json:"timeRemaining"`
	StartedAt       time.Time        `json:"startedAt"`
	ExpiresAt       time.Time        `json:"expiresAt"`
	AvailableEvents []AvailableEvent `json:"availableEvents"`
}

type Settings struct {
	KioskModeEnabled    bool           `json:"kioskModeEnabled"`
	KioskSessionTimeout int            `json:"kioskSessionTimeout"`
	ActiveSession       *ActiveSession `json:"activeSession"`
}

// StartResult is the refreshed settings plus two distinct credentials:
// kioskToken authorizes only kiosk check-ins, token is the refreshed admin session.
type StartResult struct {
	*Settings
	KioskToken     string    `json:"kioskToken"`
	Token          string    `json:"token"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
}

// Actor identifies the admin driving the kiosk lifecycle.
type Actor struct {
	UserID   uuid.UUID
	ChurchID uuid.UUID
	Role     string
}

func (s *KioskService) church(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	ch, err := s.Repo.FindChurch(ctx, churchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchNotFound
	}
	return ch, err
}

// current returns the open, unexpired session or nil. An open row found past
// its expiry is closed here; there is no background timer.
func (s *KioskService) current(ctx context.Context, churchID uuid.UUID, now time.Time) (*model.KioskSessionModel, error) {
	sess, err := s.Repo.FindOpen(ctx, churchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.IsExpired(now) {
		if err := s.expire(ctx, sess); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sess, nil
}

func (s *KioskService) expire(ctx context.Context, sess *model.KioskSessionModel) error {
	closed, err := s.Repo.Close(ctx, sess.KioskSessionID, model.EndReasonExpired, sess.KioskSessionExpiresAt)
	if err != nil {
		return err
	}
	if closed {
		metrics.ObserveKiosk("expired")
	}
	return nil
}

func (s *KioskService) settings(ctx context.Context, ch *churchModel.ChurchModel, sess *model.KioskSessionModel, now time.Time) (*Settings, error) {
	out := &Settings{
		KioskModeEnabled:    ch.ChurchKioskModeEnabled,
		KioskSessionTimeout: int(ch.KioskTimeout() / time.Minute),
	}
	if sess == nil || !sess.IsLive(now) {
		return out, nil
	}
	evs, err := s.Repo.ListEvents(ctx, ch.ChurchID, sess.EventUUIDs())
	if err != nil {
		return nil, err
	}
	available := make([]AvailableEvent, 0, len(evs))
	for _, e := range evs {
		available = append(available, AvailableEvent{ID: e.EventID, Name: e.EventName, Type: e.EventType, Location: e.EventLocation})
	}
	out.ActiveSession = &ActiveSession{
		ID:              sess.KioskSessionID,
		IsActive:        true,
		TimeRemaining:   sess.TimeRemaining(now),
		StartedAt:       sess.KioskSessionStartedAt,
		ExpiresAt:       sess.KioskSessionExpiresAt,
		AvailableEvents: available,
	}
	return out, nil
}

func (s *KioskService) GetSettings(ctx context.Context, churchID uuid.UUID) (*Settings, error) {
	now := s.Now()
	ch, err := s.church(ctx, churchID)
	if err != nil {
		return nil, err
	}
	sess, err := s.current(ctx, churchID, now)
	if err != nil {
		return nil, err
	}
	return s.settings(ctx, ch, sess, now)
}

// UpdateSettings applies a partial settings change. Turning kiosk mode off
// ends the open session immediately.
func (s *KioskService) UpdateSettings(ctx context.Context, churchID uuid.UUID, enabled *bool, timeout *int) (*Settings, error) {
	now := s.Now()
	ch, err := s.church(ctx, churchID)
	if err != nil {
		return nil, err
	}
	if timeout != nil && !churchModel.IsValidKioskTimeout(*timeout) {
		return nil, ErrInvalidTimeout
	}

	newEnabled := ch.ChurchKioskModeEnabled
	if enabled != nil {
		newEnabled = *enabled
	}
	newTimeout := int(ch.KioskTimeout() / time.Minute)
	if timeout != nil {
		newTimeout = *timeout
	}
	if err := s.Repo.UpdateSettings(ctx, churchID, newEnabled, newTimeout); err != nil {
		return nil, err
	}
	ch.ChurchKioskModeEnabled = newEnabled
	ch.ChurchKioskSessionTimeout = newTimeout

	if !newEnabled {
		if open, err := s.Repo.FindOpen(ctx, churchID); err == nil {
			closed, err := s.Repo.Close(ctx, open.KioskSessionID, model.EndReasonDisabled, now)
			if err != nil {
				return nil, err
			}
			if closed {
				metrics.ObserveKiosk("disabled")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return s.settings(ctx, ch, nil, now)
	}

	sess, err := s.current(ctx, churchID, now)
	if err != nil {
		return nil, err
	}
	return s.settings(ctx, ch, sess, now)
}

// Start opens a kiosk session over the church's currently active events.
// An open session is replaced in the same transaction.
func (s *KioskService) Start(ctx context.Context, a Actor) (*StartResult, error) {
	now := s.Now()
	ch, err := s.church(ctx, a.ChurchID)
	if err != nil {
		return nil, err
	}
	if !ch.ChurchKioskModeEnabled {
		return nil, ErrKioskDisabled
	}
	ids, err := s.Repo.ActiveEventIDs(ctx, a.ChurchID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoActiveEvents
	}

	scope := make([]string, 0, len(ids))
	for _, id := range ids {
		scope = append(scope, id.String())
	}
	startedBy := a.UserID
	sess := &model.KioskSessionModel{
		KioskSessionID:        uuid.New(),
		KioskSessionChurchID:  a.ChurchID,
		KioskSessionStartedBy: &startedBy,
		KioskSessionStartedAt: now,
		KioskSessionExpiresAt: now.Add(ch.KioskTimeout()),
		KioskSessionEventIDs:  scope,
	}

	replaced, err := s.Repo.StartReplacing(ctx, sess)
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, ErrConcurrentStart
		}
		return nil, err
	}
	if replaced != nil {
		metrics.ObserveKiosk("replaced")
	}
	metrics.ObserveKiosk("started")

	return s.issue(ctx, a, ch, sess, now)
}

// Extend resets expires_at to now+timeout. It never moves expiry backwards
// and never changes the event scope.
func (s *KioskService) Extend(ctx context.Context, a Actor) (*StartResult, error) {
	now := s.Now()
	ch, err := s.church(ctx, a.ChurchID)
	if err != nil {
		return nil, err
	}
	sess, err := s.current(ctx, a.ChurchID, now)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	next := model.ExtendedExpiry(sess.KioskSessionExpiresAt, now, ch.KioskTimeout())
	if err := s.Repo.UpdateExpiry(ctx, sess.KioskSessionID, next); err != nil {
		return nil, err
	}
	sess.KioskSessionExpiresAt = next
	metrics.ObserveKiosk("extended")

	return s.issue(ctx, a, ch, sess, now)
}

// End is idempotent: ending when nothing is open just returns the settings.
func (s *KioskService) End(ctx context.Context, churchID uuid.UUID) (*Settings, error) {
	now := s.Now()
	ch, err := s.church(ctx, churchID)
	if err != nil {
		return nil, err
	}
	open, err := s.Repo.FindOpen(ctx, churchID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, err
	default:
		reason := model.EndReasonEnded
		at := now
		if open.IsExpired(now) {
			reason, at = model.EndReasonExpired, open.KioskSessionExpiresAt
		}
		closed, err := s.Repo.Close(ctx, open.KioskSessionID, reason, at)
		if err != nil {
			return nil, err
		}
		if closed {
			metrics.ObserveKiosk(reason)
		}
	}
	return s.settings(ctx, ch, nil, now)
}

func (s *KioskService) issue(ctx context.Context, a Actor, ch *churchModel.ChurchModel, sess *model.KioskSessionModel, now time.Time) (*StartResult, error) {
	kioskToken, err := helperAuth.SignKioskToken(s.KioskSecret, sess.KioskSessionID, a.ChurchID, now, sess.KioskSessionExpiresAt)
	if err != nil {
		return nil, err
	}
	ttl := sess.KioskSessionExpiresAt.Sub(now) + adminTokenGrace
	if ttl < s.AccessTTL {
		ttl = s.AccessTTL
	}
	token, exp, err := helperAuth.SignAccessToken(s.AccessSecret, a.UserID, a.ChurchID, a.Role, now, ttl)
	if err != nil {
		return nil, err
	}
	st, err := s.settings(ctx, ch, sess, now)
	if err != nil {
		return nil, err
	}
	return &StartResult{Settings: st, KioskToken: kioskToken, Token: token, TokenExpiresAt: exp}, nil
}

// Authorize checks a kiosk credential against the live session state.
// The token only names a session; the stored row decides.
func (s *KioskService) Authorize(ctx context.Context, sessionID, churchID uuid.UUID) (*model.KioskSessionModel, error) {
	now := s.Now()
	sess, err := s.Repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKioskSessionClosed
	}
	if err != nil {
		return nil, err
	}
	if sess.KioskSessionChurchID != churchID || !sess.IsOpen() {
		return nil, ErrKioskSessionClosed
	}
	if sess.IsExpired(now) {
		if err := s.expire(ctx, sess); err != nil {
			return nil, err
		}
		return nil, ErrKioskSessionClosed
	}
	return sess, nil
}

type KioskStatus struct {
	Session        *ActiveSession `json:"session"`
	ChurchName     string         `json:"churchName"`
	BrandColor     string         `json:"churchBrandColor"`
	LogoURL        *string        `json:"churchLogoUrl,omitempty"`
	WelcomeMessage *string        `json:"welcomeMessage,omitempty"`
	KioskToken     string         `json:"kioskToken"`
}

// Status is what the kiosk device polls. The returned kioskToken carries the
// current expires_at, so an extension reaches devices holding an older token.
func (s *KioskService) Status(ctx context.Context, sessionID, churchID uuid.UUID) (*KioskStatus, error) {
	sess, err := s.Authorize(ctx, sessionID, churchID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	ch, err := s.church(ctx, churchID)
	if err != nil {
		return nil, err
	}
	st, err := s.settings(ctx, ch, sess, now)
	if err != nil {
		return nil, err
	}
	tok, err := helperAuth.SignKioskToken(s.KioskSecret, sess.KioskSessionID, churchID, now, sess.KioskSessionExpiresAt)
	if err != nil {
		return nil, err
	}
	return &KioskStatus{
		Session:        st.ActiveSession,
		ChurchName:     ch.ChurchName,
		BrandColor:     ch.ChurchBrandColor,
		LogoURL:        ch.ChurchLogoURL,
		WelcomeMessage: ch.ChurchWelcomeMessage,
		KioskToken:     tok,
	}, nil
}

// CheckIn records kiosk attendance for one or more members. The session must
// be live and the event must be in its captured scope.
func (s *KioskService) CheckIn(ctx context.Context, sessionID, churchID, eventID uuid.UUID, memberIDs []uuid.UUID) ([]attService.FamilyResult, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoMembers
	}
	sess, err := s.Authorize(ctx, sessionID, churchID)
	if err != nil {
		return nil, err
	}
	if !sess.Covers(eventID) {
		return nil, ErrEventNotInSession
	}
	ch, err := s.church(ctx, churchID)
	if err != nil {
		return nil, err
	}

	sid := sess.KioskSessionID
	base := attService.CheckInInput{
		ChurchID:       churchID,
		EventID:        eventID,
		Method:         attModel.MethodKiosk,
		KioskSessionID: &sid,
		Location:       dbtime.LoadLocation(ch.ChurchTimezone),
	}
	if len(memberIDs) == 1 {
		mid := memberIDs[0]
		base.MemberID = &mid
		res, err := s.Attendance.Record(ctx, base)
		if err != nil {
			return nil, err
		}
		t := res.Record.AttendanceCheckInTime
		return []attService.FamilyResult{{
			MemberID: mid, Name: res.SubjectName, Status: attService.FamilyCheckedIn, CheckInTime: &t,
		}}, nil
	}
	return s.Attendance.RecordMany(ctx, base, memberIDs)
}

// PruneClosed is the housekeeping hook for old closed sessions.
func (s *KioskService) PruneClosed(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.Repo.PruneClosedBefore(ctx, s.Now().Add(-olderThan))
}
