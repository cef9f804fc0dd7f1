package service

import (
	"context"
	"errors"
	"strings"
	"time"

	attModel "gerejaku_backend/internals/features/attendance/attendance/model"
	attService "gerejaku_backend/internals/features/attendance/attendance/service"
	eventModel "gerejaku_backend/internals/features/events/events/model"
	"gerejaku_backend/internals/features/events/external_checkin/repository"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	helper "gerejaku_backend/internals/helpers"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = fiber.NewError(fiber.StatusNotFound, "Event not found")
	ErrEventOtherChurch   = fiber.NewError(fiber.StatusForbidden, "Event belongs to a different church")
	ErrLinkNotFound       = fiber.NewError(fiber.StatusNotFound, "Check-in link not found or disabled")
	ErrPINLength          = fiber.NewError(fiber.StatusBadRequest, "PIN must be exactly 6 digits")
	ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid PIN or check-in link")
	ErrMemberRequired     = fiber.NewError(fiber.StatusBadRequest, "memberId is required")
	ErrTokenExhausted     = fiber.NewError(fiber.StatusInternalServerError, "Could not allocate a unique check-in link")
)

const (
	enableAttempts    = 5
	memberSearchLimit = 200
)

type ExternalCheckinService struct {
	Repo    repository.ExternalCheckinRepository
	CheckIn *attService.CheckInService
	BaseURL string

	// overridable in tests
	NewURL func() (string, error)
	NewPIN func() (string, error)
}

func NewExternalCheckinService(repo repository.ExternalCheckinRepository, checkIn *attService.CheckInService, baseURL string) *ExternalCheckinService {
	return &ExternalCheckinService{
		Repo:    repo,
		CheckIn: checkIn,
		BaseURL: strings.TrimRight(baseURL, "/"),
		NewURL:  helper.NewExternalURLToken,
		NewPIN:  helper.NewExternalPIN,
	}
}

// FullURL is the shareable page address for a link token.
func (s *ExternalCheckinService) FullURL(token string) string {
	return s.BaseURL + "/external-checkin/" + token
}

type ToggleResult struct {
	Event       *eventModel.EventModel
	ExternalURL *string
}

type AdminView struct {
	Enabled bool    `json:"enabled"`
	URL     *string `json:"url"`
	PIN     *string `json:"pin"`
	FullURL *string `json:"fullUrl"`
}

// ownedEvent loads an event for an admin action. A foreign event is an
// authorization failure, not a 404.
func (s *ExternalCheckinService) ownedEvent(ctx context.Context, churchID, eventID uuid.UUID) (*eventModel.EventModel, error) {
	ev, err := s.Repo.FindEvent(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	if ev.EventChurchID != churchID {
		return nil, ErrEventOtherChurch
	}
	return ev, nil
}

// Toggle issues a fresh url+pin pair on enable and clears both on disable.
// Enabling an already enabled event rotates the pair.
func (s *ExternalCheckinService) Toggle(ctx context.Context, churchID, eventID uuid.UUID, enabled bool) (*ToggleResult, error) {
	ev, err := s.ownedEvent(ctx, churchID, eventID)
	if err != nil {
		return nil, err
	}

	if !enabled {
		if err := s.Repo.Disable(ctx, ev.EventID); err != nil {
			return nil, err
		}
		ev.EventExternalCheckinEnabled = false
		ev.EventExternalCheckinURL = nil
		ev.EventExternalCheckinPIN = nil
		return &ToggleResult{Event: ev}, nil
	}

	previous := ev.EventExternalCheckinURL
	for attempt := 0; attempt < enableAttempts; attempt++ {
		url, err := s.NewURL()
		if err != nil {
			return nil, err
		}
		if previous != nil && *previous == url {
			continue
		}
		pin, err := s.NewPIN()
		if err != nil {
			return nil, err
		}

		err = s.Repo.Enable(ctx, ev.EventID, url, pin)
		if helper.IsDuplicateKey(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		ev.EventExternalCheckinEnabled = true
		ev.EventExternalCheckinURL = &url
		ev.EventExternalCheckinPIN = &pin
		full := s.FullURL(url)
		return &ToggleResult{Event: ev, ExternalURL: &full}, nil
	}
	return nil, ErrTokenExhausted
}

func (s *ExternalCheckinService) AdminRead(ctx context.Context, churchID, eventID uuid.UUID) (*AdminView, error) {
	ev, err := s.ownedEvent(ctx, churchID, eventID)
	if err != nil {
		return nil, err
	}
	out := &AdminView{
		Enabled: ev.EventExternalCheckinEnabled,
		URL:     ev.EventExternalCheckinURL,
		PIN:     ev.EventExternalCheckinPIN,
	}
	if ev.EventExternalCheckinEnabled && ev.EventExternalCheckinURL != nil {
		full := s.FullURL(*ev.EventExternalCheckinURL)
		out.FullURL = &full
	}
	return out, nil
}

type PublicEventInfo struct {
	EventID          uuid.UUID `json:"eventId"`
	EventName        string    `json:"eventName"`
	EventType        string    `json:"eventType"`
	Location         *string   `json:"location"`
	ChurchName       string    `json:"churchName"`
	ChurchBrandColor string    `json:"churchBrandColor"`
	ChurchLogoURL    *string   `json:"churchLogoUrl,omitempty"`
	RequiresPIN      bool      `json:"requiresPin"`
}

// public resolves a link token; missing, disabled and inactive look the same.
func (s *ExternalCheckinService) public(ctx context.Context, url string) (*repository.PublicEvent, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrLinkNotFound
	}
	pe, err := s.Repo.FindPublicByURL(ctx, url)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	return pe, err
}

func (s *ExternalCheckinService) Lookup(ctx context.Context, url string) (*PublicEventInfo, error) {
	pe, err := s.public(ctx, url)
	if err != nil {
		return nil, err
	}
	return &PublicEventInfo{
		EventID:          pe.EventID,
		EventName:        pe.EventName,
		EventType:        pe.EventType,
		Location:         pe.EventLocation,
		ChurchName:       pe.ChurchName,
		ChurchBrandColor: pe.ChurchBrandColor,
		ChurchLogoURL:    pe.ChurchLogoURL,
		RequiresPIN:      true,
	}, nil
}

type SubmitResult struct {
	Name        string
	CheckInTime time.Time
}

// Submit authenticates (url, pin) as one predicate and records an external
// check-in. Wrong PIN, wrong URL and disabled link are indistinguishable.
func (s *ExternalCheckinService) Submit(ctx context.Context, url, pin string, memberID uuid.UUID) (*SubmitResult, error) {
	if len(pin) != helper.ExternalPINLength {
		return nil, ErrPINLength
	}
	url = strings.TrimSpace(url)
	if url == "" || !helper.IsNumericPIN(pin) {
		return nil, ErrInvalidCredentials
	}
	if memberID == uuid.Nil {
		return nil, ErrMemberRequired
	}

	pe, err := s.Repo.FindPublicByURLAndPIN(ctx, url, pin)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	mid := memberID
	res, err := s.CheckIn.Record(ctx, attService.CheckInInput{
		ChurchID: pe.EventChurchID,
		EventID:  pe.EventID,
		MemberID: &mid,
		Method:   attModel.MethodExternal,
		Location: dbtime.LoadLocation(pe.ChurchTimezone),
	})
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		Name:        res.SubjectName,
		CheckInTime: dbtime.ToChurchTime(res.Record.AttendanceCheckInTime, dbtime.LoadLocation(pe.ChurchTimezone)),
	}, nil
}

type PublicChild struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	Surname   string    `json:"surname"`
}

// PublicMember omits contact details: the page is reachable by anyone with the link.
type PublicMember struct {
	ID        uuid.UUID     `json:"id"`
	FirstName string        `json:"firstName"`
	Surname   string        `json:"surname"`
	Children  []PublicChild `json:"children"`
}

// Members lists the link's church members with their children. The church is
// always derived from the link token.
func (s *ExternalCheckinService) Members(ctx context.Context, url, search string) ([]PublicMember, error) {
	pe, err := s.public(ctx, url)
	if err != nil {
		return nil, err
	}
	matched, err := s.Repo.SearchMembers(ctx, pe.EventChurchID, search, memberSearchLimit)
	if err != nil {
		return nil, err
	}
	parentIDs := make([]uuid.UUID, 0, len(matched))
	for _, m := range matched {
		parentIDs = append(parentIDs, m.MemberID)
	}
	children, err := s.Repo.ListChildren(ctx, pe.EventChurchID, parentIDs)
	if err != nil {
		return nil, err
	}
	return buildPublicMembers(matched, children), nil
}

func buildPublicMembers(matched, children []memberModel.MemberModel) []PublicMember {
	byParent := map[uuid.UUID][]PublicChild{}
	for _, ch := range children {
		if ch.MemberParentID == nil {
			continue
		}
		byParent[*ch.MemberParentID] = append(byParent[*ch.MemberParentID], PublicChild{
			ID: ch.MemberID, FirstName: ch.MemberFirstName, Surname: ch.MemberSurname,
		})
	}
	out := make([]PublicMember, 0, len(matched))
	for _, m := range matched {
		kids := byParent[m.MemberID]
		if kids == nil {
			kids = []PublicChild{}
		}
		out = append(out, PublicMember{ID: m.MemberID, FirstName: m.MemberFirstName, Surname: m.MemberSurname, Children: kids})
	}
	return out
}
