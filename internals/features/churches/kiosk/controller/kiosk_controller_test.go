package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/churches/kiosk/model"
	"gerejaku_backend/internals/features/churches/kiosk/service"
	eventModel "gerejaku_backend/internals/features/events/events/model"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubKioskRepo struct {
	church   churchModel.ChurchModel
	events   []eventModel.EventModel
	sessions map[uuid.UUID]*model.KioskSessionModel
}

func (r *stubKioskRepo) FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	if churchID != r.church.ChurchID {
		return nil, gorm.ErrRecordNotFound
	}
	ch := r.church
	return &ch, nil
}

func (r *stubKioskRepo) ActiveEventIDs(ctx context.Context, churchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, e := range r.events {
		if e.EventIsActive {
			ids = append(ids, e.EventID)
		}
	}
	return ids, nil
}

func (r *stubKioskRepo) ListEvents(ctx context.Context, churchID uuid.UUID, ids []uuid.UUID) ([]eventModel.EventModel, error) {
	return r.events, nil
}

func (r *stubKioskRepo) FindOpen(ctx context.Context, churchID uuid.UUID) (*model.KioskSessionModel, error) {
	for _, s := range r.sessions {
		if s.IsOpen() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubKioskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.KioskSessionModel, error) {
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubKioskRepo) StartReplacing(ctx context.Context, s *model.KioskSessionModel) (*model.KioskSessionModel, error) {
	cp := *s
	r.sessions[s.KioskSessionID] = &cp
	return nil, nil
}

func (r *stubKioskRepo) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	if s, ok := r.sessions[id]; ok {
		s.KioskSessionExpiresAt = expiresAt
	}
	return nil
}

func (r *stubKioskRepo) Close(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	s, ok := r.sessions[id]
	if !ok || !s.IsOpen() {
		return false, nil
	}
	s.KioskSessionEndedAt = &at
	s.KioskSessionEndReason = &reason
	return true, nil
}

func (r *stubKioskRepo) UpdateSettings(ctx context.Context, churchID uuid.UUID, enabled bool, timeout int) error {
	r.church.ChurchKioskModeEnabled = enabled
	r.church.ChurchKioskSessionTimeout = timeout
	return nil
}

func (r *stubKioskRepo) PruneClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newKioskApp(t *testing.T) *fiber.App {
	t.Helper()
	churchID := uuid.New()
	userID := uuid.New()
	repo := &stubKioskRepo{
		church: churchModel.ChurchModel{
			ChurchID: churchID, ChurchName: "Grace Chapel", ChurchTimezone: "UTC",
			ChurchKioskModeEnabled: true, ChurchKioskSessionTimeout: 60,
		},
		events: []eventModel.EventModel{
			{EventID: uuid.New(), EventChurchID: churchID, EventName: "Sunday Service", EventType: "service", EventIsActive: true},
		},
		sessions: map[uuid.UUID]*model.KioskSessionModel{},
	}
	ctrl := &KioskController{
		Svc:       service.NewKioskService(repo, nil, "access-secret", "kiosk-secret", time.Hour),
		Validator: validator.New(),
	}

	app := fiber.New()
	g := app.Group("/churches", func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocUserID, userID)
		c.Locals(helperAuth.LocChurchID, churchID)
		c.Locals(helperAuth.LocRole, "admin")
		return c.Next()
	})
	g.Get("/kiosk-settings", ctrl.GetSettings)
	g.Patch("/kiosk-settings", ctrl.UpdateSettings)
	g.Post("/kiosk-session/start", ctrl.Start)
	g.Post("/kiosk-session/extend", ctrl.Extend)
	g.Post("/kiosk-session/end", ctrl.End)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, out
}

func requireSettingsShape(t *testing.T, label string, body map[string]any) {
	t.Helper()
	for _, k := range []string{"kioskModeEnabled", "kioskSessionTimeout", "activeSession"} {
		if _, ok := body[k]; !ok {
			t.Fatalf("%s: missing top-level %q in %v", label, k, body)
		}
	}
	for _, k := range []string{"data", "success", "kioskSettings"} {
		if _, ok := body[k]; ok {
			t.Fatalf("%s: unexpected envelope key %q in %v", label, k, body)
		}
	}
}

func TestKioskSettingsAreTopLevel(t *testing.T) {
	app := newKioskApp(t)

	status, body := call(t, app, fiber.MethodGet, "/churches/kiosk-settings", "")
	if status != fiber.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	requireSettingsShape(t, "get", body)
	if body["activeSession"] != nil {
		t.Fatalf("no session yet, got %v", body["activeSession"])
	}

	status, body = call(t, app, fiber.MethodPatch, "/churches/kiosk-settings", `{"kioskSessionTimeout":30}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch status = %d (%v)", status, body)
	}
	requireSettingsShape(t, "patch", body)
	if body["kioskSessionTimeout"] != float64(30) {
		t.Fatalf("timeout = %v", body["kioskSessionTimeout"])
	}
}

func TestKioskLifecycleResponses(t *testing.T) {
	app := newKioskApp(t)

	status, body := call(t, app, fiber.MethodPost, "/churches/kiosk-session/start", "")
	if status != fiber.StatusOK {
		t.Fatalf("start status = %d (%v)", status, body)
	}
	requireSettingsShape(t, "start", body)
	for _, k := range []string{"kioskToken", "token"} {
		if s, _ := body[k].(string); s == "" {
			t.Fatalf("start: %q missing", k)
		}
	}
	active, ok := body["activeSession"].(map[string]any)
	if !ok || active["isActive"] != true {
		t.Fatalf("start: activeSession = %v", body["activeSession"])
	}
	if evs, _ := active["availableEvents"].([]any); len(evs) != 1 {
		t.Fatalf("start: availableEvents = %v", active["availableEvents"])
	}

	status, body = call(t, app, fiber.MethodPost, "/churches/kiosk-session/extend", "")
	if status != fiber.StatusOK {
		t.Fatalf("extend status = %d (%v)", status, body)
	}
	requireSettingsShape(t, "extend", body)
	if s, _ := body["kioskToken"].(string); s == "" {
		t.Fatal("extend: kioskToken missing")
	}

	status, body = call(t, app, fiber.MethodGet, "/churches/kiosk-settings", "")
	if status != fiber.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if active, _ := body["activeSession"].(map[string]any); active["isActive"] != true {
		t.Fatalf("get after start: activeSession = %v", body["activeSession"])
	}

	status, body = call(t, app, fiber.MethodPost, "/churches/kiosk-session/end", "")
	if status != fiber.StatusOK {
		t.Fatalf("end status = %d (%v)", status, body)
	}
	requireSettingsShape(t, "end", body)
	if body["activeSession"] != nil {
		t.Fatalf("end: activeSession = %v", body["activeSession"])
	}
}
