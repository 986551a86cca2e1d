package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gym_booking/account"
	"gym_booking/booking"
	"gym_booking/database"
	"gym_booking/handler"
	"gym_booking/helper"
	"gym_booking/locker"
	"gym_booking/model"
	"gym_booking/notify"
	"gym_booking/router"
	"gym_booking/session"
	"gym_booking/trainer"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
)

const secret = "test-secret"

var now = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	app    *fiber.App
	store  *database.Store
	tokens map[string]string
	actors map[string]model.Actor
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := database.NewStore(db)
	clock := clockwork.NewFakeClockAt(now)
	hub := notify.NewHub()
	l := locker.NewLocal()
	h := &handler.Handler{
		Bookings: booking.NewController(store, l, hub, clock, time.Second),
		Sessions: session.NewManager(store, l, hub, clock, time.Second),
		Trainers: trainer.NewDirectory(store),
		Accounts: account.NewService(store),
		Hub:      hub,
	}
	app := fiber.New()
	router.SetupRoutes(app, h, secret)

	srv := &testServer{app: app, store: store, tokens: map[string]string{}, actors: map[string]model.Actor{}}
	for name, role := range map[string]model.Role{"admin": model.RoleAdmin, "coach": model.RoleTrainer, "jane": model.RoleCustomer, "bob": model.RoleCustomer} {
		a := &model.Account{Username: name, Email: name + "@gym.test", Role: role}
		if err := store.CreateAccount(context.Background(), a); err != nil {
			t.Fatalf("create account: %v", err)
		}
		actor := model.Actor{ID: a.ID, Role: role}
		token, err := helper.GenerateAccessToken(secret, actor, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		srv.tokens[name] = token
		srv.actors[name] = actor
	}
	return srv
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	KeyError string          `json:"keyError"`
}

func (s *testServer) do(t *testing.T, method, path, as string, body any) (int, envelope, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, raw
}

func (s *testServer) createSession(t *testing.T, title string, capacity int) uint {
	t.Helper()
	status, env, raw := s.do(t, "POST", "/api/v1/sessions/", "coach", map[string]any{
		"title":     title,
		"startTime": now.Add(time.Hour),
		"endTime":   now.Add(2 * time.Hour),
		"capacity":  capacity,
	})
	if status != http.StatusCreated {
		t.Fatalf("create session: %d %s", status, raw)
	}
	var created model.SessionResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return created.ID
}

func TestReservationFlow(t *testing.T) {
	s := newServer(t)
	sessionID := s.createSession(t, "Lunch Spin", 1)

	if status, _, _ := s.do(t, "POST", "/api/v1/reservations/", "", map[string]any{"sessionId": sessionID}); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, env, raw := s.do(t, "POST", "/api/v1/reservations/", "jane", map[string]any{"sessionId": sessionID, "note": "hi"})
	if status != http.StatusCreated {
		t.Fatalf("book: %d %s", status, raw)
	}
	var r model.Reservation
	if err := json.Unmarshal(env.Data, &r); err != nil || !strings.HasPrefix(r.Code, "RSV-") {
		t.Fatalf("unexpected reservation %s (%v)", env.Data, err)
	}

	tests := []struct {
		name     string
		as       string
		body     map[string]any
		status   int
		keyError string
	}{
		{name: "duplicate", as: "jane", body: map[string]any{"sessionId": sessionID}, status: 409, keyError: "DUPLICATE_BOOKING"},
		{name: "full", as: "bob", body: map[string]any{"sessionId": sessionID}, status: 409, keyError: "CAPACITY_EXCEEDED"},
		{name: "staff cannot book", as: "coach", body: map[string]any{"sessionId": sessionID}, status: 403, keyError: "FORBIDDEN"},
		{name: "missing session", as: "bob", body: map[string]any{"sessionId": 4242}, status: 404, keyError: "NOT_FOUND"},
		{name: "note too long", as: "bob", body: map[string]any{"sessionId": sessionID, "note": strings.Repeat("n", 256)}, status: 400, keyError: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env, raw := s.do(t, "POST", "/api/v1/reservations/", tt.as, tt.body)
			if status != tt.status || env.KeyError != tt.keyError {
				t.Fatalf("got %d %s", status, raw)
			}
		})
	}

	qrPath := fmt.Sprintf("/api/v1/reservations/%d/qr", r.ID)
	req := httptest.NewRequest("GET", qrPath, nil)
	req.Header.Set("Authorization", "Bearer "+s.tokens["jane"])
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qr: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if status, env, _ := s.do(t, "GET", qrPath, "bob", nil); status != 403 || env.KeyError != "FORBIDDEN" {
		t.Fatalf("another customer must not read the QR, got %d", status)
	}
	if status, env, raw := s.do(t, "GET", qrPath+"?size=100000", "jane", nil); status != 400 || env.KeyError != "VALIDATION_ERROR" {
		t.Fatalf("oversized QR must be rejected, got %d %s", status, raw)
	}

	status, env, _ = s.do(t, "GET", "/api/v1/reservations/", "admin", nil)
	var rows []model.ReservationResponse
	if status != 200 || json.Unmarshal(env.Data, &rows) != nil || len(rows) != 1 || rows[0].Username != "jane" {
		t.Fatalf("admin listing: %d %s", status, env.Data)
	}

	delPath := fmt.Sprintf("/api/v1/reservations/%d", r.ID)
	if status, _, _ := s.do(t, "DELETE", delPath, "bob", nil); status != 403 {
		t.Fatalf("expected 403 for foreign cancel, got %d", status)
	}
	if status, _, raw := s.do(t, "DELETE", delPath, "jane", nil); status != 200 {
		t.Fatalf("owner cancel: %d %s", status, raw)
	}
	if status, _, _ := s.do(t, "DELETE", delPath, "jane", nil); status != 404 {
		t.Fatalf("expected 404 after cancel, got %d", status)
	}
}

func TestSessionRoutes(t *testing.T) {
	s := newServer(t)
	id := s.createSession(t, "Sunrise Yoga", 12)

	status, _, _ := s.do(t, "POST", "/api/v1/sessions/", "jane", map[string]any{
		"title": "Sneaky", "startTime": now.Add(time.Hour), "endTime": now.Add(2 * time.Hour), "capacity": 5,
	})
	if status != http.StatusForbidden {
		t.Fatalf("customer created a session: %d", status)
	}

	status, _, raw := s.do(t, "POST", "/api/v1/sessions/", "coach", map[string]any{
		"title": "Backwards", "startTime": now.Add(2 * time.Hour), "endTime": now.Add(time.Hour), "capacity": 5,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d %s", status, raw)
	}

	status, env, _ := s.do(t, "GET", "/api/v1/sessions/?limit=10&page=1", "", nil)
	var page struct {
		Rows       []model.SessionResponse `json:"rows"`
		TotalCount int64                   `json:"totalCount"`
	}
	if status != 200 || json.Unmarshal(env.Data, &page) != nil || page.TotalCount != 1 || page.Rows[0].Available != 12 {
		t.Fatalf("list: %d %s", status, env.Data)
	}

	if status, _, _ := s.do(t, "GET", "/api/v1/sessions/upcoming", "", nil); status != 200 {
		t.Fatalf("upcoming: %d", status)
	}
	if status, _, _ := s.do(t, "GET", "/api/v1/sessions/abc", "", nil); status != 400 {
		t.Fatalf("expected 400 for non-numeric id, got %d", status)
	}

	path := fmt.Sprintf("/api/v1/sessions/%d", id)
	status, env, raw = s.do(t, "PUT", path, "coach", map[string]any{"capacity": 20})
	var updated model.SessionResponse
	if status != 200 || json.Unmarshal(env.Data, &updated) != nil || updated.Capacity != 20 {
		t.Fatalf("update: %d %s", status, raw)
	}

	if status, _, _ := s.do(t, "DELETE", path, "coach", nil); status != 200 {
		t.Fatalf("delete: %d", status)
	}
	if status, env, _ := s.do(t, "GET", path, "", nil); status != 404 || env.KeyError != "NOT_FOUND" {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestAccountRoutes(t *testing.T) {
	s := newServer(t)
	admin := s.actors["admin"]
	jane := s.actors["jane"]

	status, env, _ := s.do(t, "PATCH", fmt.Sprintf("/api/v1/accounts/%d/role", admin.ID), "admin", map[string]any{"role": "customer"})
	if status != 403 || env.KeyError != "LOCKOUT_PROTECTION" {
		t.Fatalf("self demotion: %d %+v", status, env)
	}

	status, _, raw := s.do(t, "PATCH", fmt.Sprintf("/api/v1/accounts/%d/role", jane.ID), "admin", map[string]any{"role": "trainer"})
	if status != 200 {
		t.Fatalf("promote: %d %s", status, raw)
	}

	if status, _, _ := s.do(t, "PATCH", fmt.Sprintf("/api/v1/accounts/%d/role", jane.ID), "admin", map[string]any{"role": "owner"}); status != 400 {
		t.Fatalf("expected 400 for unknown role, got %d", status)
	}
	if status, _, _ := s.do(t, "GET", "/api/v1/accounts/", "bob", nil); status != 403 {
		t.Fatalf("customer listed accounts: %d", status)
	}
	if status, _, _ := s.do(t, "GET", "/api/v1/accounts/", "admin", nil); status != 200 {
		t.Fatalf("admin list accounts: %d", status)
	}
}

func TestTrainerRoutes(t *testing.T) {
	s := newServer(t)

	status, env, raw := s.do(t, "POST", "/api/v1/trainers/", "admin", map[string]any{"name": "Ana", "specialization": "Pilates"})
	if status != 201 {
		t.Fatalf("create trainer: %d %s", status, raw)
	}
	var created model.Trainer
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status, _, _ := s.do(t, "POST", "/api/v1/trainers/", "coach", map[string]any{"name": "Bo", "specialization": "Boxing"}); status != 403 {
		t.Fatalf("trainer created a trainer: %d", status)
	}
	if status, _, _ := s.do(t, "GET", "/api/v1/trainers/", "", nil); status != 200 {
		t.Fatalf("list trainers: %d", status)
	}
	trainerPath := fmt.Sprintf("/api/v1/trainers/%d", created.ID)
	if status, _, _ := s.do(t, "PUT", trainerPath, "coach", map[string]any{"name": "Ana Maria"}); status != 403 {
		t.Fatalf("trainer edited a trainer: %d", status)
	}
	status, env, raw = s.do(t, "PUT", trainerPath, "admin", map[string]any{"name": "Ana Maria"})
	var edited model.Trainer
	if status != 200 || json.Unmarshal(env.Data, &edited) != nil || edited.Name != "Ana Maria" || edited.Specialization != "Pilates" {
		t.Fatalf("update trainer: %d %s", status, raw)
	}
	if status, env, _ := s.do(t, "PUT", "/api/v1/trainers/999", "admin", map[string]any{"name": "Nobody"}); status != 404 || env.KeyError != "NOT_FOUND" {
		t.Fatalf("expected 404 for missing trainer, got %d", status)
	}
	if status, _, _ := s.do(t, "DELETE", trainerPath, "admin", nil); status != 200 {
		t.Fatalf("delete trainer: %d", status)
	}
}

func TestProfileRoutes(t *testing.T) {
	s := newServer(t)

	if status, _, _ := s.do(t, "GET", "/api/v1/profile/", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, env, raw := s.do(t, "PUT", "/api/v1/profile/", "jane", map[string]any{"username": "jane_d", "firstName": "Jane", "lastName": "Doe"})
	if status != 200 {
		t.Fatalf("update profile: %d %s", status, raw)
	}

	status, env, raw = s.do(t, "GET", "/api/v1/profile/", "jane", nil)
	var profile model.Account
	if status != 200 || json.Unmarshal(env.Data, &profile) != nil || profile.Username != "jane_d" || profile.LastName != "Doe" {
		t.Fatalf("profile: %d %s", status, raw)
	}

	status, env, _ = s.do(t, "PUT", "/api/v1/profile/", "jane", map[string]any{"username": "bob", "firstName": "Jane", "lastName": "Doe"})
	if status != 400 || env.KeyError != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 for taken username, got %d", status)
	}
	if status, _, _ := s.do(t, "PUT", "/api/v1/profile/", "jane", map[string]any{"username": "jane_d"}); status != 400 {
		t.Fatalf("expected 400 without names, got %d", status)
	}
}

func TestSessionAvailabilityStream(t *testing.T) {
	s := newServer(t)
	id := s.createSession(t, "Evening Spin", 4)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.app.Listener(ln)
	t.Cleanup(func() { _ = s.app.Shutdown() })
	base := "ws://" + ln.Addr().String() + "/api/v1/sessions/"

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s%d/ws", base, id), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot model.SessionResponse
	if err := conn.ReadJSON(&snapshot); err != nil || snapshot.ID != id || snapshot.Available != 4 {
		t.Fatalf("snapshot: %+v %v", snapshot, err)
	}

	if status, _, raw := s.do(t, "POST", "/api/v1/reservations/", "jane", map[string]any{"sessionId": id}); status != http.StatusCreated {
		t.Fatalf("book: %d %s", status, raw)
	}
	var ev notify.Event
	if err := conn.ReadJSON(&ev); err != nil || ev.Type != notify.EventBooked || ev.Booked != 1 {
		t.Fatalf("event: %+v %v", ev, err)
	}

	missing, _, err := websocket.DefaultDialer.Dial(base+"4242/ws", nil)
	if err != nil {
		t.Fatalf("dial missing: %v", err)
	}
	defer missing.Close()
	missing.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	if err := missing.ReadJSON(&msg); err != nil || msg["error"] == "" {
		t.Fatalf("expected an error message for a missing session, got %v %v", msg, err)
	}
}
