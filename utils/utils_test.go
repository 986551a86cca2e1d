package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gym_booking/apperror"
	"gym_booking/model"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/gomail.v2"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindValidation, 400},
		{apperror.KindNotFound, 404},
		{apperror.KindDuplicateBooking, 409},
		{apperror.KindCapacityExceeded, 409},
		{apperror.KindExpired, 422},
		{apperror.KindForbidden, 403},
		{apperror.KindLockoutProtection, 403},
		{apperror.KindInfrastructure, 500},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.kind); got != tt.want {
			t.Errorf("StatusOf(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestAppErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/full", func(c *fiber.Ctx) error {
		return AppErrorResponse(c, apperror.CapacityExceeded("Session is fully booked"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return AppErrorResponse(c, errors.New("dial tcp: connection refused"))
	})

	tests := []struct {
		path       string
		status     int
		keyError   string
		message    string
		hiddenText string
	}{
		{path: "/full", status: 409, keyError: "CAPACITY_EXCEEDED", message: "Session is fully booked"},
		{path: "/boom", status: 500, keyError: "INFRASTRUCTURE_ERROR", message: "Internal server error", hiddenText: "connection refused"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", tt.path, err)
		}
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: status %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["keyError"] != tt.keyError || body["message"] != tt.message {
			t.Fatalf("%s: unexpected body %v", tt.path, body)
		}
		if tt.hiddenText != "" && strings.Contains(body["errors"].(string), tt.hiddenText) {
			t.Fatalf("%s: internal error leaked: %v", tt.path, body)
		}
	}
}

func TestGenerateQRCode(t *testing.T) {
	png, err := GenerateQRCode(ReservationQRContent("RSV-ABCD1234", 4), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
}

func TestGenerateQRCodeRejectsOversize(t *testing.T) {
	if _, err := GenerateQRCode("RSV-ABCD1234", MaxQRSize); err != nil {
		t.Fatalf("max size should render: %v", err)
	}
	if _, err := GenerateQRCode("RSV-ABCD1234", MaxQRSize+1); !errors.Is(err, ErrQRSize) {
		t.Fatalf("expected ErrQRSize, got %v", err)
	}
}

type captureSender struct {
	messages []*gomail.Message
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return nil
}

func TestMailerConfirmation(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailerWithSender("desk@gym.test", sender)
	note := "bringing my own mat"
	start := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

	err := mailer.SendReservationConfirmation(
		model.Account{Username: "jane", Email: "jane@gym.test"},
		model.Session{Title: "Evening Yoga", StartTime: start, EndTime: start.Add(time.Hour)},
		model.Reservation{Code: "RSV-ABCD1234", Note: &note},
	)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if to := msg.GetHeader("To"); len(to) != 1 || to[0] != "jane@gym.test" {
		t.Fatalf("unexpected recipient %v", to)
	}
	if subject := msg.GetHeader("Subject"); len(subject) != 1 || !strings.Contains(subject[0], "RSV-ABCD1234") {
		t.Fatalf("unexpected subject %v", subject)
	}
	var body bytes.Buffer
	if _, err := msg.WriteTo(&body); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body.String(), "Evening Yoga") {
		t.Fatal("body does not mention the session")
	}
}
