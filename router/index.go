package router

import (
	"gym_booking/handler"
	"gym_booking/middleware"
	"gym_booking/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, secret string) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1")
	protected := middleware.Protected(secret)

	sessions := v1.Group("/sessions")
	sessions.Get("/", validate.FilterSessions(), h.GetSessions)
	sessions.Get("/upcoming", h.GetUpcomingSessions)
	sessions.Get("/:sessionId/ws", handler.UpgradeWebSocket, websocket.New(h.SessionAvailability))
	sessions.Get("/:sessionId", validate.GetById("sessionId"), h.GetSessionById)
	sessions.Post("/", protected, validate.CreateSession(), h.CreateSession)
	sessions.Put("/:sessionId", protected, validate.GetById("sessionId"), validate.UpdateSession(), h.UpdateSession)
	sessions.Delete("/:sessionId", protected, validate.GetById("sessionId"), h.DeleteSession)

	trainers := v1.Group("/trainers")
	trainers.Get("/", h.GetTrainers)
	trainers.Post("/", protected, validate.CreateTrainer(), h.CreateTrainer)
	trainers.Put("/:trainerId", protected, validate.GetById("trainerId"), validate.UpdateTrainer(), h.UpdateTrainer)
	trainers.Delete("/:trainerId", protected, validate.GetById("trainerId"), h.DeleteTrainer)

	reservations := v1.Group("/reservations", protected)
	reservations.Post("/", validate.CreateReservation(), h.CreateReservation)
	reservations.Get("/", h.GetReservations)
	reservations.Get("/:reservationId/qr", validate.GetById("reservationId"), h.GetReservationQR)
	reservations.Delete("/:reservationId", validate.GetById("reservationId"), h.DeleteReservation)

	profile := v1.Group("/profile", protected)
	profile.Get("/", h.GetProfile)
	profile.Put("/", validate.UpdateProfile(), h.UpdateProfile)

	accounts := v1.Group("/accounts", protected)
	accounts.Get("/", validate.Pagination(), h.GetAccounts)
	accounts.Patch("/:accountId/role", validate.GetById("accountId"), validate.ChangeRole(), h.ChangeRole)
}
