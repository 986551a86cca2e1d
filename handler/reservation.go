package handler

import (
	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/middleware"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateReservation(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.CreateReservationInput)
	if !ok {
		return badLocals(c)
	}
	r, err := h.Bookings.AttemptBooking(c.UserContext(), actor, input.SessionId, input.Note)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, r)
}

func (h *Handler) GetReservations(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	reservations, err := h.Bookings.ListReservations(c.UserContext(), actor)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	rows := make([]model.ReservationResponse, len(reservations))
	for i, r := range reservations {
		rows[i] = model.NewReservationResponse(r)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

func (h *Handler) DeleteReservation(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	if err := h.Bookings.CancelBooking(c.UserContext(), actor, id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": id})
}

// GetReservationQR returns the check-in QR code as a PNG.
func (h *Handler) GetReservationQR(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	size := c.QueryInt("size", utils.DefaultQRSize)
	if size > utils.MaxQRSize {
		return utils.AppErrorResponse(c, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, utils.ErrQRSize))
	}
	r, err := h.Bookings.GetReservation(c.UserContext(), actor, id)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	png, err := utils.GenerateQRCode(utils.ReservationQRContent(r.Code, r.SessionId), size)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
