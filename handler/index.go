package handler

import (
	"errors"

	"gym_booking/account"
	"gym_booking/booking"
	"gym_booking/constants"
	"gym_booking/notify"
	"gym_booking/session"
	"gym_booking/trainer"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Bookings *booking.Controller
	Sessions *session.Manager
	Trainers *trainer.Directory
	Accounts *account.Service
	Hub      *notify.Hub
}

var errLocals = errors.New("PARSE DATA TO LOCALS FAIL")

func unauthorized(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, errors.New("no actor"))
}

func badLocals(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errLocals)
}

func inputId(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(constants.LOCALS_INPUTID).(uint)
	return id, ok
}
