package handler

import (
	"gym_booking/constants"
	"gym_booking/middleware"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetSessions(c *fiber.Ctx) error {
	filter, ok := c.Locals(constants.LOCALS_INPUT).(model.FilterSessionInput)
	if !ok {
		return badLocals(c)
	}
	rows, total, err := h.Sessions.List(c.UserContext(), filter)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       rows,
		Limit:      filter.Limit,
		Page:       filter.Page,
		TotalCount: total,
	})
}

func (h *Handler) GetUpcomingSessions(c *fiber.Ctx) error {
	rows, err := h.Sessions.Upcoming(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

func (h *Handler) GetSessionById(c *fiber.Ctx) error {
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	s, err := h.Sessions.Get(c.UserContext(), id)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, s)
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.CreateSessionInput)
	if !ok {
		return badLocals(c)
	}
	s, err := h.Sessions.Create(c.UserContext(), actor, input)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, s)
}

func (h *Handler) UpdateSession(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.UpdateSessionInput)
	if !ok {
		return badLocals(c)
	}
	s, err := h.Sessions.Update(c.UserContext(), actor, id, input)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, s)
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	if err := h.Sessions.Delete(c.UserContext(), actor, id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": id})
}
