package handler

import (
	"gym_booking/constants"
	"gym_booking/middleware"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetAccounts(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	pagination, ok := c.Locals(constants.LOCALS_INPUT).(model.Pagination)
	if !ok {
		return badLocals(c)
	}
	accounts, total, err := h.Accounts.List(c.UserContext(), actor, pagination)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       accounts,
		Limit:      pagination.Limit,
		Page:       pagination.Page,
		TotalCount: total,
	})
}

func (h *Handler) ChangeRole(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.ChangeRoleInput)
	if !ok {
		return badLocals(c)
	}
	account, err := h.Accounts.ChangeRole(c.UserContext(), actor, id, input.Role)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, account)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	profile, err := h.Accounts.Profile(c.UserContext(), actor)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.UpdateProfileInput)
	if !ok {
		return badLocals(c)
	}
	profile, err := h.Accounts.UpdateProfile(c.UserContext(), actor, input)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, profile)
}
