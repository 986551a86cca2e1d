package handler

import (
	"gym_booking/constants"
	"gym_booking/middleware"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetTrainers(c *fiber.Ctx) error {
	trainers, err := h.Trainers.List(c.UserContext())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, trainers)
}

func (h *Handler) CreateTrainer(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.CreateTrainerInput)
	if !ok {
		return badLocals(c)
	}
	t, err := h.Trainers.Create(c.UserContext(), actor, input)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, t)
}

func (h *Handler) UpdateTrainer(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	input, ok := c.Locals(constants.LOCALS_INPUT).(model.UpdateTrainerInput)
	if !ok {
		return badLocals(c)
	}
	t, err := h.Trainers.Update(c.UserContext(), actor, id, input)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, t)
}

func (h *Handler) DeleteTrainer(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := inputId(c)
	if !ok {
		return badLocals(c)
	}
	if err := h.Trainers.Delete(c.UserContext(), actor, id); err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"id": id})
}
