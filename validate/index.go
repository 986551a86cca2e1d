package validate

import (
	"errors"
	"fmt"
	"strconv"

	"gym_booking/constants"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		valueKey, err := strconv.ParseUint(c.Params(key), 10, 64)
		if err != nil || valueKey == 0 {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"), key)
		}

		c.Locals(constants.LOCALS_INPUTID, uint(valueKey))
		return c.Next()
	}
}

// body parses the request into T, validates it and stores it in Locals.
func body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input T
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, constants.ERROR_INPUT, fmt.Errorf("invalid input %s", err.Error()), "VALIDATION_ERROR")
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err, "VALIDATION_ERROR")
		}
		c.Locals(constants.LOCALS_INPUT, input)
		return c.Next()
	}
}

func CreateSession() fiber.Handler {
	return body[model.CreateSessionInput]()
}

func UpdateSession() fiber.Handler {
	return body[model.UpdateSessionInput]()
}

func CreateReservation() fiber.Handler {
	return body[model.CreateReservationInput]()
}

func ChangeRole() fiber.Handler {
	return body[model.ChangeRoleInput]()
}

func CreateTrainer() fiber.Handler {
	return body[model.CreateTrainerInput]()
}

func UpdateTrainer() fiber.Handler {
	return body[model.UpdateTrainerInput]()
}

func UpdateProfile() fiber.Handler {
	return body[model.UpdateProfileInput]()
}

func FilterSessions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter model.FilterSessionInput
		if err := c.QueryParser(&filter); err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err, "VALIDATION_ERROR")
		}
		c.Locals(constants.LOCALS_INPUT, filter)
		return c.Next()
	}
}

func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.Pagination
		if err := c.QueryParser(&p); err != nil {
			return utils.ErrorResponseHaveKey(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err, "VALIDATION_ERROR")
		}
		c.Locals(constants.LOCALS_INPUT, p)
		return c.Next()
	}
}
