package middleware

import (
	"errors"
	"strings"

	"gym_booking/constants"
	"gym_booking/helper"
	"gym_booking/model"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) string {
	token := c.Cookies("access_token")
	if token == "" {
		// check header Authorization: Bearer xxx
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return token
}

// Protected resolves the actor from the bearer token and rejects the request
// when there is none.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, errors.New("no token"))
		}

		actor, err := helper.ParseActor(secret, token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, err)
		}

		c.Locals(constants.LOCALS_ACTOR, actor)
		return c.Next()
	}
}

// Actor returns the actor stored by Protected.
func Actor(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(constants.LOCALS_ACTOR).(model.Actor)
	return actor, ok
}
