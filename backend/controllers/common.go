package controllers

import (
	"errors"

	"habitat/backend/services"
	"habitat/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps core engine errors onto HTTP responses. Validation
// and ownership failures carry their message; storage failures are
// reported generically.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.Error(c, fiber.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotOwner):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	default:
		return utils.InternalServerError(c, "Internal server error")
	}
}
