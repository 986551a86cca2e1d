package utils

import (
	"errors"
	"log"

	"gym_booking/apperror"
	"gym_booking/constants"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"errors":  errMsg,
	})
}

func ErrorResponseHaveKey(c *fiber.Ctx, status int, message string, err error, keyError string) error {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   "error",
		"message":  message,
		"errors":   errMsg,
		"keyError": keyError,
	})
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:        fiber.StatusBadRequest,
	apperror.KindNotFound:          fiber.StatusNotFound,
	apperror.KindDuplicateBooking:  fiber.StatusConflict,
	apperror.KindCapacityExceeded:  fiber.StatusConflict,
	apperror.KindExpired:           fiber.StatusUnprocessableEntity,
	apperror.KindForbidden:         fiber.StatusForbidden,
	apperror.KindLockoutProtection: fiber.StatusForbidden,
	apperror.KindInfrastructure:    fiber.StatusInternalServerError,
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// AppErrorResponse writes err using the status and keyError of its kind.
// Infrastructure details are logged, never returned to the client.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInfrastructure {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return ErrorResponseHaveKey(c, StatusOf(kind), constants.ERROR_INTERNAL_ERROR, nil, kind.Code())
	}

	message := err.Error()
	var cause error
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		cause = appErr.Err
	}
	return ErrorResponseHaveKey(c, StatusOf(kind), message, cause, kind.Code())
}

func ApplyPagination(query *gorm.DB, limit, page *int) *gorm.DB {
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		query = query.Limit(*limit)
		offset := *limit * (*page - 1)
		query = query.Offset(offset)
	}

	return query
}

func Ptr[T any](v T) *T {
	return &v
}
