package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/polleyhq/polley/pkg/internal/services"
)

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrPollClosed),
		errors.Is(err, services.ErrPollExpired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthRequired):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAlreadyVoted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPollNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
