package server

import (
	"errors"
	"wolfhub/espn"
	"wolfhub/upstream"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var invalidSport *espn.InvalidSportError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &invalidSport):
		return fiber.StatusBadRequest
	case upstream.IsNetworkError(err), upstream.IsParseError(err):
		return fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
			"error":  err,
		}).Error("Request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
