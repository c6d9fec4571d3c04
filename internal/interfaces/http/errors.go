package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
)

// busyRetryAfterSeconds valor del header Retry-After cuando el almacén está ocupado.
const busyRetryAfterSeconds = "1"

// respondError traduce errores de dominio a la respuesta HTTP correspondiente.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: detail(err, domain.ErrInvalidInput)})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: detail(err, domain.ErrNotFound)})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: detail(err, domain.ErrDuplicate)})
	case errors.Is(err, domain.ErrBusy):
		c.Set(fiber.HeaderRetryAfter, busyRetryAfterSeconds)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: "almacén ocupado, intente de nuevo"})
	case errors.Is(err, domain.ErrIntegrity):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTEGRITY", Message: "violación de integridad del almacén"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// detail quita el prefijo del sentinel para no repetirlo en el mensaje.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
