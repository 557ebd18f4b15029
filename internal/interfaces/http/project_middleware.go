package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/domain"
)

// LocalAccessReason motivo por el que se concedió la visibilidad del proyecto.
const LocalAccessReason = "access_reason"

// viewChecker contrato mínimo del middleware; lo implementa *access.Gate.
type viewChecker interface {
	CanViewProjectDeliverables(ctx context.Context, userID, projectID string) (access.Decision, error)
}

// RequireProjectView verifica que el usuario del token vea los entregables del proyecto
// indicado por el parámetro de ruta. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 404 Not Found           → el proyecto no existe.
//   - 403 Forbidden           → sin membresía, columna legacy ni área de trabajo.
//   - 503 Service Unavailable → fallo al consultar el almacenamiento.
func RequireProjectView(param string, checker viewChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "user_id no encontrado en el token"})
		}
		dec, err := checker.CanViewProjectDeliverables(c.UserContext(), userID, c.Params(param))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proyecto no encontrado"})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "no se pudo verificar el acceso, intente más tarde",
			})
		}
		if !dec.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a este proyecto"})
		}
		c.Locals(LocalAccessReason, dec.Reason)
		return c.Next()
	}
}
