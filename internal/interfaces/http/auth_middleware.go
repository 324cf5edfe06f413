package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/pkg/jwt"
)

// Locals keys para el actor autenticado en Fiber.
const (
	LocalActorID     = "actor_id"
	LocalPermissions = "permissions"
)

// AuthMiddleware valida el Bearer Token JWT y deja el actor y sus permisos
// en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		actorID, permissions, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActorID, actorID)
		c.Locals(LocalPermissions, permissions)
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth).
// Un actor con ID vacío significa petición sin autenticar.
func GetActor(c *fiber.Ctx) entity.Actor {
	actor := entity.Actor{}
	if v, ok := c.Locals(LocalActorID).(string); ok {
		actor.ID = v
	}
	if v, ok := c.Locals(LocalPermissions).([]string); ok {
		actor.Permissions = v
	}
	return actor
}

// RequirePermission corta con 403 si el actor no tiene el permiso indicado.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetActor(c).Has(permission) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso insuficiente"})
		}
		return c.Next()
	}
}
