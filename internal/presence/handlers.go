package presence

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

func RegisterRoutes(r fiber.Router, registry *Registry, authMiddleware fiber.Handler) {
	r.Post("/online", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		rec := registry.MarkOnline(p)
		return c.JSON(fiber.Map{"message": "User is now online", "user": rec})
	})

	r.Post("/offline", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		registry.MarkOffline(p.ID)
		return c.JSON(fiber.Map{"message": "User is now offline"})
	})

	r.Get("/online", authMiddleware, func(c *fiber.Ctx) error {
		users := registry.Online()
		return c.JSON(fiber.Map{"count": len(users), "users": users})
	})
}
