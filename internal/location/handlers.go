package location

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

func RegisterRoutes(r fiber.Router, tracker *Tracker, authMiddleware fiber.Handler, defaultRadiusM float64) {
	if defaultRadiusM == 0 {
		defaultRadiusM = DefaultRadiusM
	}

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req struct {
			Location Location `json:"location"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rec := tracker.Report(p, req.Location)
		return c.JSON(fiber.Map{"message": "Location updated", "location": rec})
	})

	r.Get("/nearby", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}

		lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "latitude required")
		}
		lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "longitude required")
		}

		radius := defaultRadiusM
		if raw := c.Query("radius"); raw != "" {
			radius, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid radius")
			}
		}

		users := tracker.Nearby(p.ID, lat, lng, radius)
		return c.JSON(fiber.Map{"users": users})
	})
}
