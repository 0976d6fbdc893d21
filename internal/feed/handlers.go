package feed

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var input CreateInput
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		post, err := store.CreatePost(p, input)
		if err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post created", "post": post})
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"posts": store.ListAll()})
	})

	// The nearby-posts refresh endpoint. It intentionally returns every
	// post regardless of the userIds filter so comments and replies stay
	// visible across users.
	r.Get("/users", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"posts": store.ListAll()})
	})

	r.Post("/:postId/comments", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		comment, err := store.AddComment(c.Params("postId"), p, req.Text)
		if err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Comment added", "comment": comment})
	})

	r.Get("/:postId/comments", func(c *fiber.Ctx) error {
		comments, err := store.GetComments(c.Params("postId"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{"comments": comments})
	})

	r.Post("/:postId/replies", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		reply, err := store.CreateReply(c.Params("postId"), p, req.Text)
		if err != nil {
			return storeError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Reply created as new post", "post": reply})
	})

	r.Post("/:postId/like", authMiddleware, func(c *fiber.Ctx) error {
		p, ok := identity.FromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing identity")
		}
		var req struct {
			Action string `json:"action"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := store.ToggleLike(c.Params("postId"), p.ID, req.Action)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{
			"message": "Post " + req.Action + "d successfully",
			"likes":   result.LikeCount,
			"isLiked": result.IsLiked,
		})
	})

	r.Get("/:postId/thread", authMiddleware, func(c *fiber.Ctx) error {
		thread, err := store.GetThread(c.Params("postId"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(thread)
	})

	r.Get("/user/:userId/latest", authMiddleware, func(c *fiber.Ctx) error {
		post, ok := store.LatestByUser(c.Params("userId"))
		if !ok {
			return c.JSON(fiber.Map{"latestPost": nil})
		}
		return c.JSON(fiber.Map{"latestPost": post})
	})
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
