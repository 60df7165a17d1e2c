package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/categories", h.listCategories)
	app.Get("/api/categories/:id<[0-9]+>", h.getCategory)
}

func (h *Handler) listCategories(c *fiber.Ctx) error {
	categories, err := h.service.List()
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(categories)
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid category id")
	}

	cat, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return httperr.NotFound(c, "category not found")
		}
		return httperr.Internal(c, err)
	}
	return c.JSON(cat)
}
