package review

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

type Handler struct {
	service ServiceInterface
	users   user.ServiceInterface
}

func NewHandler(s ServiceInterface, users user.ServiceInterface) *Handler {
	return &Handler{service: s, users: users}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products/:productId<[0-9]+>/reviews", h.listByProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/reviews", h.create)
	app.Put("/api/reviews/:id<[0-9]+>", h.update)
	app.Delete("/api/reviews/:id<[0-9]+>", h.delete)
}

func (h *Handler) listByProduct(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "10"))

	reviews, total, err := h.service.ListByProduct(productID, page, size)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(fiber.Map{
		"reviews": reviews,
		"page":    page,
		"size":    size,
		"total":   total,
	})
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(WriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if payload.ProductID <= 0 {
		return httperr.BadRequest(c, "invalid productId")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	u, err := h.users.GetByID(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}

	rev, err := h.service.Create(userID, u.FirstName+" "+u.LastName, *payload)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rev)
}

func (h *Handler) update(c *fiber.Ctx) error {
	reviewID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid review id")
	}

	payload := new(WriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	rev, err := h.service.Update(userID, reviewID, *payload)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(rev)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	reviewID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid review id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	if err := h.service.Delete(userID, reviewID); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httperr.NotFound(c, "review not found")
	case errors.Is(err, ErrAlreadyExists):
		return httperr.Conflict(c, "you already reviewed this product")
	case errors.Is(err, ErrInvalidRating):
		return httperr.BadRequest(c, err.Error())
	case errors.Is(err, ErrAccessDenied):
		return httperr.Forbidden(c, "review does not belong to user")
	default:
		return httperr.Internal(c, err)
	}
}
