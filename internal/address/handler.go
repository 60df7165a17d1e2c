package address

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/addresses", h.list)
	app.Post("/api/addresses", h.create)
	app.Put("/api/addresses/:id<[0-9]+>", h.update)
	app.Delete("/api/addresses/:id<[0-9]+>", h.delete)
	app.Put("/api/addresses/:id<[0-9]+>/default", h.setDefault)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	addresses, err := h.service.List(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(addresses)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(WriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	a, err := h.service.Create(userID, *payload)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) update(c *fiber.Ctx) error {
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid address id")
	}

	payload := new(WriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	a, err := h.service.Update(userID, addressID, *payload)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid address id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	if err := h.service.Delete(userID, addressID); err != nil {
		return h.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) setDefault(c *fiber.Ctx) error {
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid address id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	a, err := h.service.SetDefault(userID, addressID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httperr.NotFound(c, "address not found")
	case errors.Is(err, ErrAccessDenied):
		return httperr.Forbidden(c, "address does not belong to user")
	default:
		return httperr.BadRequest(c, err.Error())
	}
}
