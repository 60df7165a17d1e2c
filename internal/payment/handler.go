package payment

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/order"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders/:id<[0-9]+>/pay", h.pay)
	app.Get("/api/orders/:id<[0-9]+>/payment", h.getByOrder)
}

func (h *Handler) pay(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	p, err := h.service.Pay(userID, orderID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) getByOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	p, err := h.service.GetByOrder(userID, orderID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return httperr.NotFound(c, "order not found")
	case errors.Is(err, ErrNotFound):
		return httperr.NotFound(c, "payment not found")
	case errors.Is(err, order.ErrAccessDenied):
		return httperr.Forbidden(c, "order does not belong to user")
	case errors.Is(err, ErrAlreadySettled):
		return httperr.Conflict(c, err.Error())
	default:
		return httperr.Internal(c, err)
	}
}
