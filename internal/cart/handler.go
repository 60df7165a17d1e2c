package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/cart", h.getCart)
	app.Get("/api/cart/count", h.getCount)
	app.Get("/api/cart/validate", h.validateCart)
	app.Post("/api/cart/items", h.addItem)
	app.Put("/api/cart/items/:productId<[0-9]+>", h.updateItem)
	app.Delete("/api/cart/items/:productId<[0-9]+>", h.removeItem)
	app.Delete("/api/cart", h.clearCart)
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	crt, err := h.service.GetCart(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(crt)
}

func (h *Handler) getCount(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	n, err := h.service.Count(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *Handler) validateCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	res, err := h.service.Validate(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if payload.ProductID <= 0 {
		return httperr.BadRequest(c, "invalid productId")
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	crt, err := h.service.AddToCart(userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(crt)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	payload := new(updateItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	crt, err := h.service.UpdateItem(userID, productID, payload.Quantity)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(crt)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	crt, err := h.service.RemoveFromCart(userID, productID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(crt)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	if err := h.service.ClearCart(userID); err != nil {
		return httperr.Internal(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, product.ErrNotFound):
		return httperr.NotFound(c, "product not found")
	case errors.Is(err, ErrItemNotFound):
		return httperr.NotFound(c, "cart item not found")
	case errors.Is(err, ErrProductUnavailable):
		return httperr.Conflict(c, "product is not available")
	case errors.Is(err, ErrInvalidQuantity):
		return httperr.BadRequest(c, err.Error())
	case errors.As(err, &stockErr):
		return httperr.Conflict(c, stockErr.Error())
	default:
		return httperr.Internal(c, err)
	}
}
