package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/patcharw/ecommerce-backend/internal/user"
)

// Handler exposes checkout and order history over HTTP.
type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	// static segments before the :id wildcard
	app.Get("/api/orders/recent", h.recent)
	app.Get("/api/orders/statistics", h.statistics)
	app.Get("/api/orders/number/:number", h.getByNumber)
	app.Post("/api/orders", h.createOrder)
	app.Get("/api/orders", h.history)
	app.Get("/api/orders/:id<[0-9]+>", h.getOrder)
	app.Post("/api/orders/:id<[0-9]+>/cancel", h.cancelOrder)
}

// RegisterAdminRoutes mounts the fulfilment operations. They share the
// /api/orders prefix with the user routes, so each carries the admin
// guard explicitly.
func (h *Handler) RegisterAdminRoutes(app *fiber.App, guard fiber.Handler) {
	app.Put("/api/orders/:id<[0-9]+>/status", guard, h.updateStatus)
	app.Put("/api/orders/:id<[0-9]+>/payment-status", guard, h.updatePaymentStatus)
	app.Put("/api/orders/:id<[0-9]+>/tracking", guard, h.setTracking)
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(CreateOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	ord, err := h.service.CreateOrder(userID, *payload)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ord)
}

func (h *Handler) history(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "10"))

	orders, total, err := h.service.History(userID, page, size)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
		"page":   page,
		"size":   size,
		"total":  total,
	})
}

func (h *Handler) recent(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	orders, err := h.service.Recent(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) statistics(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	stats, err := h.service.Statistics(userID)
	if err != nil {
		return httperr.Internal(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	ord, err := h.service.Get(userID, orderID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

func (h *Handler) getByNumber(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	ord, err := h.service.GetByNumber(userID, c.Params("number"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return httperr.Unauthorized(c)
	}

	payload := new(cancelRequest)
	// body is optional on cancel
	_ = c.BodyParser(payload)

	ord, err := h.service.Cancel(userID, orderID, payload.Reason)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	ord, err := h.service.UpdateStatus(orderID, payload.Status)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) updatePaymentStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	payload := new(paymentStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	ord, err := h.service.UpdatePaymentStatus(orderID, payload.PaymentStatus)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

type trackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

func (h *Handler) setTracking(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid order id")
	}

	payload := new(trackingRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if payload.TrackingNumber == "" {
		return httperr.BadRequest(c, "trackingNumber is required")
	}

	ord, err := h.service.SetTracking(orderID, payload.TrackingNumber)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(ord)
}

func (h *Handler) mapError(c *fiber.Ctx, err error) error {
	var (
		validationErr  *ValidationError
		stockErr       *InsufficientStockError
		unavailableErr *ProductUnavailableError
		transitionErr  *InvalidTransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		return httperr.BadRequest(c, validationErr.Error())
	case errors.Is(err, ErrNotFound):
		return httperr.NotFound(c, "order not found")
	case errors.Is(err, ErrAccessDenied):
		return httperr.Forbidden(c, "order does not belong to user")
	case errors.Is(err, ErrEmptyCart):
		return httperr.BadRequest(c, "cart is empty")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidPaymentStatus):
		return httperr.BadRequest(c, err.Error())
	case errors.As(err, &stockErr):
		return httperr.Conflict(c, stockErr.Error())
	case errors.As(err, &unavailableErr):
		return httperr.Conflict(c, unavailableErr.Error())
	case errors.As(err, &transitionErr):
		return httperr.Conflict(c, transitionErr.Error())
	default:
		return httperr.Internal(c, err)
	}
}
