package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patcharw/ecommerce-backend/internal/httperr"
	"github.com/shopspring/decimal"
)

// Handler delegates catalog operations to the product service.
type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products", h.listProducts)
	app.Get("/api/products/:id<[0-9]+>", h.getProduct)
}

// RegisterAdminRoutes mounts catalog mutations on a router that already
// carries the admin guard.
func (h *Handler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/products", h.createProduct)
	router.Put("/products/:id<[0-9]+>", h.updateProduct)
	router.Delete("/products/:id<[0-9]+>", h.deleteProduct)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	filter := ListFilter{
		CategoryID: c.QueryInt("category", 0),
		Featured:   c.QueryBool("featured", false),
		Search:     c.Query("q"),
		Page:       c.QueryInt("page", 0),
		Size:       c.QueryInt("size", 20),
	}

	products, total, err := h.service.List(filter)
	if err != nil {
		return httperr.Internal(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
		"page":     filter.Page,
		"size":     filter.Size,
	})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	p, err := h.service.Get(id)
	if err != nil {
		if err == ErrNotFound {
			return httperr.NotFound(c, "product not found")
		}
		return httperr.Internal(c, err)
	}

	return c.JSON(p)
}

type productRequest struct {
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	SKU           *string          `json:"sku"`
	Brand         *string          `json:"brand"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         int              `json:"stock"`
	Active        *bool            `json:"active"`
	Featured      bool             `json:"featured"`
	CategoryID    int              `json:"categoryId"`
	Image         *string          `json:"image"`
}

func (r productRequest) toProduct() Product {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return Product{
		Name:          r.Name,
		Slug:          r.Slug,
		SKU:           r.SKU,
		Brand:         r.Brand,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Stock:         r.Stock,
		Active:        active,
		Featured:      r.Featured,
		CategoryID:    r.CategoryID,
		Image:         r.Image,
	}
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if payload.Name == "" || payload.Slug == "" || payload.CategoryID <= 0 {
		return httperr.BadRequest(c, "name, slug and categoryId are required")
	}

	created, err := h.service.Create(payload.toProduct())
	if err != nil {
		switch err {
		case ErrInvalidPrice, ErrNegativeStock:
			return httperr.BadRequest(c, err.Error())
		default:
			return httperr.Internal(c, err)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	updated, err := h.service.Update(id, payload.toProduct())
	if err != nil {
		switch err {
		case ErrNotFound:
			return httperr.NotFound(c, "product not found")
		case ErrInvalidPrice, ErrNegativeStock:
			return httperr.BadRequest(c, err.Error())
		default:
			return httperr.Internal(c, err)
		}
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid product id")
	}

	if err := h.service.Deactivate(id); err != nil {
		if err == ErrNotFound {
			return httperr.NotFound(c, "product not found")
		}
		return httperr.Internal(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
