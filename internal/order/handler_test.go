package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/patcharw/ecommerce-backend/internal/cart"
	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// authAs mimics the jwt middleware by planting a parsed token in locals.
func authAs(userID int, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"user_id": float64(userID),
			"role":    role,
		}})
		return c.Next()
	}
}

func newTestApp(t *testing.T, userID int, seed []product.Product) (*fiber.App, *Service, *cart.InMemoryRepository) {
	t.Helper()
	products := product.NewInMemoryRepository(seed)
	carts := cart.NewInMemoryRepository(products)
	svc := NewService(NewInMemoryRepository(products, carts), carts, nil)

	app := fiber.New()
	app.Use(authAs(userID, "USER"))
	h := NewHandler(svc)
	h.RegisterProtectedRoutes(app)
	h.RegisterAdminRoutes(app, func(c *fiber.Ctx) error { return c.Next() })
	return app, svc, carts
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeOrder(t *testing.T, resp *http.Response) Order {
	t.Helper()
	var ord Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ord))
	return ord
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, _, carts := newTestApp(t, 7, []product.Product{
		{ID: 1, Name: "Plain Tee", Price: decimal.RequireFromString("10.00"), Stock: 5, Active: true},
	})
	_, err := carts.Save(cart.Item{UserID: 7, ProductID: 1, Quantity: 2, PriceAtAddition: decimal.RequireFromString("10.00")})
	require.NoError(t, err)

	resp := doJSON(t, app, fiber.MethodPost, "/api/orders", shippingRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	ord := decodeOrder(t, resp)
	require.Regexp(t, orderNumberPattern, ord.OrderNumber)
	require.Equal(t, StatusPending, ord.Status)
	require.True(t, ord.TotalAmount.Equal(decimal.RequireFromString("20.00")))
}

func TestCreateOrderEndpointEmptyCart(t *testing.T) {
	app, _, _ := newTestApp(t, 7, nil)

	resp := doJSON(t, app, fiber.MethodPost, "/api/orders", shippingRequest())
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetOrderEndpointHidesOtherUsersOrders(t *testing.T) {
	app, svc, carts := newTestApp(t, 10, []product.Product{
		{ID: 1, Name: "Kettle", Price: decimal.RequireFromString("30.00"), Stock: 4, Active: true},
	})
	// order belongs to user 9, the app authenticates as user 10
	ord := placeOrder(t, svc, carts, 9, product.Product{ID: 1}, 1, decimal.RequireFromString("30.00"))

	resp := doJSON(t, app, fiber.MethodGet, "/api/orders/"+itoa(ord.ID), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/orders/number/"+ord.OrderNumber, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCancelOrderEndpoint(t *testing.T) {
	app, svc, carts := newTestApp(t, 9, []product.Product{
		{ID: 1, Name: "Kettle", Price: decimal.RequireFromString("30.00"), Stock: 4, Active: true},
	})
	ord := placeOrder(t, svc, carts, 9, product.Product{ID: 1}, 1, decimal.RequireFromString("30.00"))

	resp := doJSON(t, app, fiber.MethodPost, "/api/orders/"+itoa(ord.ID)+"/cancel", cancelRequest{Reason: "ordered twice"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cancelled := decodeOrder(t, resp)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// a second cancel is a conflict
	resp = doJSON(t, app, fiber.MethodPost, "/api/orders/"+itoa(ord.ID)+"/cancel", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAdminLifecycleEndpoints(t *testing.T) {
	app, svc, carts := newTestApp(t, 9, []product.Product{
		{ID: 1, Name: "Kettle", Price: decimal.RequireFromString("30.00"), Stock: 4, Active: true},
	})
	ord := placeOrder(t, svc, carts, 9, product.Product{ID: 1}, 1, decimal.RequireFromString("30.00"))

	resp := doJSON(t, app, fiber.MethodPut, "/api/orders/"+itoa(ord.ID)+"/payment-status", paymentStatusRequest{PaymentStatus: "PAID"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, StatusConfirmed, decodeOrder(t, resp).Status)

	resp = doJSON(t, app, fiber.MethodPut, "/api/orders/"+itoa(ord.ID)+"/tracking", trackingRequest{TrackingNumber: "TRACK-9"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	shipped := decodeOrder(t, resp)
	require.Equal(t, StatusShipped, shipped.Status)
	require.NotNil(t, shipped.TrackingNumber)

	resp = doJSON(t, app, fiber.MethodPut, "/api/orders/"+itoa(ord.ID)+"/status", statusRequest{Status: "MISPLACED"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEndpoint(t *testing.T) {
	app, svc, carts := newTestApp(t, 9, []product.Product{
		{ID: 1, Name: "Kettle", Price: decimal.RequireFromString("10.00"), Stock: 100, Active: true},
	})
	placeOrder(t, svc, carts, 9, product.Product{ID: 1}, 1, decimal.RequireFromString("10.00"))
	placeOrder(t, svc, carts, 9, product.Product{ID: 1}, 1, decimal.RequireFromString("10.00"))

	resp := doJSON(t, app, fiber.MethodGet, "/api/orders?page=0&size=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page struct {
		Orders []Order `json:"orders"`
		Total  int     `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Orders, 1)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
