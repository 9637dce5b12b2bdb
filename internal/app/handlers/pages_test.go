package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/app/handlers"
	"github.com/linemk/ld-shop/internal/domain/models"
)

func testCatalog() *fakeCatalogService {
	return &fakeCatalogService{products: []*models.Product{
		{ID: 1, Name: "Кружка", Price: decimal.RequireFromString("10.00"), Category: "kitchen", Status: models.ProductActive},
		{ID: 2, Name: "Снятый товар", Price: decimal.RequireFromString("1.00"), Status: models.ProductInactive},
	}}
}

func testOrders() *fakeOrderService {
	return &fakeOrderService{
		orders: []*models.Order{{
			ID:        5,
			UserID:    bob.ID,
			Total:     decimal.RequireFromString("25.00"),
			Status:    models.OrderStatusPending,
			Items:     "Кружка, Футболка",
			CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
		items: []*models.OrderItem{
			{OrderID: 5, ProductID: 1, ProductName: "Кружка", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{OrderID: 5, ProductID: 2, ProductName: "Футболка", Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
	}
}

func TestCatalogHandler(t *testing.T) {
	rd := newTestRenderer(t)
	h := handlers.CatalogHandler(newTestLogger(), rd, testCatalog())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?cat=kitchen&q=%D0%BA", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Кружка")
	assert.Contains(t, rr.Body.String(), "10.00")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestProductHandler(t *testing.T) {
	rd := newTestRenderer(t)
	h := handlers.ProductHandler(newTestLogger(), rd, testCatalog())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/product/1", nil), "id", "1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Кружка")

	for _, id := range []string{"2", "99", "abc"} {
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/product/"+id, nil), "id", id))
		assert.Equal(t, http.StatusSeeOther, rr.Code, id)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	}
}

func TestOrdersHandler(t *testing.T) {
	rd := newTestRenderer(t)
	h := handlers.OrdersHandler(newTestLogger(), rd, testOrders())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/orders", nil), bob))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Кружка, Футболка")
	assert.Contains(t, rr.Body.String(), "25.00")
}

func TestPayPageHandler(t *testing.T) {
	rd := newTestRenderer(t)
	h := handlers.PayPageHandler(newTestLogger(), rd, testOrders(), &fakeCryptoService{intent: testIntent()})

	rr := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/orders/5/pay", nil), "id", "5")
	h.ServeHTTP(rr, asUser(req, bob))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "TRON / USDT")
	assert.Contains(t, rr.Body.String(), "TXyz")

	rr = httptest.NewRecorder()
	req = withURLParam(httptest.NewRequest(http.MethodGet, "/orders/6/pay", nil), "id", "6")
	h.ServeHTTP(rr, asUser(req, bob))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/orders", rr.Header().Get("Location"))
}

func TestReceiptHandler(t *testing.T) {
	h := handlers.ReceiptHandler(newTestLogger(), testOrders())

	rr := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/orders/5/receipt", nil), "id", "5")
	h.ServeHTTP(rr, asUser(req, bob))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = httptest.NewRecorder()
	other := models.Identity{ID: 11, Username: "eve", Role: models.RoleUser}
	h.ServeHTTP(rr, asUser(req, other))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckoutViewHandler_EmptyCart(t *testing.T) {
	rd := newTestRenderer(t)
	rr := httptest.NewRecorder()
	handlers.CheckoutViewHandler(rd, newCartService()).ServeHTTP(rr, asUser(httptest.NewRequest(http.MethodGet, "/checkout", nil), bob))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/cart", rr.Header().Get("Location"))
}
