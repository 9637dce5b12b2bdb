package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/app/handlers"
	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/lib/identity"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
	"github.com/linemk/ld-shop/internal/web"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSessions() *session.Manager {
	return session.NewManager(newTestLogger(), session.NewCookieStore(3600, false, testKey), "ld_session")
}

func newTestRenderer(t *testing.T) *handlers.Renderer {
	t.Helper()
	templates := web.NewTemplateCache(newTestLogger())
	require.NoError(t, templates.Load())
	return handlers.NewRenderer(newTestLogger(), templates, newTestSessions())
}

// asUser кладет личность в context, как это делает IdentityMiddleware
func asUser(req *http.Request, id models.Identity) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), id))
}

var (
	bob   = models.Identity{ID: 10, Username: "bob", Role: models.RoleUser}
	admin = models.Identity{ID: 1, Username: "admin", Role: models.RoleAdmin}
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// nextRequest переносит cookie из ответа в новый запрос
func nextRequest(rr *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// fakeAuthService - фиктивная реализация для тестирования.
type fakeAuthService struct {
	identity *models.Identity
	token    string
	err      error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	return f.identity, f.err
}

func (f *fakeAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 2, Username: username, Email: email, Role: models.RoleUser}, nil
}

func (f *fakeAuthService) IssueToken(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

type fakeCatalogService struct {
	products []*models.Product
}

func (f *fakeCatalogService) List(ctx context.Context, category, query string) ([]*models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalogService) Categories(ctx context.Context) ([]string, error) {
	return []string{"kitchen"}, nil
}

func (f *fakeCatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id && p.IsActive() {
			return p, nil
		}
	}
	return nil, service.ErrNotFound
}

type fakeOrderService struct {
	orders    []*models.Order
	items     []*models.OrderItem
	checkedID int64
	err       error
}

func (f *fakeOrderService) Checkout(ctx context.Context, userID int64, cart *models.Cart, contact, remark string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if cart.IsEmpty() {
		return 0, service.ErrEmptyCart
	}
	f.checkedID = 77
	cart.Clear()
	return f.checkedID, nil
}

func (f *fakeOrderService) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderService) Get(ctx context.Context, orderID, userID int64) (*models.Order, []*models.OrderItem, error) {
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, f.items, nil
		}
	}
	return nil, nil, service.ErrNotFound
}

type fakeCryptoService struct {
	intent       *models.CryptoPaymentIntent
	err          error
	confirmedID  int64
	confirmedTx  string
	initiatedFor string
}

func (f *fakeCryptoService) Initiate(ctx context.Context, orderID, userID int64, chain, symbol string) (*models.CryptoPaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.initiatedFor = chain + "/" + symbol
	return f.intent, nil
}

func (f *fakeCryptoService) Status(ctx context.Context, orderID, userID int64) (*models.CryptoPaymentIntent, error) {
	return f.intent, f.err
}

func (f *fakeCryptoService) Confirm(ctx context.Context, intentID int64, txHash string) error {
	f.confirmedID, f.confirmedTx = intentID, txHash
	return f.err
}

func (f *fakeCryptoService) Routes(ctx context.Context) ([]*models.Wallet, error) {
	return []*models.Wallet{{ID: 1, Chain: "TRON", Symbol: "USDT", Address: "TAddr", Enabled: true}}, nil
}

func testIntent() *models.CryptoPaymentIntent {
	return &models.CryptoPaymentIntent{
		ID:           3,
		OrderID:      5,
		Chain:        "TRON",
		Symbol:       "USDT",
		Address:      "TXyz",
		Amount:       decimal.RequireFromString("25.00"),
		AmountCrypto: decimal.RequireFromString("25.00"),
		Status:       models.IntentStatusPending,
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}
}

func httpBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
