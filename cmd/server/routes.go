package main

import (
	"crypto/sha256"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rs/cors"

	"github.com/linemk/ld-shop/internal/app/handlers"
	"github.com/linemk/ld-shop/internal/config"
	"github.com/linemk/ld-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/ld-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ld-shop/internal/lib/ratelimit"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
	"github.com/linemk/ld-shop/internal/web"
)

type services struct {
	auth    service.AuthServiceInterface
	catalog service.CatalogService
	cart    service.CartService
	order   service.OrderService
	crypto  service.CryptoService
	admin   service.AdminService
	site    service.SiteService
}

func newRouter(log *slog.Logger, cfg *config.Config, sm *session.Manager, rd *handlers.Renderer, svc services) http.Handler {
	limiter := ratelimit.New(log, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	router := chi.NewRouter()
	// настройка middleware
	router.Use(handlers.SecurityHeaders)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(handlers.IdentityMiddleware(sm))

	router.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	// корзина пополняется из js без перезагрузки страницы
	router.Post("/cart/add", handlers.CartAddHandler(log, sm, svc.cart))

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
		// bearer-токен необязателен: без него работает личность из сессии
		r.Use(jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret))

		r.With(limiter.Middleware).Post("/auth", handlers.AuthHandler(log, svc.auth))

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAPILogin(log))
			r.Post("/crypto/pay", handlers.CryptoPayHandler(log, svc.crypto))
			r.Get("/crypto/status/{order_id}", handlers.CryptoStatusHandler(log, svc.crypto))
			r.Get("/crypto/qr/{order_id}", handlers.CryptoQRHandler(log, svc.crypto))
		})
	})

	// HTML-страницы и квитанция; настройки сайта подгружаются только здесь
	router.Group(func(r chi.Router) {
		r.Use(handlers.SiteMiddleware(log, svc.site))
		if cfg.CSRF.Enabled {
			r.Use(csrf.Protect(csrfKey(cfg),
				csrf.Secure(cfg.Session.CookieSecure),
				csrf.Path("/"),
				csrf.SameSite(csrf.SameSiteLaxMode),
			))
		}

		r.Get("/", handlers.CatalogHandler(log, rd, svc.catalog))
		r.Get("/product/{id}", handlers.ProductHandler(log, rd, svc.catalog))
		r.Get("/cart", handlers.CartViewHandler(rd, svc.cart))
		r.Post("/cart/remove", handlers.CartRemoveHandler(log, sm, svc.cart))

		r.Get("/login", handlers.LoginPageHandler(rd))
		r.With(limiter.Middleware).Post("/login", handlers.LoginHandler(log, rd, svc.auth))
		r.Get("/register", handlers.RegisterPageHandler(rd))
		r.With(limiter.Middleware).Post("/register", handlers.RegisterHandler(log, rd, svc.auth))
		r.Get("/logout", handlers.LogoutHandler(log, sm))

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireLogin)
			r.Get("/checkout", handlers.CheckoutViewHandler(rd, svc.cart))
			r.Post("/checkout", handlers.CheckoutHandler(log, sm, svc.order))
			r.Get("/orders", handlers.OrdersHandler(log, rd, svc.order))
			r.Get("/orders/{id}/pay", handlers.PayPageHandler(log, rd, svc.order, svc.crypto))
			r.Get("/orders/{id}/receipt", handlers.ReceiptHandler(log, svc.order))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.RequireAdmin)
			r.Get("/", handlers.AdminHandler(log, rd, svc.admin))
			r.Post("/products/add", handlers.AdminProductAddHandler(log, sm, svc.admin))
			r.Post("/products/edit", handlers.AdminProductEditHandler(log, sm, svc.admin))
			r.Post("/products/toggle", handlers.AdminProductToggleHandler(log, sm, svc.admin))
			r.Post("/products/delete", handlers.AdminProductDeleteHandler(log, sm, svc.admin))
			r.Post("/orders/status", handlers.AdminOrderStatusHandler(log, sm, svc.admin))
			r.Post("/wallets/add", handlers.AdminWalletAddHandler(log, sm, svc.admin))
			r.Post("/wallets/toggle", handlers.AdminWalletToggleHandler(log, sm, svc.admin))
			r.Post("/wallets/delete", handlers.AdminWalletDeleteHandler(log, sm, svc.admin))
			r.Post("/crypto/confirm", handlers.AdminCryptoConfirmHandler(log, sm, svc.crypto))
			r.Post("/site/save", handlers.AdminSiteSaveHandler(log, sm, svc.site))
		})
	})

	return router
}

// csrfKey - 32 байта; без CSRF_KEY ключ выводится из секрета сессии
func csrfKey(cfg *config.Config) []byte {
	if len(cfg.CSRF.Key) == 32 {
		return []byte(cfg.CSRF.Key)
	}
	sum := sha256.Sum256([]byte("csrf:" + cfg.Session.Secret))
	return sum[:]
}
