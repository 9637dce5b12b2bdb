package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"github.com/linemk/ld-shop/internal/app"
	"github.com/linemk/ld-shop/internal/app/handlers"
	"github.com/linemk/ld-shop/internal/config"
	"github.com/linemk/ld-shop/internal/lib/logger"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
	"github.com/linemk/ld-shop/internal/storage"
	"github.com/linemk/ld-shop/internal/web"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения: БД, redis и брокер
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	walletRepo := storage.NewWalletRepository(application.DB)
	intentRepo := storage.NewCryptoIntentRepository(application.DB)
	settingRepo := storage.NewSettingRepository(application.DB)

	authService := service.NewAuthService(log, userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(log, productRepo)
	cartService := service.NewCartService(log, productRepo)
	orderService := service.NewOrderService(log, application.DB, orderRepo, application.Publisher)
	cryptoService := service.NewCryptoService(log, application.DB, orderRepo, walletRepo, intentRepo, application.Publisher, cfg.Crypto.IntentTTL)
	adminService := service.NewAdminService(log, application.DB, productRepo, orderRepo, userRepo, walletRepo, intentRepo, settingRepo)
	siteService := service.NewSiteService(log, application.DB, settingRepo)

	if cfg.Admin.Password != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
			panic(errors.Wrap(err, "failed to ensure admin user"))
		}
	} else {
		log.Warn("ADMIN_PASSWORD is not set, admin user is not seeded")
	}

	templates := web.NewTemplateCache(log)
	if err := templates.Load(); err != nil {
		panic(errors.Wrap(err, "failed to load templates"))
	}

	sm := session.NewManager(log, newSessionStore(cfg, application), cfg.Session.Name)
	rd := handlers.NewRenderer(log, templates, sm)
	router := newRouter(log, cfg, sm, rd, services{
		auth:    authService,
		catalog: catalogService,
		cart:    cartService,
		order:   orderService,
		crypto:  cryptoService,
		admin:   adminService,
		site:    siteService,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}

// newSessionStore выбирает redis, если он настроен, иначе все данные сессии живут в cookie
func newSessionStore(cfg *config.Config, application *app.App) sessions.Store {
	key := []byte(cfg.Session.Secret)
	if application.Redis != nil {
		return session.NewRedisStore(application.Redis, cfg.Session.MaxAge, cfg.Session.CookieSecure, key)
	}
	return session.NewCookieStore(cfg.Session.MaxAge, cfg.Session.CookieSecure, key)
}
