package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/storage"
)

// вкладки админки
const (
	TabProducts = "products"
	TabOrders   = "orders"
	TabUsers    = "users"
	TabWallets  = "wallets"
	TabCrypto   = "crypto"
	TabSite     = "site"
)

var AdminTabs = []string{TabProducts, TabOrders, TabUsers, TabWallets, TabCrypto, TabSite}

// NormalizeTab возвращает products для неизвестной вкладки
func NormalizeTab(tab string) string {
	for _, t := range AdminTabs {
		if t == tab {
			return t
		}
	}
	return TabProducts
}

// Dashboard - данные одной вкладки админки, остальные поля пустые
type Dashboard struct {
	Tab      string
	Products []*models.Product
	Orders   []*models.Order
	Users    []*models.User
	Wallets  []*models.Wallet
	Intents  []IntentRow
	Settings models.SiteSettings
}

// IntentRow - намерение для списка в админке. Просроченные pending только помечаются.
type IntentRow struct {
	*models.CryptoPaymentIntent
	IsExpired bool
}

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

type NewWallet struct {
	Chain   string
	Symbol  string
	Address string
	Label   string
}

type AdminService interface {
	Dashboard(ctx context.Context, tab string) (*Dashboard, error)
	AddProduct(ctx context.Context, p NewProduct) (int64, error)
	UpdateProduct(ctx context.Context, id int64, p NewProduct) error
	ToggleProduct(ctx context.Context, id int64) (string, error)
	DeleteProduct(ctx context.Context, id int64) error
	SetOrderStatus(ctx context.Context, orderID int64, status string) error
	AddWallet(ctx context.Context, w NewWallet) (int64, error)
	ToggleWallet(ctx context.Context, id int64) (bool, error)
	DeleteWallet(ctx context.Context, id int64) error
}

type adminService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
	walletRepo  storage.WalletStorage
	intentRepo  storage.CryptoIntentStorage
	settingRepo storage.SettingStorage
	now         func() time.Time
}

func NewAdminService(
	log *slog.Logger,
	db *sql.DB,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	userRepo storage.UserStorage,
	walletRepo storage.WalletStorage,
	intentRepo storage.CryptoIntentStorage,
	settingRepo storage.SettingStorage,
) AdminService {
	return &adminService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		intentRepo:  intentRepo,
		settingRepo: settingRepo,
		now:         time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context, tab string) (*Dashboard, error) {
	const op = "service.AdminService.Dashboard"
	d := &Dashboard{Tab: NormalizeTab(tab)}

	var err error
	switch d.Tab {
	case TabProducts:
		d.Products, err = s.productRepo.ListProducts(ctx, models.ProductFilter{})
	case TabOrders:
		d.Orders, err = s.orderRepo.ListOrders(ctx)
	case TabUsers:
		d.Users, err = s.userRepo.ListUsers(ctx)
	case TabWallets:
		d.Wallets, err = s.walletRepo.ListWallets(ctx)
	case TabCrypto:
		var intents []*models.CryptoPaymentIntent
		intents, err = s.intentRepo.ListIntents(ctx)
		now := s.now()
		for _, in := range intents {
			d.Intents = append(d.Intents, IntentRow{CryptoPaymentIntent: in, IsExpired: in.Expired(now)})
		}
	case TabSite:
		var settings map[string]string
		settings, err = s.settingRepo.GetSettings(ctx)
		d.Settings = models.SiteSettings(settings)
	}
	if err != nil {
		s.log.Error("failed to load dashboard", slog.String("op", op), slog.String("tab", d.Tab), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// productFromInput чистит поля формы. Цена округляется до копеек до проверки, поэтому 0.001 не пройдет.
func productFromInput(p NewProduct) (*models.Product, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("empty name: %w", ErrValidation)
	}
	price := p.Price.Round(2)
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", ErrValidation)
	}
	return &models.Product{
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		Price:       price,
		Stock:       p.Stock,
		Category:    strings.TrimSpace(p.Category),
		ImageURL:    strings.TrimSpace(p.ImageURL),
	}, nil
}

func (s *adminService) AddProduct(ctx context.Context, p NewProduct) (int64, error) {
	const op = "service.AdminService.AddProduct"
	logger := s.log.With(slog.String("op", op))

	product, err := productFromInput(p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	product.Status = models.ProductActive

	id, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", id))
	return id, nil
}

// UpdateProduct меняет карточку товара. Корзины и заказы держат свои снимки цены и не пересчитываются.
func (s *adminService) UpdateProduct(ctx context.Context, id int64, p NewProduct) error {
	const op = "service.AdminService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := productFromInput(p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	product.ID = id

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product updated")
	return nil
}

func (s *adminService) ToggleProduct(ctx context.Context, id int64) (string, error) {
	const op = "service.AdminService.ToggleProduct"

	status, err := s.productRepo.ToggleProductStatus(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to toggle product", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return status, nil
}

// DeleteProduct удаляет товар. Позиции прошлых заказов хранят снимок названия и цены.
func (s *adminService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.AdminService.DeleteProduct"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to delete product", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.Int64("productID", id))
	return nil
}

// SetOrderStatus - прямое изменение статуса. Допускается любая непустая строка.
func (s *adminService) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	const op = "service.AdminService.SetOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%s: empty status: %w", op, ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, status); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrOrderNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order status changed", slog.String("status", status))
	return nil
}

func (s *adminService) AddWallet(ctx context.Context, w NewWallet) (int64, error) {
	const op = "service.AdminService.AddWallet"

	wallet := &models.Wallet{
		Chain:   strings.ToUpper(strings.TrimSpace(w.Chain)),
		Symbol:  strings.ToUpper(strings.TrimSpace(w.Symbol)),
		Address: strings.TrimSpace(w.Address),
		Label:   strings.TrimSpace(w.Label),
		Enabled: true,
	}
	if wallet.Chain == "" || wallet.Symbol == "" || wallet.Address == "" {
		return 0, fmt.Errorf("%s: chain, symbol and address are required: %w", op, ErrValidation)
	}

	id, err := s.walletRepo.CreateWallet(ctx, wallet)
	if err != nil {
		s.log.Error("failed to create wallet", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("wallet created", slog.String("op", op), slog.Int64("walletID", id),
		slog.String("chain", wallet.Chain), slog.String("symbol", wallet.Symbol))
	return id, nil
}

func (s *adminService) ToggleWallet(ctx context.Context, id int64) (bool, error) {
	const op = "service.AdminService.ToggleWallet"

	enabled, err := s.walletRepo.ToggleWallet(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to toggle wallet", slog.String("op", op), slog.Int64("walletID", id), slog.Any("error", err))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return enabled, nil
}

// DeleteWallet не трогает уже созданные намерения: адрес в них скопирован
func (s *adminService) DeleteWallet(ctx context.Context, id int64) error {
	const op = "service.AdminService.DeleteWallet"

	if err := s.walletRepo.DeleteWallet(ctx, id); err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to delete wallet", slog.String("op", op), slog.Int64("walletID", id), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
