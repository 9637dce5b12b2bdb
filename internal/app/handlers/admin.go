package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/service"
	"github.com/linemk/ld-shop/internal/session"
)

// ProductForm - форма добавления и правки товара
type ProductForm struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	Price       string `validate:"required,numeric"`
	Stock       string `validate:"omitempty,number"`
	Category    string `validate:"max=100"`
	ImageURL    string `validate:"omitempty,url,max=500"`
}

// WalletForm - форма добавления кошелька
type WalletForm struct {
	Chain   string `validate:"required,max=16"`
	Symbol  string `validate:"required,max=16"`
	Address string `validate:"required,max=128"`
	Label   string `validate:"max=100"`
}

// ConfirmForm - ручное подтверждение криптоплатежа
type ConfirmForm struct {
	IntentID int64  `validate:"required,gt=0"`
	TxHash   string `validate:"max=128"`
}

type adminData struct {
	*service.Dashboard
	Tabs        []string
	SettingKeys []string
}

// AdminHandler обрабатывает GET /admin?tab=...
func AdminHandler(log *slog.Logger, rd *Renderer, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminHandler"
		logger := log.With(slog.String("op", op))

		dashboard, err := adminService.Dashboard(r.Context(), r.URL.Query().Get("tab"))
		if err != nil {
			logger.Error("failed to load dashboard", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		data := adminData{
			Dashboard:   dashboard,
			Tabs:        service.AdminTabs,
			SettingKeys: models.SiteSettingKeys,
		}
		rd.Render(w, r, http.StatusOK, "admin.html", "Админка", data, "")
	}
}

// adminAction - общий каркас POST-действий админки: выполнить, показать флеш, вернуться на вкладку
func adminAction(log *slog.Logger, sm *session.Manager, op, tab string, action func(r *http.Request) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", op))
		target := "/admin?tab=" + tab

		msg, err := action(r)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation), errors.Is(err, errBadNumber):
				logger.Warn("invalid admin input", slog.Any("error", err))
				redirectWithFlash(w, r, logger, sm, target, session.FlashError, "Проверьте введенные данные")
			case errors.Is(err, service.ErrNotFound):
				redirectWithFlash(w, r, logger, sm, target, session.FlashError, "Запись не найдена")
			default:
				logger.Error("admin action failed", slog.Any("error", err))
				redirectWithFlash(w, r, logger, sm, target, session.FlashError, "Не удалось выполнить действие")
			}
			return
		}
		redirectWithFlash(w, r, logger, sm, target, session.FlashSuccess, msg)
	}
}

func formID(r *http.Request, key string) (int64, error) {
	id, err := parseID(r.FormValue(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return id, nil
}

func validationErr(err error) error {
	return fmt.Errorf("%v: %w", err, service.ErrValidation)
}

// readProductForm разбирает общую форму добавления и правки товара
func readProductForm(r *http.Request) (service.NewProduct, error) {
	form := ProductForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Stock:       strings.TrimSpace(r.FormValue("stock")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}
	if err := validate.Struct(form); err != nil {
		return service.NewProduct{}, validationErr(err)
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		return service.NewProduct{}, validationErr(err)
	}
	stock := 0
	if form.Stock != "" {
		if stock, err = strconv.Atoi(form.Stock); err != nil {
			return service.NewProduct{}, validationErr(err)
		}
	}

	return service.NewProduct{
		Name:        form.Name,
		Description: form.Description,
		Price:       price,
		Stock:       stock,
		Category:    form.Category,
		ImageURL:    form.ImageURL,
	}, nil
}

// AdminProductAddHandler обрабатывает POST /admin/products/add
func AdminProductAddHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminProductAddHandler", service.TabProducts, func(r *http.Request) (string, error) {
		p, err := readProductForm(r)
		if err != nil {
			return "", err
		}
		id, err := adminService.AddProduct(r.Context(), p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Товар #%d добавлен", id), nil
	})
}

// AdminProductEditHandler обрабатывает POST /admin/products/edit.
// Цены в корзинах и оформленных заказах не меняются.
func AdminProductEditHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminProductEditHandler", service.TabProducts, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		p, err := readProductForm(r)
		if err != nil {
			return "", err
		}
		if err := adminService.UpdateProduct(r.Context(), id, p); err != nil {
			return "", err
		}
		return fmt.Sprintf("Товар #%d обновлен", id), nil
	})
}

// AdminProductToggleHandler обрабатывает POST /admin/products/toggle
func AdminProductToggleHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminProductToggleHandler", service.TabProducts, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		status, err := adminService.ToggleProduct(r.Context(), id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Товар #%d: %s", id, status), nil
	})
}

// AdminProductDeleteHandler обрабатывает POST /admin/products/delete
func AdminProductDeleteHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminProductDeleteHandler", service.TabProducts, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		if err := adminService.DeleteProduct(r.Context(), id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Товар #%d удален", id), nil
	})
}

// AdminOrderStatusHandler обрабатывает POST /admin/orders/status
func AdminOrderStatusHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminOrderStatusHandler", service.TabOrders, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		status := strings.TrimSpace(r.FormValue("status"))
		if len(status) > 32 {
			return "", fmt.Errorf("status too long: %w", service.ErrValidation)
		}
		if err := adminService.SetOrderStatus(r.Context(), id, status); err != nil {
			return "", err
		}
		return fmt.Sprintf("Заказ #%d: %s", id, status), nil
	})
}

// AdminWalletAddHandler обрабатывает POST /admin/wallets/add
func AdminWalletAddHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminWalletAddHandler", service.TabWallets, func(r *http.Request) (string, error) {
		form := WalletForm{
			Chain:   strings.TrimSpace(r.FormValue("chain")),
			Symbol:  strings.TrimSpace(r.FormValue("symbol")),
			Address: strings.TrimSpace(r.FormValue("address")),
			Label:   strings.TrimSpace(r.FormValue("label")),
		}
		if err := validate.Struct(form); err != nil {
			return "", validationErr(err)
		}
		id, err := adminService.AddWallet(r.Context(), service.NewWallet(form))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Кошелек #%d добавлен", id), nil
	})
}

// AdminWalletToggleHandler обрабатывает POST /admin/wallets/toggle
func AdminWalletToggleHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminWalletToggleHandler", service.TabWallets, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		enabled, err := adminService.ToggleWallet(r.Context(), id)
		if err != nil {
			return "", err
		}
		if enabled {
			return fmt.Sprintf("Кошелек #%d включен", id), nil
		}
		return fmt.Sprintf("Кошелек #%d выключен", id), nil
	})
}

// AdminWalletDeleteHandler обрабатывает POST /admin/wallets/delete
func AdminWalletDeleteHandler(log *slog.Logger, sm *session.Manager, adminService service.AdminService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminWalletDeleteHandler", service.TabWallets, func(r *http.Request) (string, error) {
		id, err := formID(r, "id")
		if err != nil {
			return "", err
		}
		if err := adminService.DeleteWallet(r.Context(), id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Кошелек #%d удален", id), nil
	})
}

// AdminCryptoConfirmHandler обрабатывает POST /admin/crypto/confirm.
// Поле crypto_order_id содержит id намерения. Неизвестный id не ошибка.
func AdminCryptoConfirmHandler(log *slog.Logger, sm *session.Manager, cryptoService service.CryptoService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminCryptoConfirmHandler", service.TabCrypto, func(r *http.Request) (string, error) {
		intentID, err := formID(r, "crypto_order_id")
		if err != nil {
			return "", err
		}
		form := ConfirmForm{IntentID: intentID, TxHash: strings.TrimSpace(r.FormValue("tx_hash"))}
		if err := validate.Struct(form); err != nil {
			return "", validationErr(err)
		}
		if err := cryptoService.Confirm(r.Context(), form.IntentID, form.TxHash); err != nil {
			return "", err
		}
		return fmt.Sprintf("Платеж #%d подтвержден", form.IntentID), nil
	})
}

// AdminSiteSaveHandler обрабатывает POST /admin/site/save
func AdminSiteSaveHandler(log *slog.Logger, sm *session.Manager, siteService service.SiteService) http.HandlerFunc {
	return adminAction(log, sm, "handlers.AdminSiteSaveHandler", service.TabSite, func(r *http.Request) (string, error) {
		if err := r.ParseForm(); err != nil {
			return "", validationErr(err)
		}
		values := make(map[string]string, len(models.SiteSettingKeys))
		for _, key := range models.SiteSettingKeys {
			if _, ok := r.PostForm[key]; ok {
				values[key] = r.PostForm.Get(key)
			}
		}
		if err := siteService.Save(r.Context(), values); err != nil {
			return "", err
		}
		return "Настройки сохранены", nil
	})
}
