package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User // ключ - username
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// CreateUser ведет себя как уникальный индекс на username
func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return nil, storage.ErrUsernameTaken
	}
	user.ID = int64(len(f.users) + 1)
	user.CreatedAt = time.Now()
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
	nextID   int64
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		if filter.OnlyActive && !p.IsActive() {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if p.IsActive() && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = product
	return product.ID, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	old, ok := f.products[product.ID]
	if !ok {
		return storage.ErrProductNotFound
	}
	updated := *product
	updated.Status = old.Status
	updated.CreatedAt = old.CreatedAt
	f.products[product.ID] = &updated
	return nil
}

func (f *fakeProductRepo) ToggleProductStatus(ctx context.Context, id int64) (string, error) {
	p, ok := f.products[id]
	if !ok {
		return "", storage.ErrProductNotFound
	}
	if p.IsActive() {
		p.Status = models.ProductInactive
	} else {
		p.Status = models.ProductActive
	}
	return p.Status, nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeOrderRepo struct {
	orders   map[int64]*models.Order
	items    map[int64][]*models.OrderItem // ключ: orderID
	nextID   int64
	failItem bool
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]*models.OrderItem),
	}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	if f.failItem {
		return sql.ErrConnDone
	}
	item.ID = int64(len(f.items[item.OrderID]) + 1)
	f.items[item.OrderID] = append(f.items[item.OrderID], item)
	return nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) GetOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, storage.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return f.all(), nil
}

func (f *fakeOrderRepo) all() []*models.Order {
	out := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, tx *sql.Tx, orderID int64, status string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

type fakeWalletRepo struct {
	wallets []*models.Wallet
}

var _ storage.WalletStorage = (*fakeWalletRepo)(nil)

func (f *fakeWalletRepo) ListWallets(ctx context.Context) ([]*models.Wallet, error) {
	return f.wallets, nil
}

func (f *fakeWalletRepo) ListEnabledWallets(ctx context.Context) ([]*models.Wallet, error) {
	var out []*models.Wallet
	for _, w := range f.wallets {
		if w.Enabled {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) FindEnabledWallet(ctx context.Context, chain, symbol string) (*models.Wallet, error) {
	for _, w := range f.wallets {
		if w.Enabled && w.Chain == chain && w.Symbol == symbol {
			return w, nil
		}
	}
	return nil, storage.ErrWalletNotFound
}

func (f *fakeWalletRepo) CreateWallet(ctx context.Context, wallet *models.Wallet) (int64, error) {
	wallet.ID = int64(len(f.wallets) + 1)
	f.wallets = append(f.wallets, wallet)
	return wallet.ID, nil
}

func (f *fakeWalletRepo) ToggleWallet(ctx context.Context, id int64) (bool, error) {
	for _, w := range f.wallets {
		if w.ID == id {
			w.Enabled = !w.Enabled
			return w.Enabled, nil
		}
	}
	return false, storage.ErrWalletNotFound
}

func (f *fakeWalletRepo) DeleteWallet(ctx context.Context, id int64) error {
	for i, w := range f.wallets {
		if w.ID == id {
			f.wallets = append(f.wallets[:i], f.wallets[i+1:]...)
			return nil
		}
	}
	return storage.ErrWalletNotFound
}

type fakeIntentRepo struct {
	intents []*models.CryptoPaymentIntent
}

var _ storage.CryptoIntentStorage = (*fakeIntentRepo)(nil)

func (f *fakeIntentRepo) CreateIntent(ctx context.Context, intent *models.CryptoPaymentIntent) error {
	intent.ID = int64(len(f.intents) + 1)
	intent.CreatedAt = time.Now()
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeIntentRepo) GetLatestIntentByOrderID(ctx context.Context, orderID int64) (*models.CryptoPaymentIntent, error) {
	var latest *models.CryptoPaymentIntent
	for _, in := range f.intents {
		if in.OrderID == orderID && (latest == nil || in.ID > latest.ID) {
			latest = in
		}
	}
	if latest == nil {
		return nil, storage.ErrIntentNotFound
	}
	return latest, nil
}

func (f *fakeIntentRepo) MarkIntentPaid(ctx context.Context, tx *sql.Tx, intentID int64, txHash string) (int64, error) {
	for _, in := range f.intents {
		if in.ID == intentID {
			in.Status = models.IntentStatusPaid
			if txHash != "" {
				in.TxHash = txHash
			}
			return in.OrderID, nil
		}
	}
	return 0, storage.ErrIntentNotFound
}

func (f *fakeIntentRepo) ListIntents(ctx context.Context) ([]*models.CryptoPaymentIntent, error) {
	return f.intents, nil
}

type fakeSettingRepo struct {
	values map[string]string
}

var _ storage.SettingStorage = (*fakeSettingRepo)(nil)

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: make(map[string]string)}
}

func (f *fakeSettingRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSettingRepo) UpsertSetting(ctx context.Context, tx *sql.Tx, key, value string) error {
	f.values[key] = value
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, pattern string, data any) error {
	args := m.Called(ctx, pattern, data)
	return args.Error(0)
}
