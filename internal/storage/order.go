package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ld-shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ в рамках транзакции и возвращает его id.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// CreateOrderItem вставляет позицию заказа в рамках той же транзакции.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми, с названиями товаров через запятую.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetOrderForUser возвращает заказ, только если он принадлежит пользователю.
	GetOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// ListOrders - все заказы с именем покупателя, для админки.
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, tx *sql.Tx, orderID int64, status string) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (user_id, total, status, contact, remark, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query, order.UserID, order.Total, order.Status, order.Contact, order.Remark).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	// товар могли удалить, пока он лежал в корзине: тогда product_id остается NULL, позиция хранит название и цену
	query := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
	          VALUES ($1, (SELECT id FROM products WHERE id = $2), $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total, o.status, o.contact, o.remark,
		       COALESCE(string_agg(oi.product_name, ', ' ORDER BY oi.id), '') AS items,
		       o.created_at
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.Contact, &o.Remark, &o.Items, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	query := `SELECT id, user_id, total, status, contact, remark, created_at
	          FROM orders WHERE id = $1 AND user_id = $2`
	o := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, orderID, userID).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.Contact, &o.Remark, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `SELECT id, order_id, COALESCE(product_id, 0), product_name, quantity, price
	          FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		it := &models.OrderItem{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, COALESCE(u.username, ''), o.total, o.status, o.contact, o.remark, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.UserID, &o.Username, &o.Total, &o.Status, &o.Contact, &o.Remark, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, tx *sql.Tx, orderID int64, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
