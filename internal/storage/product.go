package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/linemk/ld-shop/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает методы для работы с каталогом.
type ProductStorage interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (int64, error)
	// UpdateProduct меняет карточку товара; статус и дата создания не трогаются.
	UpdateProduct(ctx context.Context, product *models.Product) error
	// ToggleProductStatus переключает active/inactive и возвращает новый статус.
	ToggleProductStatus(ctx context.Context, id int64) (string, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, stock, category, image_url, status, created_at"

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.ImageURL, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts собирает запрос из фильтра: категория - точное совпадение, q - подстрока названия.
func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.OnlyActive {
		args = append(args, models.ProductActive)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories возвращает категории активных товаров
func (r *productRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM products WHERE status = $1 AND category <> '' ORDER BY category",
		models.ProductActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	query := `INSERT INTO products (name, description, price, stock, category, image_url, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, stock = $4, category = $5, image_url = $6
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) ToggleProductStatus(ctx context.Context, id int64) (string, error) {
	query := `UPDATE products
	          SET status = CASE WHEN status = 'active' THEN 'inactive' ELSE 'active' END
	          WHERE id = $1
	          RETURNING status`
	var status string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("failed to toggle product: %w", err)
	}
	return status, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
