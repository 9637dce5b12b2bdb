package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/storage"
)

// CatalogService - витрина: только активные товары
type CatalogService interface {
	List(ctx context.Context, category, query string) ([]*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

func (s *catalogService) List(ctx context.Context, category, query string) ([]*models.Product, error) {
	const op = "service.CatalogService.List"

	products, err := s.productRepo.ListProducts(ctx, models.ProductFilter{
		Category:   strings.TrimSpace(category),
		Query:      strings.TrimSpace(query),
		OnlyActive: true,
	})
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	const op = "service.CatalogService.Categories"

	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// Get не отдает неактивные товары, для витрины их нет
func (s *catalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.Get"

	p, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		s.log.Error("failed to get product", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !p.IsActive() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return p, nil
}
