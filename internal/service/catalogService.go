package service

import (
	"context"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/metric"
	"github.com/RussoPy/Claude-s-Store/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CatalogRepository описывает чтение каталога: товары и разделы.
//
//go:generate mockery --name=CatalogRepository --output=./mocks --case=underscore
type CatalogRepository interface {
	ListProducts(ctx context.Context, categoryID, namePrefix string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
}

// CatalogService - чтение витрины. Каталог публичный, без авторизации.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID, namePrefix string) ([]models.Product, error) {
	tr := otel.Tracer("catalogService")
	ctx, span := tr.Start(ctx, "Service.ListProducts")
	defer span.End()

	if categoryID != "" {
		span.SetAttributes(attribute.String("category_id", categoryID))
	}

	start := time.Now()
	products, err := s.repo.ListProducts(ctx, categoryID, namePrefix)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("list_products", "error").Inc()
		return nil, err
	}
	metric.DbOperationsTotal.WithLabelValues("list_products", "success").Inc()
	metric.DbDuration.WithLabelValues("list_products").Observe(time.Since(start).Seconds())

	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	tr := otel.Tracer("catalogService")
	ctx, span := tr.Start(ctx, "Service.GetProduct")
	defer span.End()

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("get_product", "error").Inc()
		return models.Product{}, err
	}
	metric.DbOperationsTotal.WithLabelValues("get_product", "success").Inc()

	return product, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	tr := otel.Tracer("catalogService")
	ctx, span := tr.Start(ctx, "Service.ListCategories")
	defer span.End()

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("list_categories", "error").Inc()
		return nil, err
	}
	metric.DbOperationsTotal.WithLabelValues("list_categories", "success").Inc()

	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	tr := otel.Tracer("catalogService")
	ctx, span := tr.Start(ctx, "Service.GetCategory")
	defer span.End()

	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		span.RecordError(err)
		metric.DbOperationsTotal.WithLabelValues("get_category", "error").Inc()
		return models.Category{}, err
	}
	metric.DbOperationsTotal.WithLabelValues("get_category", "success").Inc()

	return category, nil
}
