package catalog

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

// Service exposes catalog browsing operations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	Search(ctx context.Context, filters SearchFilters, page pagination.Params) (*ProductPage, error)
	Latest(ctx context.Context, limit int) ([]models.Product, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the catalog service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "fetch product")
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, errors.New(errors.CodeValidation, "product slug required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "fetch product")
	}
	return product, nil
}

func (s *service) Search(ctx context.Context, filters SearchFilters, page pagination.Params) (*ProductPage, error) {
	result, err := s.repo.Search(ctx, filters, page)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "search products")
	}
	return result, nil
}

func (s *service) Latest(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.repo.Latest(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list latest products")
	}
	return products, nil
}
