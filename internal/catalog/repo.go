package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/pagination"
)

// SearchFilters is the canonical combined listing filter: free-text query,
// category, price range, minimum rating, sort order.
type SearchFilters struct {
	Query     string
	Category  string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	MinRating *decimal.Decimal
	Sort      string
}

// Sort orders accepted by Search.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "lowest"
	SortPriceDesc = "highest"
	SortRating    = "rating"
)

// ProductPage is one page of search results.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

// Repository manages catalog reads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Search(ctx context.Context, filters SearchFilters, page pagination.Params) (*ProductPage, error)
	Latest(ctx context.Context, limit int) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Search(ctx context.Context, filters SearchFilters, page pagination.Params) (*ProductPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name LIKE ?", pattern)
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filters.PriceMin != nil {
		query = query.Where("price >= ?", filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("price <= ?", filters.PriceMax)
	}
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", filters.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	switch filters.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	case SortRating:
		query = query.Order("rating DESC")
	default:
		query = query.Order("created_at DESC")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	var products []models.Product
	if err := query.Limit(limit).Offset(page.Offset()).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{
		Products:   products,
		Total:      total,
		Page:       pagination.NormalizePage(page.Page),
		TotalPages: pagination.Pages(total, page.Limit),
	}, nil
}

func (r *repository) Latest(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 4
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
