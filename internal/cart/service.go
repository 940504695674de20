package cart

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/internal/catalog"
	"github.com/prostore-labs/storefront-backend/internal/pricing"
	"github.com/prostore-labs/storefront-backend/pkg/db"
	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// Identity names the shopper a cart belongs to: an anonymous session token,
// plus the user id once signed in. The user id wins when both are present.
type Identity struct {
	UserID        *uuid.UUID
	SessionCartID string
}

func (id Identity) validate() error {
	if id.UserID == nil && strings.TrimSpace(id.SessionCartID) == "" {
		return errors.New(errors.CodeValidation, "cart session required")
	}
	return nil
}

// Service exposes cart mutations. Every mutation recomputes the four derived
// totals inside the same transaction that changes the lines.
type Service interface {
	// GetActiveCart resolves the caller's cart, user cart first. Returns
	// nil without error when no cart exists yet.
	GetActiveCart(ctx context.Context, id Identity) (*models.Cart, error)
	// AddItem adds qty units of a product, creating the cart and the line
	// as needed. The line snapshots the product's name, slug, image and
	// price at add time.
	AddItem(ctx context.Context, id Identity, productID uuid.UUID, qty int) (*models.Cart, error)
	// DecrementItem removes one unit of a product, deleting the line when
	// it reaches zero.
	DecrementItem(ctx context.Context, id Identity, productID uuid.UUID) (*models.Cart, error)
	// MergeOnSignIn adopts the anonymous session cart as the signed-in
	// user's cart, discarding any cart the user had before.
	MergeOnSignIn(ctx context.Context, sessionCartID string, userID uuid.UUID) error
}

type service struct {
	client   *db.Client
	repo     Repository
	products catalog.Repository
	logg     *logger.Logger
}

// NewService builds the cart service.
func NewService(client *db.Client, repo Repository, products catalog.Repository, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, products: products, logg: logg}, nil
}

func (s *service) GetActiveCart(ctx context.Context, id Identity) (*models.Cart, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	cart, err := s.resolve(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// resolve looks the cart up by user first, then by session token. A nil cart
// with nil error means the shopper has no cart yet.
func (s *service) resolve(ctx context.Context, repo Repository, id Identity) (*models.Cart, error) {
	if id.UserID != nil {
		cart, err := repo.FindByUser(ctx, *id.UserID)
		if err == nil {
			return cart, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errors.CodeInternal, err, "fetch user cart")
		}
	}
	if id.SessionCartID != "" {
		cart, err := repo.FindBySession(ctx, id.SessionCartID)
		if err == nil {
			return cart, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errors.CodeInternal, err, "fetch session cart")
		}
	}
	return nil, nil
}

func (s *service) AddItem(ctx context.Context, id Identity, productID uuid.UUID, qty int) (*models.Cart, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		qty = 1
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		products := s.products.WithTx(tx)

		product, err := products.FindByID(ctx, productID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "product not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "fetch product")
		}

		cart, err := s.resolve(ctx, repo, id)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &models.Cart{
				ID:     uuid.New(),
				UserID: id.UserID,
			}
			if id.UserID == nil {
				session := id.SessionCartID
				cart.SessionCartID = &session
			}
			if err := repo.Create(ctx, cart); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "create cart")
			}
		}

		line := findLine(cart, productID)
		want := qty
		if line != nil {
			want += line.Qty
		}
		if product.Stock < want {
			return errors.New(errors.CodeConflict, "not enough stock").
				WithDetails(map[string]any{
					"product_id": productID.String(),
					"requested":  want,
					"available":  product.Stock,
				})
		}

		if line != nil {
			line.Qty = want
			if err := repo.SaveItem(ctx, line); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "update cart line")
			}
		} else {
			item := &models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Slug:      product.Slug,
				Image:     product.FeaturedImage(),
				Price:     product.Price,
				Qty:       qty,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "add cart line")
			}
			cart.Items = append(cart.Items, *item)
		}

		return s.saveTotals(ctx, repo, cart)
	})
	if err != nil {
		return nil, err
	}

	return s.GetActiveCart(ctx, id)
}

func (s *service) DecrementItem(ctx context.Context, id Identity, productID uuid.UUID) (*models.Cart, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.resolve(ctx, repo, id)
		if err != nil {
			return err
		}
		if cart == nil {
			return errors.New(errors.CodeNotFound, "cart not found")
		}

		line := findLine(cart, productID)
		if line == nil {
			return errors.New(errors.CodeNotFound, "item not in cart")
		}

		if line.Qty <= 1 {
			if err := repo.DeleteItem(ctx, line.ID); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "remove cart line")
			}
			removeLine(cart, line.ID)
		} else {
			line.Qty--
			if err := repo.SaveItem(ctx, line); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "update cart line")
			}
		}

		return s.saveTotals(ctx, repo, cart)
	})
	if err != nil {
		return nil, err
	}

	return s.GetActiveCart(ctx, id)
}

func (s *service) MergeOnSignIn(ctx context.Context, sessionCartID string, userID uuid.UUID) error {
	if strings.TrimSpace(sessionCartID) == "" {
		return nil
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sessionCart, err := repo.FindBySession(ctx, sessionCartID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return errors.Wrap(errors.CodeInternal, err, "fetch session cart")
		}

		// Any cart the user had before this sign-in is discarded; the
		// session cart becomes the single active cart.
		existing, err := repo.FindByUser(ctx, userID)
		if err == nil {
			if err := repo.Delete(ctx, existing.ID); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "discard previous user cart")
			}
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errors.CodeInternal, err, "fetch user cart")
		}

		sessionCart.UserID = &userID
		sessionCart.SessionCartID = nil
		if err := repo.Save(ctx, sessionCart); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "adopt session cart")
		}
		return nil
	})
}

// saveTotals recomputes the derived totals from the cart's current lines and
// persists them.
func (s *service) saveTotals(ctx context.Context, repo Repository, cart *models.Cart) error {
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, pricing.Line{Price: item.Price, Qty: item.Qty})
	}
	totals := pricing.ComputeTotals(lines)
	cart.ItemsPrice = totals.ItemsPrice
	cart.ShippingPrice = totals.ShippingPrice
	cart.TaxPrice = totals.TaxPrice
	cart.TotalPrice = totals.TotalPrice
	if err := repo.Save(ctx, cart); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "save cart totals")
	}
	return nil
}

func findLine(cart *models.Cart, productID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

func removeLine(cart *models.Cart, itemID uuid.UUID) {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return
		}
	}
}
