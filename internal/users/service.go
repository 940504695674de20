package users

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostore-labs/storefront-backend/pkg/db/models"
	"github.com/prostore-labs/storefront-backend/pkg/db/types"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// Service exposes the profile reads and writes checkout depends on.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateAddress saves the shipping address collected during checkout.
	UpdateAddress(ctx context.Context, id uuid.UUID, address types.Address) (*models.User, error)
	// UpdatePaymentMethod saves the user's preferred payment method.
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.User, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the users service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "fetch user")
	}
	return user, nil
}

func (s *service) UpdateAddress(ctx context.Context, id uuid.UUID, address types.Address) (*models.User, error) {
	if !address.IsComplete() {
		return nil, errors.New(errors.CodeValidation, "shipping address incomplete")
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Address = &address
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "save address")
	}
	return user, nil
}

func (s *service) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method enums.PaymentMethod) (*models.User, error) {
	if !method.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unsupported payment method")
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PaymentMethod = &method
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "save payment method")
	}
	return user, nil
}
