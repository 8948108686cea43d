package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trendyshop/internal/model"
	"trendyshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for stored passwords.
const passwordCost = 10

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new account service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, model.NewValidationError("user request is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" || email == "" {
		return nil, model.NewValidationError("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, model.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, model.NewValidationError("password is too long")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		TotalSpent:   decimal.Zero,
		Coupons:      []model.Coupon{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Warn().Msg("registration with an existing email")
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to register user")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

func (s *userService) SetWorker(ctx context.Context, id uuid.UUID, worker bool) (*model.User, error) {
	user, err := s.userRepo.SetWorker(ctx, id, worker)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to change worker role")
		return nil, fmt.Errorf("failed to change worker role: %w", err)
	}

	if user == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id.String()).Bool("is_worker", worker).Msg("worker role changed")
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.IsOwner {
		s.logger.Warn().Str("user_id", id.String()).Msg("attempt to delete an owner account")
		return model.NewDomainError(model.ErrCodeForbidden, "Owner accounts cannot be deleted")
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to delete user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if !deleted {
		return model.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

// userPageLimit is the page size of the staff user listing.
const userPageLimit = 15

// List returns a page of non-owner accounts for staff.
func (s *userService) List(ctx context.Context, page int) (*model.UserPage, error) {
	page, limit := normalisePage(page, userPageLimit)

	total, err := s.userRepo.CountCustomers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count users")
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	users, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &model.UserPage{
		Users:      users,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Wishlist returns the product IDs a user has saved.
func (s *userService) Wishlist(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.userRepo.Wishlist(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get wishlist")
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return ids, nil
}

func (s *userService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	added, err := s.userRepo.AddToWishlist(ctx, userID, productID)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to add to wishlist")
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}

	if !added {
		return model.ErrAlreadyInWishlist
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", productID.String()).
		Msg("product added to wishlist")
	return nil
}

func (s *userService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.RemoveFromWishlist(ctx, userID, productID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove from wishlist")
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}

	return nil
}
