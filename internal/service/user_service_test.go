package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo, zerolog.Nop())

	repo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	user, err := svc.Register(ctx, &model.CreateUserRequest{
		Name:     " Grace Hopper ",
		Email:    "Grace@Example.COM",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", user.Name)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.True(t, user.TotalSpent.IsZero())
	assert.False(t, user.IsStaff())
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))

	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, passwordCost, cost)
	repo.AssertExpectations(t)
}

func TestUserService_Register_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		req         *model.CreateUserRequest
		repoErr     error
		expectedErr error
	}{
		{name: "nil request", req: nil, expectedErr: model.ErrValidation},
		{name: "blank name", req: &model.CreateUserRequest{Name: " ", Email: "a@b.c", Password: "password1"}, expectedErr: model.ErrValidation},
		{name: "short password", req: &model.CreateUserRequest{Name: "A", Email: "a@b.c", Password: "short"}, expectedErr: model.ErrValidation},
		{name: "password too long", req: &model.CreateUserRequest{Name: "A", Email: "a@b.c", Password: strings.Repeat("x", 73)}, expectedErr: model.ErrValidation},
		{name: "email taken", req: &model.CreateUserRequest{Name: "A", Email: "a@b.c", Password: "password1"}, repoErr: model.ErrEmailTaken, expectedErr: model.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewUserService(repo, zerolog.Nop())
			repo.On("Create", ctx, mock.Anything).Return(tt.repoErr).Maybe()

			user, err := svc.Register(ctx, tt.req)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, user)
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo, zerolog.Nop())

	known, unknown := uuid.New(), uuid.New()
	repo.On("GetByID", ctx, known).Return(&model.User{ID: known}, nil)
	repo.On("GetByID", ctx, unknown).Return(nil, nil)

	user, err := svc.GetByID(ctx, known)
	require.NoError(t, err)
	assert.Equal(t, known, user.ID)

	_, err = svc.GetByID(ctx, unknown)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserService_SetWorker(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo, zerolog.Nop())

	id, missing := uuid.New(), uuid.New()
	repo.On("SetWorker", ctx, id, true).Return(&model.User{ID: id, IsWorker: true}, nil)
	repo.On("SetWorker", ctx, missing, true).Return(nil, nil)

	user, err := svc.SetWorker(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, user.IsStaff())

	_, err = svc.SetWorker(ctx, missing, true)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name        string
		user        *model.User
		deleted     bool
		deleteErr   error
		expectedErr error
		expectCall  bool
	}{
		{name: "customer deleted", user: &model.User{ID: id}, deleted: true, expectCall: true},
		{name: "owner protected", user: &model.User{ID: id, IsOwner: true}, expectedErr: model.ErrForbidden},
		{name: "unknown user", user: nil, expectedErr: model.ErrUserNotFound},
		{name: "repository failure", user: &model.User{ID: id}, deleteErr: errors.New("boom"), expectCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewUserService(repo, zerolog.Nop())

			if tt.user == nil {
				repo.On("GetByID", ctx, id).Return(nil, nil)
			} else {
				repo.On("GetByID", ctx, id).Return(tt.user, nil)
			}
			repo.On("Delete", ctx, id).Return(tt.deleted, tt.deleteErr).Maybe()

			err := svc.Delete(ctx, id)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
			case tt.deleteErr != nil:
				assert.ErrorIs(t, err, tt.deleteErr)
			default:
				assert.NoError(t, err)
			}

			if tt.expectCall {
				repo.AssertCalled(t, "Delete", ctx, id)
			} else {
				repo.AssertNotCalled(t, "Delete", ctx, id)
			}
		})
	}
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewUserService(repo, zerolog.Nop())

	users := []model.User{{ID: uuid.New(), Name: "carol"}}
	repo.On("CountCustomers", ctx).Return(31, nil)
	repo.On("List", ctx, 15, 15).Return(users, nil)
	repo.On("List", ctx, 15, 0).Return(users, nil)

	page, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, users, page.Users)
	assert.Equal(t, 3, page.TotalPages)

	_, err = svc.List(ctx, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserService_Wishlist(t *testing.T) {
	ctx := context.Background()
	userID, productID := uuid.New(), uuid.New()

	t.Run("list", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, userID).Return(&model.User{ID: userID}, nil)
		repo.On("Wishlist", ctx, userID).Return([]uuid.UUID{productID}, nil)

		ids, err := svc.Wishlist(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{productID}, ids)
	})

	t.Run("add", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, userID).Return(&model.User{ID: userID}, nil)
		repo.On("AddToWishlist", ctx, userID, productID).Return(true, nil).Once()
		repo.On("AddToWishlist", ctx, userID, productID).Return(false, nil).Once()

		require.NoError(t, svc.AddToWishlist(ctx, userID, productID))
		assert.ErrorIs(t, svc.AddToWishlist(ctx, userID, productID), model.ErrAlreadyInWishlist)
		repo.AssertExpectations(t)
	})

	t.Run("add unknown product", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, userID).Return(&model.User{ID: userID}, nil)
		repo.On("AddToWishlist", ctx, userID, productID).Return(false, model.ErrProductNotFound)

		assert.ErrorIs(t, svc.AddToWishlist(ctx, userID, productID), model.ErrProductNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, userID).Return(&model.User{ID: userID}, nil)
		repo.On("RemoveFromWishlist", ctx, userID, productID).Return(nil)

		require.NoError(t, svc.RemoveFromWishlist(ctx, userID, productID))
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zerolog.Nop())

		repo.On("GetByID", ctx, userID).Return(nil, nil)

		_, err := svc.Wishlist(ctx, userID)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		assert.ErrorIs(t, svc.AddToWishlist(ctx, userID, productID), model.ErrUserNotFound)
		assert.ErrorIs(t, svc.RemoveFromWishlist(ctx, userID, productID), model.ErrUserNotFound)
		repo.AssertNotCalled(t, "AddToWishlist", mock.Anything, mock.Anything, mock.Anything)
	})
}
