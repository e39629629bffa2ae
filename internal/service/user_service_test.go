package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cverve/internal/domain"
	"cverve/internal/service"
	"cverve/mocks"
)

func TestUserService_Create_Success(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.UserBalance")).Return(nil)

	user, err := svc.Create(context.Background(), service.CreateUserInput{UserID: " 0911223344 ", Balance: 5})

	require.NoError(t, err)
	assert.Equal(t, "0911223344", user.UserID)
	assert.Equal(t, 5.0, user.Balance)
	repo.AssertExpectations(t)
}

func TestUserService_Create_AlreadyExists(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserAlreadyExists)

	user, err := svc.Create(context.Background(), service.CreateUserInput{UserID: "u1"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUserService_Create_NegativeBalance(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	_, err := svc.Create(context.Background(), service.CreateUserInput{UserID: "u1", Balance: -1})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_GetByID(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	repo.On("GetByID", mock.Anything, "u1").Return(&domain.UserBalance{UserID: "u1", Balance: 120}, nil)
	repo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound)

	user, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, user.Balance)

	_, err = svc.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.GetByID(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
