package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cverve/internal/domain"
	"cverve/internal/port"
)

// CreateUserInput is the DTO for creating a user.
type CreateUserInput struct {
	UserID  string  `json:"userId" binding:"required"`
	Balance float64 `json:"balance" binding:"gte=0"`
}

// LookupUserInput is the DTO for reading a user's balance.
type LookupUserInput struct {
	UserID string `json:"userId" binding:"required"`
}

// UserService defines the user balance contract.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.UserBalance, error)
	GetByID(ctx context.Context, userID string) (*domain.UserBalance, error)
}

type userService struct {
	repo port.UserRepository
}

// NewUserService creates a new UserService implementation.
func NewUserService(repo port.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.UserBalance, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if input.Balance < 0 || math.IsNaN(input.Balance) || math.IsInf(input.Balance, 0) {
		return nil, domain.ErrInvalidAmount
	}

	user := &domain.UserBalance{UserID: userID, Balance: input.Balance}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*domain.UserBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, userID)
}
