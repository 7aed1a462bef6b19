package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/stocksim/internal/auth"
	"github.com/baharkarakas/stocksim/internal/metrics"
	"github.com/baharkarakas/stocksim/internal/models"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/baharkarakas/stocksim/internal/validate"
	"github.com/shopspring/decimal"
)

type UserService struct {
	users        repo.Users
	startingCash decimal.Decimal
}

func NewUserService(r repo.Users, startingCash decimal.Decimal) *UserService {
	return &UserService{users: r, startingCash: startingCash}
}

type RegisterArgs struct {
	Username     string `validate:"required,max=50"`
	Password     string `validate:"required,strongpw"`
	Confirmation string `validate:"required,eqfield=Password"`
}

// Register creates a user funded with the starting cash balance.
func (s *UserService) Register(ctx context.Context, args RegisterArgs) (models.User, error) {
	args.Username = strings.TrimSpace(args.Username)
	if err := validate.Struct(args); err != nil {
		return models.User{}, registerRejection(err)
	}

	hash, err := auth.HashPassword(args.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, args.Username, hash, s.startingCash)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("register user: %w", err)
	}
	metrics.Registrations.Inc()
	return u, nil
}

// registerRejection picks the first failing rule in form order.
func registerRejection(err error) error {
	var errs validate.Errs
	if !errors.As(err, &errs) {
		return err
	}
	switch {
	case errs.Has("required"):
		return ErrEmptyFields
	case errs.Has("eqfield"):
		return ErrPasswordMismatch
	case errs.Has("strongpw"):
		return ErrWeakPassword
	case errs.Has("max"):
		return ErrUsernameTooLong
	}
	return err
}

// Login checks credentials and returns the matching user.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, error) {
	switch {
	case username == "":
		return models.User{}, ErrMissingUsername
	case password == "":
		return models.User{}, ErrMissingPassword
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}
